package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/kubestellar/kube-dashboard/pkg/k8s"
	"github.com/kubestellar/kube-dashboard/pkg/metrics"
)

const msgClientUnavailable = "Failed to initialize Kubernetes client"

// Error kinds, used as the metrics label
const (
	errKindClientUnavailable = "client_unavailable"
	errKindAPI               = "api"
	errKindUnexpected        = "unexpected"
)

// respondError logs err and writes it as {"error": "..."}.
//
//	client could not be built  -> 503, fixed message, no API call was made
//	Kubernetes API status error -> 502, "Kubernetes API error: <reason>"
//	anything else               -> 500, err.Error()
func respondError(c *fiber.Ctx, resource string, err error) error {
	if errors.Is(err, k8s.ErrClientUnavailable) {
		log.Printf("[%s] %s: %v", resource, msgClientUnavailable, err)
		metrics.K8sAPIErrorsTotal.WithLabelValues(resource, errKindClientUnavailable).Inc()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msgClientUnavailable})
	}

	if reason, ok := apiErrorReason(err); ok {
		log.Printf("[%s] Kubernetes API error: %v", resource, err)
		metrics.K8sAPIErrorsTotal.WithLabelValues(resource, errKindAPI).Inc()
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Kubernetes API error: " + reason})
	}

	log.Printf("[%s] Unexpected error: %v", resource, err)
	metrics.K8sAPIErrorsTotal.WithLabelValues(resource, errKindUnexpected).Inc()
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// apiErrorReason extracts the reason text of a Kubernetes API status error,
// preferring the HTTP reason phrase of its code ("Forbidden", "Not Found").
func apiErrorReason(err error) (string, bool) {
	var status apierrors.APIStatus
	if !errors.As(err, &status) {
		return "", false
	}
	s := status.Status()
	if text := http.StatusText(int(s.Code)); text != "" {
		return text, true
	}
	if s.Reason != "" {
		return string(s.Reason), true
	}
	return s.Message, true
}
