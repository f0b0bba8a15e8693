package handlers

import (
	"github.com/gofiber/fiber/v2"
	"k8s.io/client-go/kubernetes"

	"github.com/kubestellar/kube-dashboard/pkg/k8s"
)

// ClientSource hands out a Kubernetes client for a single request
type ClientSource interface {
	Client() (kubernetes.Interface, error)
}

// ClusterHandlers serves the read-only cluster views
type ClusterHandlers struct {
	clients ClientSource
}

// NewClusterHandlers creates a new cluster handlers instance
func NewClusterHandlers(clients ClientSource) *ClusterHandlers {
	return &ClusterHandlers{clients: clients}
}

// GetClusterInfo returns the server version and node/pod/service counts
// GET /api/cluster-info
func (h *ClusterHandlers) GetClusterInfo(c *fiber.Ctx) error {
	client, err := h.clients.Client()
	if err != nil {
		return respondError(c, "cluster-info", err)
	}

	summary, err := k8s.GetClusterSummary(c.UserContext(), client)
	if err != nil {
		return respondError(c, "cluster-info", err)
	}
	return c.JSON(summary)
}

// GetNodes returns a summary of every node
// GET /api/nodes
func (h *ClusterHandlers) GetNodes(c *fiber.Ctx) error {
	client, err := h.clients.Client()
	if err != nil {
		return respondError(c, "nodes", err)
	}

	nodes, err := k8s.ListNodes(c.UserContext(), client)
	if err != nil {
		return respondError(c, "nodes", err)
	}
	return c.JSON(fiber.Map{"nodes": nodes})
}

// GetPods returns a summary of every pod, optionally limited to ?namespace=
// GET /api/pods
func (h *ClusterHandlers) GetPods(c *fiber.Ctx) error {
	client, err := h.clients.Client()
	if err != nil {
		return respondError(c, "pods", err)
	}

	pods, err := k8s.ListPods(c.UserContext(), client, c.Query("namespace"))
	if err != nil {
		return respondError(c, "pods", err)
	}
	return c.JSON(fiber.Map{"pods": pods})
}

// GetServices returns a summary of every service, optionally limited to ?namespace=
// GET /api/services
func (h *ClusterHandlers) GetServices(c *fiber.Ctx) error {
	client, err := h.clients.Client()
	if err != nil {
		return respondError(c, "services", err)
	}

	services, err := k8s.ListServices(c.UserContext(), client, c.Query("namespace"))
	if err != nil {
		return respondError(c, "services", err)
	}
	return c.JSON(fiber.Map{"services": services})
}

// Health reports process liveness; it never touches the cluster
// GET /health
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}
