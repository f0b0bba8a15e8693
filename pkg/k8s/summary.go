package k8s

import (
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/apimachinery/pkg/version"
)

// Fallback values used when a field is missing from the source object
const (
	valueUnknown  = "Unknown"
	valueNone     = "None"
	statusReady   = "Ready"
	statusNoReady = "NotReady"
)

// NodeSummary is the flattened, display-ready view of a node
type NodeSummary struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // Ready, NotReady
	Version string `json:"version"`
	OS      string `json:"os"`
	CPU     string `json:"cpu"`
	Memory  string `json:"memory"`
}

// PodSummary is the flattened, display-ready view of a pod
type PodSummary struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Status    string `json:"status"`
	Ready     string `json:"ready"` // "<ready>/<total>"
	Restarts  int    `json:"restarts"`
	Age       string `json:"age"`
}

// ServiceSummary is the flattened, display-ready view of a service
type ServiceSummary struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Type       string `json:"type"`
	ClusterIP  string `json:"cluster_ip"`
	ExternalIP string `json:"external_ip"`
	Ports      string `json:"ports"` // comma separated, e.g. "80:8080, 53/UDP"
}

// ClusterSummary holds the server version and resource counts
type ClusterSummary struct {
	Version      string `json:"version"`
	NodeCount    int    `json:"node_count"`
	PodCount     int    `json:"pod_count"`
	ServiceCount int    `json:"service_count"`
}

// FormatAge formats a creation timestamp as a coarse age string ("3d", "5h", "12m").
// A missing timestamp yields "Unknown".
func FormatAge(created metav1.Time) string {
	return formatAgeAt(created, time.Now().UTC())
}

func formatAgeAt(created metav1.Time, now time.Time) string {
	if created.IsZero() {
		return valueUnknown
	}
	elapsed := now.UTC().Sub(created.UTC())
	if elapsed < 0 {
		// clock skew between us and the API server
		return "0m"
	}

	days := int(elapsed / (24 * time.Hour))
	remainder := elapsed - time.Duration(days)*24*time.Hour
	hours := int(remainder / time.Hour)
	minutes := int((remainder - time.Duration(hours)*time.Hour) / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// SummarizeNode reduces a node to its name, readiness, kubelet version, OS image
// and cpu/memory capacity.
func SummarizeNode(node *corev1.Node) NodeSummary {
	summary := NodeSummary{
		Status:  statusNoReady,
		Version: valueUnknown,
		OS:      valueUnknown,
		CPU:     valueUnknown,
		Memory:  valueUnknown,
	}
	if node == nil {
		return summary
	}

	summary.Name = node.Name
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady && cond.Status == corev1.ConditionTrue {
			summary.Status = statusReady
			break
		}
	}

	summary.Version = orDefault(node.Status.NodeInfo.KubeletVersion, valueUnknown)
	summary.OS = orDefault(node.Status.NodeInfo.OSImage, valueUnknown)

	if cpu, ok := node.Status.Capacity[corev1.ResourceCPU]; ok {
		summary.CPU = cpu.String()
	}
	if mem, ok := node.Status.Capacity[corev1.ResourceMemory]; ok {
		summary.Memory = mem.String()
	}
	return summary
}

// SummarizePod reduces a pod to its phase, ready ratio, total restarts and age.
// Pods whose container statuses have not been reported yet count as 0 ready.
func SummarizePod(pod *corev1.Pod) PodSummary {
	if pod == nil {
		return PodSummary{Status: valueUnknown, Ready: "0/0", Age: valueUnknown}
	}

	ready := 0
	restarts := 0
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
		restarts += int(cs.RestartCount)
	}

	return PodSummary{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Status:    orDefault(string(pod.Status.Phase), valueUnknown),
		Ready:     fmt.Sprintf("%d/%d", ready, len(pod.Spec.Containers)),
		Restarts:  restarts,
		Age:       FormatAge(pod.CreationTimestamp),
	}
}

// SummarizeService reduces a service to its type, addresses and a formatted port list.
func SummarizeService(svc *corev1.Service) ServiceSummary {
	if svc == nil {
		return ServiceSummary{Type: valueUnknown, ClusterIP: valueNone, ExternalIP: valueNone, Ports: valueNone}
	}

	return ServiceSummary{
		Name:       svc.Name,
		Namespace:  svc.Namespace,
		Type:       orDefault(string(svc.Spec.Type), valueUnknown),
		ClusterIP:  orDefault(svc.Spec.ClusterIP, valueNone),
		ExternalIP: externalIP(svc),
		Ports:      formatPorts(svc.Spec.Ports),
	}
}

// externalIP picks the load balancer ingress IP, then the first requested external
// IP, then "None". An ingress entry without an IP counts as no ingress.
func externalIP(svc *corev1.Service) string {
	if ingress := svc.Status.LoadBalancer.Ingress; len(ingress) > 0 && ingress[0].IP != "" {
		return ingress[0].IP
	}
	if len(svc.Spec.ExternalIPs) > 0 && svc.Spec.ExternalIPs[0] != "" {
		return svc.Spec.ExternalIPs[0]
	}
	return valueNone
}

func formatPorts(ports []corev1.ServicePort) string {
	if len(ports) == 0 {
		return valueNone
	}
	formatted := make([]string, 0, len(ports))
	for _, p := range ports {
		var b strings.Builder
		fmt.Fprintf(&b, "%d", p.Port)
		if target, ok := targetPort(p.TargetPort); ok {
			b.WriteString(":" + target)
		}
		if p.Protocol != "" && p.Protocol != corev1.ProtocolTCP {
			b.WriteString("/" + string(p.Protocol))
		}
		formatted = append(formatted, b.String())
	}
	return strings.Join(formatted, ", ")
}

// targetPort reports the declared target port, numeric or named.
func targetPort(tp intstr.IntOrString) (string, bool) {
	switch tp.Type {
	case intstr.String:
		return tp.StrVal, tp.StrVal != ""
	default:
		return tp.String(), tp.IntVal != 0
	}
}

// SummarizeCluster aggregates the server version with plain resource counts.
func SummarizeCluster(info *version.Info, nodes []corev1.Node, pods []corev1.Pod, services []corev1.Service) ClusterSummary {
	ver := valueUnknown
	if info != nil && (info.Major != "" || info.Minor != "") {
		ver = fmt.Sprintf("%s.%s", info.Major, info.Minor)
	}
	return ClusterSummary{
		Version:      ver,
		NodeCount:    len(nodes),
		PodCount:     len(pods),
		ServiceCount: len(services),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
