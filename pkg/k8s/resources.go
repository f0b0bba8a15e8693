package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// ListNodes returns a summary of every node in the cluster
func ListNodes(ctx context.Context, client kubernetes.Interface) ([]NodeSummary, error) {
	nodes, err := client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	result := make([]NodeSummary, 0, len(nodes.Items))
	for i := range nodes.Items {
		result = append(result, SummarizeNode(&nodes.Items[i]))
	}
	return result, nil
}

// ListPods returns a summary of the pods in namespace, or in all namespaces if
// namespace is empty
func ListPods(ctx context.Context, client kubernetes.Interface, namespace string) ([]PodSummary, error) {
	pods, err := client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	result := make([]PodSummary, 0, len(pods.Items))
	for i := range pods.Items {
		result = append(result, SummarizePod(&pods.Items[i]))
	}
	return result, nil
}

// ListServices returns a summary of the services in namespace, or in all
// namespaces if namespace is empty
func ListServices(ctx context.Context, client kubernetes.Interface, namespace string) ([]ServiceSummary, error) {
	services, err := client.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	result := make([]ServiceSummary, 0, len(services.Items))
	for i := range services.Items {
		result = append(result, SummarizeService(&services.Items[i]))
	}
	return result, nil
}

// GetClusterSummary fetches the server version and counts nodes, pods and
// services across all namespaces. Calls are made one after another and the first
// failure is returned.
func GetClusterSummary(ctx context.Context, client kubernetes.Interface) (*ClusterSummary, error) {
	info, err := client.Discovery().ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("server version: %w", err)
	}

	nodes, err := client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	pods, err := client.CoreV1().Pods("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	services, err := client.CoreV1().Services("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	summary := SummarizeCluster(info, nodes.Items, pods.Items, services.Items)
	return &summary, nil
}
