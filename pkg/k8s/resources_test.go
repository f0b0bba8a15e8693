package k8s

import (
	"context"
	"errors"
	"testing"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sruntime "k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func seededClient() *k8sfake.Clientset {
	client := k8sfake.NewSimpleClientset(
		&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: "node-a"},
			Status: corev1.NodeStatus{
				Conditions: []corev1.NodeCondition{{Type: corev1.NodeReady, Status: corev1.ConditionTrue}},
			},
		},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-b"}},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default"},
			Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "app"}}},
			Status:     corev1.PodStatus{Phase: corev1.PodRunning},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "coredns", Namespace: "kube-system"},
			Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "coredns"}}},
			Status:     corev1.PodStatus{Phase: corev1.PodRunning},
		},
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Name: "kubernetes", Namespace: "default"},
			Spec:       corev1.ServiceSpec{Type: corev1.ServiceTypeClusterIP, ClusterIP: "10.96.0.1"},
		},
	)
	client.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{Major: "1", Minor: "31"}
	return client
}

func TestListNodes(t *testing.T) {
	nodes, err := ListNodes(context.Background(), seededClient())
	if err != nil {
		t.Fatalf("ListNodes failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("Got %d nodes, want 2", len(nodes))
	}

	status := map[string]string{}
	for _, n := range nodes {
		status[n.Name] = n.Status
	}
	if status["node-a"] != "Ready" || status["node-b"] != "NotReady" {
		t.Errorf("unexpected node status: %v", status)
	}
}

func TestListPods_NamespaceFilter(t *testing.T) {
	client := seededClient()

	all, err := ListPods(context.Background(), client, "")
	if err != nil {
		t.Fatalf("ListPods failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Got %d pods across namespaces, want 2", len(all))
	}

	system, err := ListPods(context.Background(), client, "kube-system")
	if err != nil {
		t.Fatalf("ListPods failed: %v", err)
	}
	if len(system) != 1 || system[0].Name != "coredns" {
		t.Errorf("Got %+v, want only coredns", system)
	}
}

func TestListServices(t *testing.T) {
	services, err := ListServices(context.Background(), seededClient(), "")
	if err != nil {
		t.Fatalf("ListServices failed: %v", err)
	}
	if len(services) != 1 {
		t.Fatalf("Got %d services, want 1", len(services))
	}
	if services[0].ClusterIP != "10.96.0.1" || services[0].Ports != "None" {
		t.Errorf("unexpected service summary: %+v", services[0])
	}
}

func TestList_EmptyClusterReturnsEmptySlices(t *testing.T) {
	client := k8sfake.NewSimpleClientset()

	nodes, err := ListNodes(context.Background(), client)
	if err != nil || nodes == nil || len(nodes) != 0 {
		t.Errorf("ListNodes() = %v, %v; want empty non-nil slice", nodes, err)
	}
	pods, err := ListPods(context.Background(), client, "")
	if err != nil || pods == nil || len(pods) != 0 {
		t.Errorf("ListPods() = %v, %v; want empty non-nil slice", pods, err)
	}
	services, err := ListServices(context.Background(), client, "")
	if err != nil || services == nil || len(services) != 0 {
		t.Errorf("ListServices() = %v, %v; want empty non-nil slice", services, err)
	}
}

func TestGetClusterSummary(t *testing.T) {
	summary, err := GetClusterSummary(context.Background(), seededClient())
	if err != nil {
		t.Fatalf("GetClusterSummary failed: %v", err)
	}

	want := ClusterSummary{Version: "1.31", NodeCount: 2, PodCount: 2, ServiceCount: 1}
	if *summary != want {
		t.Errorf("GetClusterSummary() = %+v, want %+v", *summary, want)
	}
}

func TestGetClusterSummary_ListErrorKeepsAPIStatus(t *testing.T) {
	client := seededClient()
	client.PrependReactor("list", "pods", func(action k8stesting.Action) (bool, k8sruntime.Object, error) {
		return true, nil, apierrors.NewForbidden(schema.GroupResource{Resource: "pods"}, "", errors.New("denied"))
	})

	_, err := GetClusterSummary(context.Background(), client)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apierrors.IsForbidden(err) {
		t.Errorf("expected wrapped Forbidden error, got %v", err)
	}
}

func TestListNodes_PropagatesError(t *testing.T) {
	client := k8sfake.NewSimpleClientset()
	client.PrependReactor("list", "nodes", func(action k8stesting.Action) (bool, k8sruntime.Object, error) {
		return true, nil, errors.New("connection refused")
	})

	if _, err := ListNodes(context.Background(), client); err == nil {
		t.Error("expected error from ListNodes")
	}
}
