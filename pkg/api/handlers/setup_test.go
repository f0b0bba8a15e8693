package handlers

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"

	"github.com/kubestellar/kube-dashboard/pkg/k8s"
	"github.com/kubestellar/kube-dashboard/pkg/test"
)

type testEnv struct {
	App     *fiber.App
	Clients *k8s.ClientProvider
	Fake    *k8sfake.Clientset
}

// setupTestEnv creates a Fiber app with the cluster routes registered against a
// fake clientset seeded with objects.
func setupTestEnv(t *testing.T, objects ...runtime.Object) *testEnv {
	t.Helper()

	fakeClient := k8sfake.NewSimpleClientset(objects...)
	fakeClient.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{Major: "1", Minor: "31"}

	clients := k8s.NewClientProvider(k8s.ClientOptions{Kubeconfig: t.TempDir() + "/config"})
	clients.InjectClient(fakeClient)

	app := fiber.New()
	registerRoutes(app, clients)

	return &testEnv{
		App:     app,
		Clients: clients,
		Fake:    fakeClient,
	}
}

func registerRoutes(app *fiber.App, clients ClientSource) {
	h := NewClusterHandlers(clients)
	app.Get("/", Dashboard)
	app.Get("/health", Health)
	app.Get("/api/cluster-info", h.GetClusterInfo)
	app.Get("/api/nodes", h.GetNodes)
	app.Get("/api/pods", h.GetPods)
	app.Get("/api/services", h.GetServices)
}

// unavailableSource returns a client source that never yields a client
func unavailableSource() *test.MockClientSource {
	source := &test.MockClientSource{}
	source.On("Client").Return(nil, fmt.Errorf("%w: no kubeconfig", k8s.ErrClientUnavailable))
	return source
}
