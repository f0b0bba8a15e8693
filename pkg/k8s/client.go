package k8s

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	defaultClientTimeout    = 30 * time.Second
	kubeconfigEventDebounce = 500 * time.Millisecond
	kubeconfigPollInterval  = 5 * time.Second
	sourceInCluster         = "in-cluster"
	sourceKubeconfig        = "kubeconfig"
)

// ErrClientUnavailable is returned when neither in-cluster credentials nor a
// kubeconfig could be used to build a client
var ErrClientUnavailable = errors.New("kubernetes client unavailable")

// ClientProvider builds and caches a Kubernetes client. The cached client is
// dropped whenever the kubeconfig file changes on disk.
type ClientProvider struct {
	mu         sync.RWMutex
	kubeconfig string
	context    string
	timeout    time.Duration
	client     kubernetes.Interface
	source     string // in-cluster or kubeconfig

	// overridable for tests
	inClusterConfig func() (*rest.Config, error)

	watcher   *fsnotify.Watcher
	stopWatch chan struct{}
	onReload  func() // Callback when the cached client is invalidated
}

// ClientOptions configures a ClientProvider
type ClientOptions struct {
	Kubeconfig string        // explicit kubeconfig path (default $KUBECONFIG or ~/.kube/config)
	Context    string        // kubeconfig context override
	Timeout    time.Duration // per-request timeout applied to the rest config
}

// NewClientProvider creates a provider. No connection is attempted until Client is called.
func NewClientProvider(opts ClientOptions) *ClientProvider {
	kubeconfig := opts.Kubeconfig
	if kubeconfig == "" {
		kubeconfig = os.Getenv("KUBECONFIG")
		if kubeconfig == "" {
			home, _ := os.UserHomeDir()
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	return &ClientProvider{
		kubeconfig:      kubeconfig,
		context:         opts.Context,
		timeout:         timeout,
		inClusterConfig: rest.InClusterConfig,
	}
}

// Kubeconfig returns the kubeconfig path the provider falls back to
func (p *ClientProvider) Kubeconfig() string {
	return p.kubeconfig
}

// Source reports where the current client came from ("in-cluster", "kubeconfig"),
// or "" when no client has been built yet
func (p *ClientProvider) Source() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.source
}

// InjectClient sets the client returned by Client (for testing)
func (p *ClientProvider) InjectClient(client kubernetes.Interface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = client
	p.source = "injected"
}

// Client returns the cached client, building one if needed. In-cluster
// credentials are tried first, then the kubeconfig. If both fail the returned
// error wraps ErrClientUnavailable.
func (p *ClientProvider) Client() (kubernetes.Interface, error) {
	p.mu.RLock()
	if p.client != nil {
		client := p.client
		p.mu.RUnlock()
		return client, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if p.client != nil {
		return p.client, nil
	}

	config, source, err := p.restConfig()
	if err != nil {
		return nil, err
	}
	config.Timeout = p.timeout

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %v", ErrClientUnavailable, err)
	}

	p.client = client
	p.source = source
	return client, nil
}

func (p *ClientProvider) restConfig() (*rest.Config, string, error) {
	inClusterErr := errors.New("in-cluster config disabled")
	if p.inClusterConfig != nil {
		config, err := p.inClusterConfig()
		if err == nil {
			log.Println("Loaded in-cluster Kubernetes config")
			return config, sourceInCluster, nil
		}
		inClusterErr = err
	}

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: p.kubeconfig},
		&clientcmd.ConfigOverrides{CurrentContext: p.context},
	).ClientConfig()
	if err != nil {
		log.Printf("Failed to load Kubernetes config: %v", err)
		return nil, "", fmt.Errorf("%w: in-cluster: %v; kubeconfig %s: %v", ErrClientUnavailable, inClusterErr, p.kubeconfig, err)
	}
	log.Printf("Loaded local Kubernetes config from %s", p.kubeconfig)
	return config, sourceKubeconfig, nil
}

// Invalidate drops the cached client so the next Client call rebuilds it
func (p *ClientProvider) Invalidate() {
	p.mu.Lock()
	p.client = nil
	p.source = ""
	callback := p.onReload
	p.mu.Unlock()

	if callback != nil {
		callback()
	}
}

// SetOnReload sets a callback to be called when the cached client is invalidated
func (p *ClientProvider) SetOnReload(callback func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReload = callback
}

// StartWatching watches the kubeconfig file and invalidates the cached client
// when it changes. Uses fsnotify plus a polling fallback every 5s to catch
// changes that fsnotify misses after atomic writes.
func (p *ClientProvider) StartWatching() error {
	if _, err := os.Stat(p.kubeconfig); err != nil {
		return fmt.Errorf("kubeconfig not found: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory so editors doing atomic saves are picked up too
	if err := watcher.Add(filepath.Dir(p.kubeconfig)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch kubeconfig directory: %w", err)
	}

	stop := make(chan struct{})
	p.watcher = watcher
	p.stopWatch = stop
	go p.watchLoop(watcher, stop)
	log.Printf("Watching kubeconfig for changes: %s", p.kubeconfig)
	return nil
}

func (p *ClientProvider) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	var debounceTimer *time.Timer

	pollTicker := time.NewTicker(kubeconfigPollInterval)
	defer pollTicker.Stop()
	var lastModTime time.Time
	if info, err := os.Stat(p.kubeconfig); err == nil {
		lastModTime = info.ModTime()
	}

	triggerReload := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(kubeconfigEventDebounce, func() {
			log.Printf("Kubeconfig changed, dropping cached client")
			p.Invalidate()
		})
	}

	for {
		select {
		case <-stop:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.kubeconfig) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if info, err := os.Stat(p.kubeconfig); err == nil {
					lastModTime = info.ModTime()
				}
				triggerReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Kubeconfig watcher error: %v", err)
		case <-pollTicker.C:
			info, err := os.Stat(p.kubeconfig)
			if err != nil {
				continue
			}
			if info.ModTime() != lastModTime {
				lastModTime = info.ModTime()
				log.Printf("Kubeconfig change detected by poll")
				triggerReload()
			}
		}
	}
}

// StopWatching stops watching the kubeconfig file
func (p *ClientProvider) StopWatching() {
	if p.stopWatch != nil {
		close(p.stopWatch)
		p.stopWatch = nil
	}
	if p.watcher != nil {
		p.watcher.Close()
		p.watcher = nil
	}
}
