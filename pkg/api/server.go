package api

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubestellar/kube-dashboard/pkg/api/handlers"
	"github.com/kubestellar/kube-dashboard/pkg/api/middleware"
	"github.com/kubestellar/kube-dashboard/pkg/k8s"
)

// Server represents the dashboard HTTP server
type Server struct {
	app     *fiber.App
	config  Config
	clients *k8s.ClientProvider
}

// NewServer creates a new dashboard server. The Kubernetes client is built
// lazily on the first API request, so a missing cluster does not stop startup.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}

	app := fiber.New(fiber.Config{
		AppName:               "kube-dashboard",
		ErrorHandler:          customErrorHandler,
		EnablePrintRoutes:     cfg.Debug,
		DisableStartupMessage: !cfg.Debug,
	})

	clients := k8s.NewClientProvider(k8s.ClientOptions{
		Kubeconfig: cfg.Kubeconfig,
		Context:    cfg.KubeContext,
		Timeout:    cfg.ClientTimeout,
	})
	if cfg.WatchKubeconfig {
		clients.SetOnReload(func() {
			log.Println("Kubernetes client will be rebuilt on next request")
		})
		if err := clients.StartWatching(); err != nil {
			log.Printf("Warning: Failed to start kubeconfig watcher: %v", err)
		}
	}

	server := &Server{
		app:     app,
		config:  cfg,
		clients: clients,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.app.Use(recover.New())

	s.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// Logger
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${locals:requestid}\n",
		TimeFormat: "15:04:05",
	}))

	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.CORSOrigins,
		AllowMethods: "GET,HEAD,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	if s.config.MetricsEnabled {
		s.app.Use(middleware.Metrics())
	}

	// Profiling endpoints under /debug/pprof
	if s.config.Debug {
		s.app.Use(pprof.New())
	}
}

func (s *Server) setupRoutes() {
	s.app.Get("/", handlers.Dashboard)
	s.app.Get("/health", handlers.Health)

	if s.config.MetricsEnabled {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	cluster := handlers.NewClusterHandlers(s.clients)
	api := s.app.Group("/api")
	api.Get("/cluster-info", cluster.GetClusterInfo)
	api.Get("/nodes", cluster.GetNodes)
	api.Get("/pods", cluster.GetPods)
	api.Get("/services", cluster.GetServices)
}

// Start starts the server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting Kubernetes Dashboard on %s (debug=%v)", addr, s.config.Debug)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.clients.StopWatching()
	return s.app.Shutdown()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
