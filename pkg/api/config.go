package api

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 5000
	defaultClientTimeout = 30 * time.Second
)

// Config holds server configuration
type Config struct {
	Port            int
	Debug           bool
	Kubeconfig      string
	KubeContext     string
	CORSOrigins     string
	ClientTimeout   time.Duration
	MetricsEnabled  bool
	WatchKubeconfig bool
}

// fileConfig is the on-disk YAML form of Config. Pointers distinguish unset
// values from explicit zero values.
type fileConfig struct {
	Port            *int   `yaml:"port"`
	Debug           *bool  `yaml:"debug"`
	Kubeconfig      string `yaml:"kubeconfig,omitempty"`
	KubeContext     string `yaml:"context,omitempty"`
	CORSOrigins     string `yaml:"cors_origins,omitempty"`
	ClientTimeout   string `yaml:"client_timeout,omitempty"`
	Metrics         *bool  `yaml:"metrics"`
	WatchKubeconfig *bool  `yaml:"watch_kubeconfig"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Port:            defaultPort,
		CORSOrigins:     "*",
		ClientTimeout:   defaultClientTimeout,
		MetricsEnabled:  true,
		WatchKubeconfig: true,
	}
}

// LoadConfig builds the configuration from defaults, then the optional YAML file
// at path, then environment variables. Later sources win.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadConfigFromEnv loads configuration from environment variables
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	applyEnv(&cfg)
	return cfg
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if fc.Kubeconfig != "" {
		cfg.Kubeconfig = fc.Kubeconfig
	}
	if fc.KubeContext != "" {
		cfg.KubeContext = fc.KubeContext
	}
	if fc.CORSOrigins != "" {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	if fc.ClientTimeout != "" {
		d, err := time.ParseDuration(fc.ClientTimeout)
		if err != nil {
			return fmt.Errorf("invalid client_timeout %q: %w", fc.ClientTimeout, err)
		}
		cfg.ClientTimeout = d
	}
	if fc.Metrics != nil {
		cfg.MetricsEnabled = *fc.Metrics
	}
	if fc.WatchKubeconfig != nil {
		cfg.WatchKubeconfig = *fc.WatchKubeconfig
	}
	return nil
}

func applyEnv(cfg *Config) {
	if p := os.Getenv("PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Port = port
		} else {
			log.Printf("Warning: ignoring invalid PORT %q", p)
		}
	}
	if d := os.Getenv("DEBUG"); d != "" {
		cfg.Debug = strings.ToLower(d) == "true"
	}
	cfg.Kubeconfig = getEnvOrDefault("KUBECONFIG", cfg.Kubeconfig)
	cfg.KubeContext = getEnvOrDefault("KUBE_CONTEXT", cfg.KubeContext)
	cfg.CORSOrigins = getEnvOrDefault("CORS_ORIGINS", cfg.CORSOrigins)
	if t := os.Getenv("K8S_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.ClientTimeout = d
		} else {
			log.Printf("Warning: ignoring invalid K8S_CLIENT_TIMEOUT %q", t)
		}
	}
	if m := os.Getenv("METRICS_ENABLED"); m != "" {
		cfg.MetricsEnabled = strings.ToLower(m) != "false"
	}
	if w := os.Getenv("WATCH_KUBECONFIG"); w != "" {
		cfg.WatchKubeconfig = strings.ToLower(w) != "false"
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
