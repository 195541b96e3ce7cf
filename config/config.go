package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIBase     = "https://api.garden.finance"
	defaultListen      = ":4000"
	defaultHTTPTimeout = 15 * time.Second
)

// Config holds the service configuration. The API base is injected into the
// data-provider clients at construction time, never read inside check logic.
type Config struct {
	APIBase         string
	Listen          string
	HTTPTimeout     time.Duration
	Classifier      string
	AmountPolicy    string
	DiagnosePending bool
	TLSDomains      []string
	TLSCacheDir     string
}

type configTmp struct {
	APIBase         string   `yaml:"api_base,omitempty"`
	Listen          string   `yaml:"listen,omitempty"`
	HTTPTimeoutStr  string   `yaml:"http_timeout,omitempty"`
	Classifier      string   `yaml:"classifier,omitempty"`
	AmountPolicy    string   `yaml:"amount_policy,omitempty"`
	DiagnosePending bool     `yaml:"diagnose_pending,omitempty"`
	TLSDomains      []string `yaml:"tls_domains,omitempty"`
	TLSCacheDir     string   `yaml:"tls_cache_dir,omitempty"`
}

// Get loads configuration. Precedence: CLI flags over yaml file over the
// GARDEN_API_BASE_URL environment variable over built-in defaults.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", "", "listen address, example: :4000")
	apiBase := flag.String("apibase", "", "Garden API base URL")
	flag.Parse()

	cfg := defaults()

	if *configPath != "" {
		if err := loadYaml(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if *listen != "" {
		cfg.Listen = *listen
	}
	if *apiBase != "" {
		cfg.APIBase = *apiBase
	}

	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.APIBase == "" {
		return Config{}, fmt.Errorf("api base URL must not be empty")
	}

	return cfg, nil
}

func defaults() Config {
	apiBase := defaultAPIBase
	if env := os.Getenv("GARDEN_API_BASE_URL"); env != "" {
		apiBase = env
	}

	return Config{
		APIBase:     apiBase,
		Listen:      defaultListen,
		HTTPTimeout: defaultHTTPTimeout,
	}
}

func loadYaml(path string, cfg *Config) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return fmt.Errorf("incorrect yaml config: %w", err)
	}

	if tmp.APIBase != "" {
		cfg.APIBase = tmp.APIBase
	}
	if tmp.Listen != "" {
		cfg.Listen = tmp.Listen
	}
	if tmp.HTTPTimeoutStr != "" {
		timeout, err := time.ParseDuration(tmp.HTTPTimeoutStr)
		if err != nil {
			return fmt.Errorf("incorrect 'http_timeout' param in yaml config (correct format is 15s), error: %w", err)
		}
		cfg.HTTPTimeout = timeout
	}
	cfg.Classifier = tmp.Classifier
	cfg.AmountPolicy = tmp.AmountPolicy
	cfg.DiagnosePending = tmp.DiagnosePending
	cfg.TLSDomains = tmp.TLSDomains
	cfg.TLSCacheDir = tmp.TLSCacheDir

	return nil
}
