package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("GARDEN_API_BASE_URL", "")

	cfg := defaults()
	require.Equal(t, "https://api.garden.finance", cfg.APIBase)
	require.Equal(t, ":4000", cfg.Listen)
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	require.False(t, cfg.DiagnosePending)
}

func TestDefaults_EnvOverride(t *testing.T) {
	t.Setenv("GARDEN_API_BASE_URL", "https://staging.garden.finance")

	cfg := defaults()
	require.Equal(t, "https://staging.garden.finance", cfg.APIBase)
}

func TestLoadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base: https://api.example.com
listen: ":8080"
http_timeout: 30s
classifier: deadline_first
amount_policy: any_unredeemed
diagnose_pending: true
tls_domains:
  - triage.example.com
tls_cache_dir: /var/cache/certs
`), 0o644))

	cfg := defaults()
	require.NoError(t, loadYaml(path, &cfg))

	require.Equal(t, "https://api.example.com", cfg.APIBase)
	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "deadline_first", cfg.Classifier)
	require.Equal(t, "any_unredeemed", cfg.AmountPolicy)
	require.True(t, cfg.DiagnosePending)
	require.Equal(t, []string{"triage.example.com"}, cfg.TLSDomains)
	require.Equal(t, "/var/cache/certs", cfg.TLSCacheDir)
}

func TestLoadYaml_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\n"), 0o644))

	cfg := defaults()
	require.NoError(t, loadYaml(path, &cfg))

	require.Equal(t, ":9000", cfg.Listen)
	require.Equal(t, "https://api.garden.finance", cfg.APIBase)
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestLoadYaml_BadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_timeout: soon\n"), 0o644))

	cfg := defaults()
	require.Error(t, loadYaml(path, &cfg))
}

func TestLoadYaml_MissingFile(t *testing.T) {
	cfg := defaults()
	require.Error(t, loadYaml(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
}
