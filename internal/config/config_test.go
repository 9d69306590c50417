package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/profilegraph/internal/domain"
)

var envKeys = []string{
	"CONFIG_FILE", "SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
	"SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "SERVER_METRICS_ENABLED", "SERVER_ALLOWED_ORIGINS",
	"STORE_BACKEND", "STORE_DSN", "STORE_MAX_OPEN_CONNS", "STORE_MAX_IDLE_CONNS", "STORE_CONN_MAX_LIFETIME",
	"STORE_AUTO_MIGRATE", "GRAPH_URI", "GRAPH_DATABASE", "GRAPH_USERNAME", "GRAPH_PASSWORD",
	"GRAPH_MAX_CONNECTIONS", "GRAPH_ACQUIRE_TIMEOUT", "GRAPH_DIRECTION", "CONNECTION_TIMEOUT",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_INCLUDE_CALLER",
}

// clearEnv blanks every key Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, domain.DirectionOutgoing, cfg.Connections.Direction)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("STORE_DSN", "postgres://localhost/profiles?sslmode=disable")
	t.Setenv("GRAPH_DIRECTION", "both")
	t.Setenv("CONNECTION_TIMEOUT", "250ms")
	t.Setenv("SERVER_METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, domain.DirectionBoth, cfg.Connections.Direction)
	assert.Equal(t, 250*time.Millisecond, cfg.Connections.Timeout)
	assert.False(t, cfg.HTTP.MetricsEnabled)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 7070
store:
  backend: neo4j
graph:
  uri: bolt://localhost:7687
  database: profiles
connections:
  direction: both
  timeout: 2s
logging:
  format: json
`), 0o600))

	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, BackendNeo4j, cfg.Store.Backend)
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
	assert.Equal(t, "profiles", cfg.Graph.Database)
	assert.Equal(t, domain.DirectionBoth, cfg.Connections.Direction)
	assert.Equal(t, 2*time.Second, cfg.Connections.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, defaultReadTimeout, cfg.HTTP.ReadTimeout, "unset fields keep defaults")
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"port":        {"SERVER_PORT": "70000"},
		"duration":    {"CONNECTION_TIMEOUT": "soon"},
		"direction":   {"GRAPH_DIRECTION": "sideways"},
		"backend":     {"STORE_BACKEND": "mongo"},
		"neo4j uri":   {"STORE_BACKEND": "neo4j", "GRAPH_URI": ""},
		"config file": {"CONFIG_FILE": "/does/not/exist.yml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
