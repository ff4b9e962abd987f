package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultHTTPPort, cfg.HTTP.Port)
	assert.Equal(t, DefaultHealthPort, cfg.GRPC.HealthPort)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, int32(DefaultDBMaxConns), cfg.Database.MaxConns)
	assert.Equal(t, DefaultDeployEnv, cfg.Simulation.Environment)
	assert.Equal(t, DefaultDeployURL, cfg.Simulation.URL)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestLoad_Yaml(t *testing.T) {
	path := writeFile(t, "config.yaml", `
env: development
http:
  port: 8080
database:
  host: db
  user: cidash
  name: cidash
simulation:
  environment: staging
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "staging", cfg.Simulation.Environment)
	assert.Equal(t, DefaultDeployURL, cfg.Simulation.URL)
}

func TestLoad_Toml(t *testing.T) {
	path := writeFile(t, "config.toml", `
env = "development"

[database]
host = "pg"
port = 6543
max_conns = 4

[log]
level = "debug"
formatter = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pg", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Formatter)
}

func TestLoad_EnvVarsTakePrecedence(t *testing.T) {
	path := writeFile(t, "config.yaml", "http:\n  port: 8080\ndatabase:\n  host: fromfile\n")
	t.Setenv("CIDASH_HTTP_PORT", "9090")
	t.Setenv("CIDASH_DB_HOST", "fromenv")
	t.Setenv("CIDASH_DEPLOY_URL", "https://deploy.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "fromenv", cfg.Database.Host)
	assert.Equal(t, "https://deploy.example.com", cfg.Simulation.URL)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "http: [1, 2"))
	assert.Error(t, err)

	t.Setenv("CIDASH_HTTP_PORT", "eighty")
	_, err = Load("")
	assert.Error(t, err)
}

func TestDatabase_DSN(t *testing.T) {
	d := Database{Host: "db", Port: 5432, User: "u", Password: "p@ss", Name: "cidash", SSLMode: "disable", MaxConns: 5}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/cidash?pool_max_conns=5&sslmode=disable", d.DSN())
}
