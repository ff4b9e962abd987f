// Package config loads the server configuration from an optional YAML or TOML file
// and the CIDASH_* environment variables, which take precedence over the file values.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/beldeveloper/cidash/pkg/logger"
	"github.com/beldeveloper/cidash/pkg/marshaller"
)

const envPrefix = "CIDASH_"

// Defaults.
const (
	DefaultEnv           = "production"
	DefaultHTTPPort      = 5000
	DefaultHealthPort    = 5001
	DefaultDBHost        = "localhost"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "disable"
	DefaultDBMaxConns    = 10
	DefaultDeployEnv     = "Replit (Dev)"
	DefaultDeployURL     = "https://ci-cd-dashboard.example.repl.co"
	DefaultLogLevel      = "info"
	DefaultLogFormatter  = "text"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxAgeDays = 7
	DefaultLogMaxBackups = 5
)

// HTTP configures the REST API server.
type HTTP struct {
	Port     int    `yaml:"port" toml:"port"`
	CertFile string `yaml:"certFile" toml:"cert_file"`
	KeyFile  string `yaml:"keyFile" toml:"key_file"`
}

// GRPC configures the gRPC health server.
type GRPC struct {
	HealthPort int `yaml:"healthPort" toml:"health_port"`
}

// Database configures the postgres connection pool.
type Database struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	Name     string `yaml:"name" toml:"name"`
	SSLMode  string `yaml:"sslMode" toml:"ssl_mode"`
	MaxConns int32  `yaml:"maxConns" toml:"max_conns"`
}

// DSN returns the postgres connection string.
func (d Database) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	q.Set("pool_max_conns", strconv.Itoa(int(d.MaxConns)))
	u.RawQuery = q.Encode()
	return u.String()
}

// Simulation configures the target of the simulated deployments.
type Simulation struct {
	Environment string `yaml:"environment" toml:"environment"`
	URL         string `yaml:"url" toml:"url"`
}

// Config is the server configuration.
type Config struct {
	Env        string        `yaml:"env" toml:"env"`
	HTTP       HTTP          `yaml:"http" toml:"http"`
	GRPC       GRPC          `yaml:"grpc" toml:"grpc"`
	Database   Database      `yaml:"database" toml:"database"`
	Log        logger.Config `yaml:"log" toml:"log"`
	Simulation Simulation    `yaml:"simulation" toml:"simulation"`
}

// Load reads the file when the path is set, applies the environment overrides and fills the defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err = marshaller.ForFile(path).Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("ENV", &cfg.Env)
	str("HTTPS_CRT", &cfg.HTTP.CertFile)
	str("HTTPS_KEY", &cfg.HTTP.KeyFile)
	str("DB_HOST", &cfg.Database.Host)
	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_NAME", &cfg.Database.Name)
	str("DB_SSLMODE", &cfg.Database.SSLMode)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMATTER", &cfg.Log.Formatter)
	str("LOG_DIR", &cfg.Log.Dir)
	str("LOG_FILE", &cfg.Log.File)
	str("DEPLOY_ENVIRONMENT", &cfg.Simulation.Environment)
	str("DEPLOY_URL", &cfg.Simulation.URL)

	maxConns := int(cfg.Database.MaxConns)
	for name, dst := range map[string]*int{
		"HTTP_PORT":    &cfg.HTTP.Port,
		"GRPC_PORT":    &cfg.GRPC.HealthPort,
		"DB_PORT":      &cfg.Database.Port,
		"DB_MAX_CONNS": &maxConns,
	} {
		if err := num(name, dst); err != nil {
			return err
		}
	}
	cfg.Database.MaxConns = int32(maxConns)
	return nil
}

func applyDefaults(cfg *Config) {
	setStr := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if *dst <= 0 {
			*dst = v
		}
	}
	setStr(&cfg.Env, DefaultEnv)
	setInt(&cfg.HTTP.Port, DefaultHTTPPort)
	setInt(&cfg.GRPC.HealthPort, DefaultHealthPort)
	setStr(&cfg.Database.Host, DefaultDBHost)
	setInt(&cfg.Database.Port, DefaultDBPort)
	setStr(&cfg.Database.SSLMode, DefaultDBSSLMode)
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	setStr(&cfg.Log.Level, DefaultLogLevel)
	setStr(&cfg.Log.Formatter, DefaultLogFormatter)
	setInt(&cfg.Log.MaxSizeMB, DefaultLogMaxSizeMB)
	setInt(&cfg.Log.MaxAgeDays, DefaultLogMaxAgeDays)
	setInt(&cfg.Log.MaxBackups, DefaultLogMaxBackups)
	setStr(&cfg.Simulation.Environment, DefaultDeployEnv)
	setStr(&cfg.Simulation.URL, DefaultDeployURL)
}
