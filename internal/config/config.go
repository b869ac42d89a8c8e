package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverNeo4j  = "neo4j"
	DriverFile   = "file"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "LINEAGE_"

// Config holds all lineage configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Neo4j   Neo4jConfig   `yaml:"neo4j"`
	Query   QueryConfig   `yaml:"query"`
}

type ServerConfig struct {
	Bind string `yaml:"bind" env:"BIND"`
	Port int    `yaml:"port" env:"PORT"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER"` // sqlite, neo4j or file
	Path   string `yaml:"path" env:"STORAGE_PATH"`     // database or family file path
}

type Neo4jConfig struct {
	URI      string `yaml:"uri" env:"NEO4J_URI"`
	Username string `yaml:"username" env:"NEO4J_USERNAME"`
	Password string `yaml:"password" env:"NEO4J_PASSWORD"`
	Database string `yaml:"database" env:"NEO4J_DATABASE"`
}

type QueryConfig struct {
	// MaxDepth bounds ancestor and descendant walks when a request gives
	// none. Zero means unbounded.
	MaxDepth int `yaml:"max_depth" env:"MAX_DEPTH"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "", // resolved at runtime via store.DefaultDBPath()
		},
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// LINEAGE_* environment overrides. An empty or missing path yields
// defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the storage driver and ranges.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverNeo4j:
	case DriverFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path is required for the file driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Query.MaxDepth < 0 {
		return fmt.Errorf("config: query.max_depth must not be negative")
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// DefaultServerURL is the address clients use for a local server.
func (c *Config) DefaultServerURL() string {
	return "http://" + c.ListenAddr()
}
