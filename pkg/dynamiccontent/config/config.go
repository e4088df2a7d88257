// Package config assembles engine and server dependencies from declarative
// configuration.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
	memoryremote "github.com/emdneves/admin-panel/pkg/dynamiccontent/remote/memory"
	postgresremote "github.com/emdneves/admin-panel/pkg/dynamiccontent/remote/postgres"
	restremote "github.com/emdneves/admin-panel/pkg/dynamiccontent/remote/rest"
	sqliteremote "github.com/emdneves/admin-panel/pkg/dynamiccontent/remote/sqlite"
	fsstorage "github.com/emdneves/admin-panel/pkg/dynamiccontent/storage/fs"
	s3storage "github.com/emdneves/admin-panel/pkg/dynamiccontent/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "3000",
		Environment: "development",
		Backend:     BackendConfig{Type: "memory"},
		Storage:     StorageConfig{Type: "fs", BaseDir: "./data/media", URLPrefix: "/media"},
	}
}

// ServerConfig represents the configuration of the content service and the
// admin tooling built on it.
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// JWTSecret signs and verifies bearer tokens on mutating endpoints.
	// Empty disables authentication (development only).
	JWTSecret string

	Backend BackendConfig
	Storage StorageConfig
}

// BackendConfig selects the store the engine operates against.
type BackendConfig struct {
	Type string // "memory", "sqlite", "postgres", "rest"

	// Path is the database file for sqlite.
	Path string

	// URL is the connection string for postgres, or the base URL for rest.
	URL string

	// Token is the bearer credential for the rest backend.
	Token string
}

// StorageConfig selects where processed media lands.
type StorageConfig struct {
	Type string // "fs", "s3"

	// Filesystem options
	BaseDir   string
	URLPrefix string

	// S3 options
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// Validate checks the configuration for internal consistency.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.Backend.Type {
	case "memory":
	case "sqlite":
		if c.Backend.Path == "" {
			return errors.New("backend path is required for sqlite")
		}
	case "postgres":
		if c.Backend.URL == "" {
			return errors.New("backend url is required for postgres")
		}
	case "rest":
		if c.Backend.URL == "" {
			return errors.New("backend url is required for rest")
		}
	default:
		return fmt.Errorf("unsupported backend type: %s", c.Backend.Type)
	}

	switch c.Storage.Type {
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3")
		}
	case "":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	return nil
}

// BuildRemote creates the Remote selected by the backend configuration.
func (c *ServerConfig) BuildRemote(ctx context.Context) (dynamiccontent.Remote, error) {
	switch c.Backend.Type {
	case "memory":
		return memoryremote.New(), nil
	case "sqlite":
		return sqliteremote.Open(c.Backend.Path)
	case "postgres":
		pool, err := pgxpool.New(ctx, c.Backend.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return postgresremote.NewWithPool(pool), nil
	case "rest":
		return restremote.New(restremote.Config{
			BaseURL: c.Backend.URL,
			Token:   c.Backend.Token,
		})
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", c.Backend.Type)
	}
}

// BuildMediaStore creates the media store selected by the storage
// configuration. Returns nil when storage is disabled.
func (c *ServerConfig) BuildMediaStore() (dynamiccontent.MediaStore, error) {
	switch c.Storage.Type {
	case "":
		return nil, nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.BaseDir,
			URLPrefix: c.Storage.URLPrefix,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          c.Storage.Region,
			Bucket:          c.Storage.Bucket,
			AccessKeyID:     c.Storage.AccessKeyID,
			SecretAccessKey: c.Storage.SecretAccessKey,
			Endpoint:        c.Storage.Endpoint,
			UsePathStyle:    c.Storage.UsePathStyle,
			URLPrefix:       c.Storage.URLPrefix,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}
