package config

import (
	"fmt"
	"os"
)

// WithPort sets the server port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing).
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithJWTSecret sets the secret used to verify bearer tokens.
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithBackend configures the content backend.
func WithBackend(backend BackendConfig) Option {
	return func(c *ServerConfig) error {
		c.Backend = backend
		return nil
	}
}

// WithStorage configures the media storage backend.
func WithStorage(storage StorageConfig) Option {
	return func(c *ServerConfig) error {
		c.Storage = storage
		return nil
	}
}

// WithEnv applies environment variable overrides using the provided prefix.
//
// Recognized variables (with optional prefix):
//
//	PORT            - listen port
//	ENVIRONMENT     - runtime environment
//	JWT_SECRET      - bearer token secret (empty disables auth)
//	BACKEND_TYPE    - memory | sqlite | postgres | rest
//	BACKEND_PATH    - sqlite database file
//	BACKEND_URL     - postgres connection string or rest base URL
//	BACKEND_TOKEN   - bearer credential for the rest backend
//	STORAGE_TYPE    - fs | s3
//	STORAGE_DIR     - fs base directory
//	STORAGE_URL     - public URL prefix for stored media
//	S3_BUCKET, S3_REGION, S3_ENDPOINT - s3 storage options
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		set := func(dst *string, key string) {
			if v, ok := lookupEnv(prefix, key); ok && v != "" {
				*dst = v
			}
		}
		set(&c.Port, "PORT")
		set(&c.Environment, "ENVIRONMENT")
		set(&c.JWTSecret, "JWT_SECRET")
		set(&c.Backend.Type, "BACKEND_TYPE")
		set(&c.Backend.Path, "BACKEND_PATH")
		set(&c.Backend.URL, "BACKEND_URL")
		set(&c.Backend.Token, "BACKEND_TOKEN")
		set(&c.Storage.Type, "STORAGE_TYPE")
		set(&c.Storage.BaseDir, "STORAGE_DIR")
		set(&c.Storage.URLPrefix, "STORAGE_URL")
		set(&c.Storage.Bucket, "S3_BUCKET")
		set(&c.Storage.Region, "S3_REGION")
		set(&c.Storage.Endpoint, "S3_ENDPOINT")
		return nil
	}
}

func lookupEnv(prefix, key string) (string, bool) {
	if prefix != "" {
		key = prefix + "_" + key
	}
	return os.LookupEnv(key)
}
