// Package config loads this server's configuration: the request freshness
// window and the two on-disk directories it reads and writes.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Server holds settings for the HTTP-facing half of the server.
type Server struct {
	// RequestMaxTTL bounds, in seconds, how old a signed vault request's
	// timestamp may be before it is rejected as stale.
	RequestMaxTTL uint64 `mapstructure:"request_max_ttl"`
	// Addr is the address ListenAndServe binds to.
	Addr string `mapstructure:"addr"`
}

// VaultStore holds settings for where vault blobs are persisted.
type VaultStore struct {
	Path string `mapstructure:"path"`
}

// PasswordFile holds settings for where password files are persisted.
type PasswordFile struct {
	Path string `mapstructure:"path"`
}

// App is the complete server configuration.
type App struct {
	Server       Server       `mapstructure:"server"`
	VaultStore   VaultStore   `mapstructure:"vault_store"`
	PasswordFile PasswordFile `mapstructure:"password_file"`
}

// Load reads configuration from the file at path, with FERRIS_-prefixed
// environment variables overriding any matching key.
func Load(path string) (*App, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("ferris")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if app.VaultStore.Path == "" {
		return nil, fmt.Errorf("config: vault_store.path must be set")
	}

	if app.PasswordFile.Path == "" {
		return nil, fmt.Errorf("config: password_file.path must be set")
	}

	return &app, nil
}
