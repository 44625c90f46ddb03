// Command ferris-vault-server runs the vault server: an OPAQUE-authenticated
// HTTP API for storing and retrieving a single encrypted blob per user.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Philb37/ferris-vault-server/internal/auth"
	"github.com/Philb37/ferris-vault-server/internal/config"
	"github.com/Philb37/ferris-vault-server/internal/contentstore"
	"github.com/Philb37/ferris-vault-server/internal/domain"
	"github.com/Philb37/ferris-vault-server/internal/pwfile"
	"github.com/Philb37/ferris-vault-server/internal/transport/httpapi"
	"github.com/Philb37/ferris-vault-server/internal/vaultstore"
)

func newLogger() zerolog.Logger {
	if os.Getenv("ZEROLOG_ENV") == "production" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}

func run(configPath string, logger zerolog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	vaultBlobs, err := contentstore.NewDirectory(cfg.VaultStore.Path)
	if err != nil {
		return fmt.Errorf("opening vault store: %w", err)
	}

	passwordBlobs, err := contentstore.NewDirectory(cfg.PasswordFile.Path)
	if err != nil {
		return fmt.Errorf("opening password file store: %w", err)
	}

	suite := auth.NewSuite(cfg.Server.Addr)
	authenticator, err := auth.NewAuthenticator(suite, pwfile.New(passwordBlobs), cfg.Server.RequestMaxTTL)
	if err != nil {
		return fmt.Errorf("building authenticator: %w", err)
	}

	facade := domain.New(authenticator, vaultstore.New(vaultBlobs))
	router := httpapi.NewRouter(facade, logger)

	logger.Info().Str("addr", cfg.Server.Addr).Msg("starting ferris-vault-server")

	return http.ListenAndServe(cfg.Server.Addr, router)
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ferris-vault-server",
		Short: "Run the OPAQUE-authenticated vault server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, newLogger())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.toml", "path to the server configuration file")

	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
