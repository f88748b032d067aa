package main

import (
	"context"
	"fmt"

	"github.com/optimumcare/clinic-site/internal/config"
	"github.com/optimumcare/clinic-site/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveConfigFile    string
	servePort          int
	serveDatabaseURL   string
	serveAllowedOrigin string
	serveLanguage      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the public clinic endpoints and the staff console API.

Settings are read from --config, then flags, then environment variables
(PORT, DATABASE_URL, ALLOWED_ORIGIN, DEFAULT_LANGUAGE, CATALOG_CACHE_TTL).
JWT_SECRET is required for staff logins.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to JSON config file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "PostgreSQL connection URL")
	serveCmd.Flags().StringVar(&serveAllowedOrigin, "allowed-origin", "", "CORS origin of the public site")
	serveCmd.Flags().StringVar(&serveLanguage, "default-language", "", "Language when the request expresses none (en or es)")
	rootCmd.AddCommand(serveCmd)
}

// loadServeConfig layers the config file, flags and environment.
func loadServeConfig() (config.Config, error) {
	cfg := &config.Config{}
	if serveConfigFile != "" {
		loaded, err := config.LoadConfig(serveConfigFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveDatabaseURL != "" {
		cfg.DatabaseURL = serveDatabaseURL
	}
	if serveAllowedOrigin != "" {
		cfg.AllowedOrigin = serveAllowedOrigin
	}
	if serveLanguage != "" {
		cfg.DefaultLanguage = serveLanguage
	}
	if verbose {
		cfg.Verbose = true
	}

	merged := cfg.MergeWithDefaults(config.FromEnv())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	if merged.DatabaseURL == "" {
		return config.Config{}, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return merged, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	logger.Info("starting clinic server",
		zap.Int("port", cfg.Port),
		zap.String("default_language", cfg.DefaultLanguage),
		zap.Duration("catalog_cache_ttl", cfg.CacheTTL()),
	)

	srv, err := server.New(context.Background(), server.Config{
		Port:            cfg.Port,
		DatabaseURL:     cfg.DatabaseURL,
		AllowedOrigin:   cfg.AllowedOrigin,
		DefaultLanguage: cfg.DefaultLanguage,
		CatalogCacheTTL: cfg.CacheTTL(),
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
