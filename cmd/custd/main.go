// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command custd serves the customer accounts REST API and carries the
// operator tooling around it (config, database, health probes).
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/custd/internal/config"
	"github.com/ManuGH/custd/internal/version"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "custd",
		Short:        "Customer accounts REST service",
		Long:         "custd manages customer account records behind a REST interface.\nWithout a subcommand it runs the server.",
		SilenceUsage: true,
		Version:      version.String(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to config file (YAML); defaults to $CUSTD_CONFIG or $CUSTD_DATA_DIR/config.yaml")

	root.AddCommand(
		newServeCmd(opts),
		newDBCmd(opts),
		newConfigCmd(opts),
		newHealthcheckCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves the config file and loads ENV > file > defaults.
func loadConfig(opts *rootOptions) (config.AppConfig, *config.Loader, error) {
	path := config.ResolveConfigPath(strings.TrimSpace(opts.configPath))
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		if path == "" {
			return cfg, loader, fmt.Errorf("load config (env+defaults): %w", err)
		}
		return cfg, loader, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, loader, nil
}

// maskURL removes user info from a connection URL for safe logging.
// Keyword/value DSNs may carry a password anywhere and are hidden entirely.
func maskURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		return "redacted"
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	return parsedURL.String()
}
