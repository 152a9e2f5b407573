// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuGH/custd/internal/daemon"
	"github.com/ManuGH/custd/internal/health"
	"github.com/ManuGH/custd/internal/persistence/sqlite"
	"github.com/ManuGH/custd/internal/store"
)

func newDBCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	cmd.AddCommand(newDBInitCmd(opts), newDBVerifyCmd(opts))
	return cmd
}

func newDBInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the customer schema in the configured store",
		Long:  "Opens the configured store, which bootstraps the schema idempotently, and closes it again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Store.Backend == store.BackendMemory {
				return errors.New("the memory backend has no schema to initialize")
			}
			if err := health.PerformStartupChecks(cmd.Context(), cfg); err != nil {
				return err
			}

			repo, err := store.Open(cmd.Context(), daemon.StoreConfig(cfg))
			if err != nil {
				return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
			}
			if err := repo.Close(); err != nil {
				return fmt.Errorf("close %s store: %w", cfg.Store.Backend, err)
			}

			target := cfg.Store.Path
			if cfg.Store.Backend == store.BackendPostgres {
				target = maskURL(cfg.Store.DSN)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s store ready at %s\n", cfg.Store.Backend, target)
			return nil
		},
	}
}

func newDBVerifyCmd(opts *rootOptions) *cobra.Command {
	var (
		path string
		mode string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check SQLite database integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode != sqlite.ModeQuick && mode != sqlite.ModeFull {
				return fmt.Errorf("invalid mode %q (use quick or full)", mode)
			}

			if path == "" {
				cfg, _, err := loadConfig(opts)
				if err != nil {
					return err
				}
				if cfg.Store.Backend != store.BackendSQLite {
					return fmt.Errorf("db verify supports the sqlite backend only (configured: %s)", cfg.Store.Backend)
				}
				path = cfg.Store.Path
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("database not found: %w", err)
			}

			rep, err := sqlite.VerifyIntegrity(cmd.Context(), path, mode)
			if err != nil {
				return fmt.Errorf("verify %s: %w", path, err)
			}
			out := cmd.OutOrStdout()
			if !rep.Healthy() {
				for _, issue := range rep.Issues {
					_, _ = fmt.Fprintf(out, "  - %s\n", issue)
				}
				return fmt.Errorf("integrity check failed for %s (%d issues)", path, len(rep.Issues))
			}
			_, _ = fmt.Fprintf(out, "✓ %s passed %s check (schema v%d)\n", path, mode, rep.SchemaVersion)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path to a SQLite database (defaults to the configured store)")
	cmd.Flags().StringVar(&mode, "mode", sqlite.ModeQuick, "verification mode: quick or full")
	return cmd
}
