// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/custd/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, validate and inspect configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd(opts), newConfigDumpCmd(opts))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file populated with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := strings.TrimSpace(file)
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.ToFileConfig(config.Defaults())); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "destination (defaults to $CUSTD_DATA_DIR/config.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigValidateCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o := *opts
			if file != "" {
				o.configPath = file
			}
			if config.ResolveConfigPath(o.configPath) == "" {
				return errors.New("--file is required (no config.yaml found in $CUSTD_DATA_DIR)")
			}
			_, loader, err := loadConfig(&o)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", loader.Path())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to YAML configuration file")
	return cmd
}

func newConfigDumpCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration (defaults + file + env) with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			fc := redact(config.ToFileConfig(cfg))

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(fc); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(fc)
			default:
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}

func redact(fc config.FileConfig) config.FileConfig {
	if fc.Store.DSN != "" {
		fc.Store.DSN = maskURL(fc.Store.DSN)
	}
	if fc.Cache.Redis.Password != "" {
		fc.Cache.Redis.Password = "***"
	}
	return fc
}
