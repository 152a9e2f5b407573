package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newHealthcheckCmd() *cobra.Command {
	var (
		mode    string
		baseURL string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running server (for container health checks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var path string
			switch mode {
			case "ready":
				path = "/readyz"
			case "live":
				path = "/healthz"
			default:
				return fmt.Errorf("invalid mode %q (use ready or live)", mode)
			}

			url := strings.TrimRight(baseURL, "/") + path
			client := http.Client{Timeout: timeout}

			resp, err := client.Get(url)
			if err != nil {
				return fmt.Errorf("healthcheck failed (network): %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("healthcheck failed (status): %s", resp.Status)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Healthcheck successful (%s)\n", mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "ready", "healthcheck mode: ready (default) or live")
	cmd.Flags().StringVar(&baseURL, "url", "http://127.0.0.1:8080", "base URL of the API listener")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "check timeout")
	return cmd
}
