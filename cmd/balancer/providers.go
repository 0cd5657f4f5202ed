package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"provider-balancer/balancer/pkg/cli"
)

var providersFlags struct {
	adminAddr string
	reload    bool
	output    string
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Print or reload the provider registry of a running instance",
	Long: `Query a running balancer's admin API for its current provider
registry snapshot, or trigger a config reload.

Examples:
  # Print the registry snapshot of the instance listening on :8080
  balancer providers --addr http://localhost:8080

  # Trigger a config reload and print the result
  balancer providers --addr http://localhost:8080 --reload

  # Print as JSON instead of a table
  balancer providers --output json`,
	RunE: runProviders,
}

func init() {
	providersCmd.Flags().StringVar(&providersFlags.adminAddr, "addr", "http://localhost:8080", "base URL of the running instance's admin API")
	providersCmd.Flags().BoolVar(&providersFlags.reload, "reload", false, "trigger POST /providers/reload instead of GET /providers")
	providersCmd.Flags().StringVarP(&providersFlags.output, "output", "o", "text", "output format: text or json")
	rootCmd.AddCommand(providersCmd)
}

type providerSnapshot struct {
	Name              string `json:"name"`
	Kind              string `json:"kind"`
	BaseURL           string `json:"base_url"`
	Enabled           bool   `json:"enabled"`
	Healthy           bool   `json:"healthy"`
	ConsecutiveErrors int    `json:"consecutive_errors"`
	LastErrorTime     *int64 `json:"last_error_time"`
}

func runProviders(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	if providersFlags.reload {
		return doReload(client)
	}
	return doSnapshot(client)
}

func doSnapshot(client *http.Client) error {
	resp, err := client.Get(providersFlags.adminAddr + "/providers")
	if err != nil {
		return cli.NewCommandError("providers", fmt.Errorf("request to %s failed: %w", providersFlags.adminAddr, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cli.NewCommandError("providers", err)
	}
	if resp.StatusCode != http.StatusOK {
		return cli.NewCommandError("providers", fmt.Errorf("admin API returned %s: %s", resp.Status, string(body)))
	}

	var payload struct {
		Providers []providerSnapshot `json:"providers"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return cli.NewCommandError("providers", fmt.Errorf("decoding response: %w", err))
	}

	if providersFlags.output == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, payload.Providers)
	}

	printProviderTable(payload.Providers)
	return nil
}

func doReload(client *http.Client) error {
	resp, err := client.Post(providersFlags.adminAddr+"/providers/reload", "application/json", nil)
	if err != nil {
		return cli.NewCommandError("providers", fmt.Errorf("request to %s failed: %w", providersFlags.adminAddr, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cli.NewCommandError("providers", err)
	}
	if resp.StatusCode != http.StatusOK {
		return cli.NewCommandError("providers", fmt.Errorf("reload failed with %s: %s", resp.Status, string(body)))
	}

	fmt.Println("✓ Config reloaded")
	fmt.Println(string(body))
	return nil
}

func printProviderTable(snapshots []providerSnapshot) {
	fmt.Printf("%-20s %-18s %-8s %-8s %s\n", "NAME", "KIND", "ENABLED", "HEALTHY", "CONSECUTIVE ERRORS")
	for _, p := range snapshots {
		fmt.Printf("%-20s %-18s %-8t %-8t %d\n", p.Name, p.Kind, p.Enabled, p.Healthy, p.ConsecutiveErrors)
	}
}
