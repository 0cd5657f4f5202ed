package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "balancer",
	Short: "balancer - reverse proxy for the Anthropic Messages API",
	Long: `balancer is a reverse proxy that multiplexes the Anthropic Messages API
across a pool of Anthropic-native and OpenAI-compatible upstream providers.

It provides:
  - Health-aware failover across providers with configurable strategies
  - Bidirectional Anthropic <-> OpenAI request/response translation
  - In-flight request deduplication and SSE stream fan-out
  - OAuth/API-key/bearer-token auth resolution per provider

For more information, visit: https://github.com/provider-balancer/balancer`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "balancer.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// The default completion command stays enabled; cobra does not add it
	// because completion.go registers its own "completion" command.
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
