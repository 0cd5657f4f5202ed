package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"provider-balancer/balancer/pkg/cli"
	"provider-balancer/balancer/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the server.

Checks that the YAML parses, that every model route references a known
provider, and that settings fall within accepted ranges. Exits non-zero
and prints every validation error found, not just the first.

Examples:
  # Validate the default config
  balancer validate

  # Validate a specific file
  balancer validate --config /etc/balancer/balancer.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Println("✗ Configuration invalid:")
		fmt.Println()
		fmt.Println(err.Error())
		return cli.NewCommandError("validate", err)
	}

	fmt.Printf("✓ Configuration valid (%s)\n", cfgFile)
	fmt.Printf("  providers:     %d\n", len(cfg.Providers))
	fmt.Printf("  model routes:  %d\n", len(cfg.ModelRoutes))
	fmt.Printf("  listen:        %s\n", cfg.Proxy.ListenAddress)
	fmt.Printf("  tls enabled:   %t\n", cfg.Security.TLS.Enabled)
	return nil
}
