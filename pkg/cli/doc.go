/*
Package cli provides command-line interface utilities for the balancer.

The cli package includes output formatters and common CLI helpers used by
the balancer command.

Output Formatting:

The cli package formats command results as text or JSON. A CSV formatter
is also defined, but it returns an error for every input:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
