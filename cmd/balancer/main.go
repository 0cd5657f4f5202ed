// Command balancer reverse-proxies the Anthropic Messages API across a pool
// of Anthropic-native and OpenAI-compatible providers, with health-aware
// failover, request deduplication, and SSE fan-out.
//
// Usage:
//
//	# Start the proxy with the default configuration
//	balancer run
//
//	# Start with a specific configuration file
//	balancer run --config /path/to/balancer.yaml
//
//	# Validate a configuration file without starting the server
//	balancer validate --config /path/to/balancer.yaml
//
//	# Print the registry snapshot from a running instance
//	balancer providers --addr http://localhost:8080
//
//	# Show version information
//	balancer version
//
// For complete documentation, see: https://github.com/provider-balancer/balancer
package main

func main() {
	Execute()
}
