package handlers

import "provider-balancer/balancer/pkg/providers"

// HealthSource is the read-only view of provider state the health handlers
// need. *providers.Registry and *providers.Tracker both satisfy the pieces
// they use.
type HealthSource struct {
	Registry *providers.Registry
	Tracker  *providers.Tracker
}
