package handlers

import (
	"encoding/json"
	"net/http"

	"provider-balancer/balancer/pkg/config"
	"provider-balancer/balancer/pkg/providers"
)

// providerSnapshot is the per-provider shape named verbatim in §6:
// {name, kind, base_url, enabled, healthy, consecutive_errors, last_error_time}.
type providerSnapshot struct {
	Name              string `json:"name"`
	Kind              string `json:"kind"`
	BaseURL           string `json:"base_url"`
	Enabled           bool   `json:"enabled"`
	Healthy           bool   `json:"healthy"`
	ConsecutiveErrors int    `json:"consecutive_errors"`
	LastErrorTime     *int64 `json:"last_error_time"`
}

// ProvidersHandler serves GET /providers: the registry snapshot named in §6.
type ProvidersHandler struct {
	Registry *providers.Registry
	Tracker  *providers.Tracker
}

// NewProvidersHandler creates a new registry-snapshot handler.
func NewProvidersHandler(registry *providers.Registry, tracker *providers.Tracker) *ProvidersHandler {
	return &ProvidersHandler{Registry: registry, Tracker: tracker}
}

func (h *ProvidersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := h.Registry.List()
	snapshots := make([]providerSnapshot, 0, len(list))
	for _, p := range list {
		status := h.Tracker.Status(p.Name)
		snap := providerSnapshot{
			Name:              p.Name,
			Kind:              string(p.Kind),
			BaseURL:           p.BaseURL,
			Enabled:           p.Enabled,
			Healthy:           status.Healthy,
			ConsecutiveErrors: status.ConsecutiveErrors,
		}
		if !status.LastErrorTime.IsZero() {
			ts := status.LastErrorTime.Unix()
			snap.LastErrorTime = &ts
		}
		snapshots = append(snapshots, snap)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"providers": snapshots})
}

// ReloadHandler serves POST /providers/reload: reloads the provider/route
// configuration from the on-disk config file named at startup and swaps it
// into the Provider Registry atomically (§4.1). A parse or validation
// failure leaves the previous snapshot intact and is reported to the caller.
type ReloadHandler struct {
	Registry   *providers.Registry
	ConfigPath string
}

// NewReloadHandler creates a new config-reload admin handler.
func NewReloadHandler(registry *providers.Registry, configPath string) *ReloadHandler {
	return &ReloadHandler{Registry: registry, ConfigPath: configPath}
}

func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := config.LoadConfigWithEnvOverrides(h.ConfigPath)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}

	providerList := config.BuildProviders(cfg.Providers)
	routes := config.BuildRoutes(cfg.ModelRoutes)
	if err := h.Registry.Reload(providerList, routes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "reloaded",
		"providers": len(providerList),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
