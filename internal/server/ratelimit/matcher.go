package ratelimit

import "strings"

// MatchEndpoint resolves the limit configuration for a request path and
// method. Exact matches win; a configured path ending in "/" acts as a
// prefix, so "/jobs/" covers "/jobs/{id}". Returns nil when nothing matches
// and the caller should fall back to the global default.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// The health check is probed by load balancers and is never limited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}

	for i := range configs {
		cfg := &configs[i]
		if cfg.Method == method && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			return cfg
		}
	}

	return nil
}
