package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig limits one route. Path segments written as {name} match any value.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // bucket capacity, defaults to Limit
}

// key groups requests into one bucket: every session id shares the route's bucket.
func (e *EndpointConfig) key(path string) string {
	if e.Path != "" {
		return e.Path
	}
	return path
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig reads REVIEW_RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !getEnvBool("REVIEW_RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("REVIEW_RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("REVIEW_RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("REVIEW_RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("REVIEW_RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("REVIEW_RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits of the review API.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// diffing two documents and applying are the expensive calls
		{Path: "/reviews", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/reviews/{id}/apply", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		{Path: "/reviews/{id}/decisions", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/reviews/{id}/accept-all", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/reviews/{id}/reject-all", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/reviews/{id}/sections/{section}/accept-all", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/reviews/{id}/sections/{section}/reject-all", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// MatchEndpoint returns the config for a request, or nil to use the default limit.
// GET /health is never limited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: path, Method: method}
	}
	for i := range configs {
		if configs[i].Method == method && matchPattern(configs[i].Path, path) {
			return &configs[i]
		}
	}
	return nil
}

func matchPattern(pattern, path string) bool {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// parseIPList parses a comma-separated list of client addresses.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
