package config

import "time"

// RateLimitConfig configures the Redis token-bucket limiter applied to
// the API.  Purchase spikes on popular events are the reason this exists.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig, with defaults suited to interactive clients.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Capacity:       atoi(getenv("RATE_LIMIT_CAPACITY", "20")),
		RefillTokens:   atoi(getenv("RATE_LIMIT_REFILL_TOKENS", "10")),
		RefillInterval: parseDur(getenv("RATE_LIMIT_REFILL_INTERVAL", "1s")),
		TTL:            parseDur(getenv("RATE_LIMIT_TTL", "10m")),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "evrl"),
		Debug:          getenv("RATE_LIMIT_DEBUG", "false") == "true",
	}
}
