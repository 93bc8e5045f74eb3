// internal/workers/matching/rank-missions/config.go
package rankmissions

import "time"

type Config struct {
	MaxItems int
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxItems: 50,
		CacheTTL: 5 * time.Minute,
		Timeout:  30 * time.Second,
	}
}
