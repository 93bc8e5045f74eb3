// internal/workers/engagement/record-participation/config.go
package recordparticipation

import "time"

type Config struct {
	BasePoints    int
	PointsPerHour int
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BasePoints:    10,
		PointsPerHour: 5,
		Timeout:       10 * time.Second,
	}
}
