// internal/workers/leadpipeline/extract-ai-response/config.go
package extractairesponse

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
