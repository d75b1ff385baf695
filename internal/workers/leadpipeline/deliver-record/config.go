// internal/workers/leadpipeline/deliver-record/config.go
package deliverrecord

import "time"

type Config struct {
	Timeout time.Duration

	// Optional sinks can be disabled per deployment.
	CRMEnabled   bool
	IndexEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		CRMEnabled:   true,
		IndexEnabled: true,
	}
}
