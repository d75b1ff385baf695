// internal/workers/leadpipeline/normalize-lead/config.go
package normalizelead

import "time"

type Config struct {
	Timeout time.Duration

	// Timezone used for the human-facing "Formatted Time Local" column.
	LocalTimezone string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		LocalTimezone: "Asia/Kolkata",
	}
}
