package agentrun

import "time"

type Config struct {
	// Processing
	TickInterval time.Duration
	BatchSize    int

	// Leader Election
	LeaderKey string
	LeaderTTL time.Duration

	// Recovery
	StuckThreshold time.Duration
	RetentionDays  int

	// Shutdown
	ShutdownTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		TickInterval:    time.Minute,
		BatchSize:       50,
		LeaderKey:       "agentrunner:leader",
		LeaderTTL:       30 * time.Second,
		StuckThreshold:  30 * time.Minute,
		RetentionDays:   90,
		ShutdownTimeout: 30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.LeaderTTL <= 0 {
		c.LeaderTTL = 30 * time.Second
	}
	if c.StuckThreshold <= 0 {
		c.StuckThreshold = 30 * time.Minute
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	return nil
}
