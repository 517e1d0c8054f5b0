package store

import "time"

// Config groups per backend settings.
type Config struct {
	PG PGConfig
}

// PGConfig configures postgres. Zero ConnectRetries and PingTimeout pick
// the boot defaults.
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffCeiling        = 2 * time.Second
)

func (c PGConfig) retries() int {
	if c.ConnectRetries > 0 {
		return c.ConnectRetries
	}
	return defaultConnectRetries
}

func (c PGConfig) pingTimeout() time.Duration {
	if c.PingTimeout > 0 {
		return c.PingTimeout
	}
	return defaultPingTimeout
}

// nextBackoff doubles d up to backoffCeiling.
func nextBackoff(d time.Duration) time.Duration {
	return min(d*2, backoffCeiling)
}
