package config

import "time"

// StreamConfig controls backend log subscriptions and dashboard session lifetime.
type StreamConfig struct {
	// ReconnectInterval paces resubscription after a stream ends while a view is still open.
	ReconnectInterval time.Duration `env:"RECONNECT_INTERVAL" envDefault:"2s"`
	ReconnectBurst    int           `env:"RECONNECT_BURST"    envDefault:"2"`
	// IdleTTL is how long a dashboard session with no open views survives.
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"30m"`
	// Heartbeat is the keepalive period on browser relays.
	Heartbeat time.Duration `env:"HEARTBEAT" envDefault:"15s"`
}

// Sanitize enforces lower bounds.
func (s *StreamConfig) Sanitize() {
	s.ReconnectInterval = max(s.ReconnectInterval, 100*time.Millisecond)
	s.ReconnectBurst = max(s.ReconnectBurst, 1)
	s.IdleTTL = max(s.IdleTTL, time.Minute)
	s.Heartbeat = max(s.Heartbeat, time.Second)
}
