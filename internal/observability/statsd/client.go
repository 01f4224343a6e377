// Package statsd emits DogStatsD-style metrics over UDP.
package statsd

import (
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const dialTimeout = 5 * time.Second

// Sink is what the job metrics helpers emit through.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config selects the UDP endpoint. Metrics are dropped unless Enabled and Address are both set.
type Config struct {
	Enabled bool
	Address string
	Prefix  string
	Logger  *slog.Logger
}

// Client writes one datagram per metric. A nil client or one without a
// connection drops everything.
type Client struct {
	prefix string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var _ Sink = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	c := &Client{prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "."), logger: cfg.Logger}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	addr := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || addr == "" {
		return c, nil
	}
	conn, err := net.DialTimeout("udp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", addr, err)
	}
	c.conn = conn
	return c, nil
}

func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.send(name, strconv.FormatInt(value, 10), "c", tags)
}

func (c *Client) Gauge(name string, value float64, tags map[string]string) {
	c.send(name, strconv.FormatFloat(value, 'f', -1, 64), "g", tags)
}

// Timing reports milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.send(name, strconv.FormatFloat(ms, 'f', -1, 64), "ms", tags)
}

// Close is idempotent and safe on a nil client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(name, value, typ string, tags map[string]string) {
	if c == nil {
		return
	}
	line := encode(c.prefix, name, value, typ, tags)
	if line == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		c.logger.Debug("statsd write failed", "metric", name, "error", err)
	}
}

var nameReplacer = strings.NewReplacer(" ", "_", "/", "_", ":", "_", "|", "_")

// encode renders prefix.name:value|type|#k:v,... with tags sorted by key.
// It returns "" when the name is blank.
func encode(prefix, name, value, typ string, tags map[string]string) string {
	name = nameReplacer.Replace(strings.TrimSpace(name))
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	name = strings.Trim(name, ".")
	if name == "" {
		return ""
	}

	var b strings.Builder
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte('.')
	}
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(typ)

	clean := cloneTags(tags)
	for i, k := range slices.Sorted(maps.Keys(clean)) {
		if i == 0 {
			b.WriteString("|#")
		} else {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(clean[k])
	}
	return b.String()
}

// cloneTags copies tags, trimming whitespace and dropping blank keys.
func cloneTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}
