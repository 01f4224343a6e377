// Package slack delivers job fault notifications to a Slack incoming webhook.
package slack

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/target/grailed-admin/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// DashboardURL, when set, is linked from the message so responders can open the job page.
	DashboardURL string
}

// Client delivers job fault notifications to a Slack webhook.
type Client struct {
	hook         notify.Webhook
	channel      string
	username     string
	dashboardURL string
}

// NewClient builds a Slack webhook client.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		hook: notify.Webhook{
			Name:       "slack webhook",
			URL:        webhookURL,
			RetryLimit: cfg.RetryLimit,
			Client:     hc,
		},
		channel:      strings.TrimSpace(cfg.Channel),
		username:     notify.Fallback(strings.TrimSpace(cfg.Username), "grailed-admin"),
		dashboardURL: strings.TrimSpace(cfg.DashboardURL),
	}, nil
}

// SendJobFault posts a formatted message to Slack.
func (c *Client) SendJobFault(ctx context.Context, payload notify.JobFaultPayload) error {
	return c.hook.Post(ctx, c.formatMessage(payload))
}

func (c *Client) formatMessage(payload notify.JobFaultPayload) map[string]any {
	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	var text strings.Builder
	text.WriteString("*Job halted*")
	if payload.Kind != "" {
		text.WriteString(" `")
		text.WriteString(payload.Kind)
		text.WriteByte('`')
	}
	text.WriteByte('\n')

	appendField(&text, "Severity", notify.Fallback(payload.Severity, notify.SeverityCritical))
	appendField(&text, "Reason", payload.Reason)
	appendField(&text, "Message", escape(payload.Message))
	appendField(&text, "Dashboard", c.jobLink(payload.Kind))
	appendMetadata(&text, payload.Metadata)
	text.WriteString("• Timestamp: ")
	text.WriteString(occurredAt.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

// jobLink returns a Slack link to the page that shows kind, or "" without a dashboard URL.
func (c *Client) jobLink(kind string) string {
	if c.dashboardURL == "" || kind == "" {
		return ""
	}
	u, err := url.Parse(c.dashboardURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	page := "scraping"
	if kind != "scraping" {
		page = "embedding"
	}
	link, err := url.JoinPath(u.String(), page)
	if err != nil {
		return ""
	}
	return "<" + link + "|open " + page + ">"
}

func escape(value string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(value)
}

func appendField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	text.WriteString("• ")
	text.WriteString(label)
	text.WriteString(": ")
	text.WriteString(value)
	text.WriteByte('\n')
}

func appendMetadata(text *strings.Builder, metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	text.WriteString("• Metadata:\n")
	for _, k := range keys {
		text.WriteString("    • ")
		text.WriteString(k)
		text.WriteString(": ")
		text.WriteString(metadata[k])
		text.WriteByte('\n')
	}
}
