// Package pagerduty triggers PagerDuty Events API v2 incidents for halted jobs.
package pagerduty

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/grailed-admin/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Endpoint   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	routingKey string
	source     string
	component  string
	hook       notify.Webhook
}

// NewClient constructs a PagerDuty events client. A routing key is required.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
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
		routingKey: key,
		source:     notify.Fallback(strings.TrimSpace(cfg.Source), "grailed-admin"),
		component:  notify.Fallback(strings.TrimSpace(cfg.Component), "job-dashboard"),
		hook: notify.Webhook{
			Name:       "pagerduty api",
			URL:        notify.Fallback(strings.TrimSpace(cfg.Endpoint), APIEndpoint),
			RetryLimit: cfg.RetryLimit,
			Client:     hc,
		},
	}, nil
}

// SendJobFault submits a trigger event to PagerDuty.
func (c *Client) SendJobFault(ctx context.Context, payload notify.JobFaultPayload) error {
	return c.hook.Post(ctx, c.buildEvent(payload))
}

func (c *Client) buildEvent(payload notify.JobFaultPayload) map[string]any {
	severity := notify.Fallback(strings.ToLower(payload.Severity), notify.SeverityCritical)

	occurredAt := payload.OccurredAt.UTC()
	if payload.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	custom := map[string]any{
		"job_kind": payload.Kind,
		"reason":   payload.Reason,
		"message":  payload.Message,
	}
	if payload.SessionID != "" {
		custom["session_id"] = payload.SessionID
	}
	for k, v := range payload.Metadata {
		if _, exists := custom[k]; !exists {
			custom[k] = v
		}
	}

	// One open incident per job kind; repeated faults fold into it.
	dedupKey := "grailed-admin:" + notify.Fallback(payload.Kind, "unknown")

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    dedupKey,
		"payload": map[string]any{
			"summary":        fmt.Sprintf("%s job halted: %s", notify.Fallback(payload.Kind, "unknown"), notify.Fallback(payload.Reason, "fault")),
			"severity":       severity,
			"source":         c.source,
			"component":      c.component,
			"timestamp":      occurredAt.Format(time.RFC3339),
			"custom_details": custom,
		},
	}
}
