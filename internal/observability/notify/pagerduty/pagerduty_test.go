package pagerduty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/grailed-admin/internal/observability/notify"
)

func TestNewClientRequiresRoutingKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestBuildEvent(t *testing.T) {
	c, err := NewClient(Config{RoutingKey: "rk"})
	require.NoError(t, err)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	event := c.buildEvent(notify.JobFaultPayload{
		Kind:       "image-embedding",
		Reason:     notify.ReasonUnparseable,
		Message:    "Failed to parse log message.",
		OccurredAt: at,
		Metadata:   map[string]string{"job_kind": "ignored", "extra": "kept"},
	})

	assert.Equal(t, "rk", event["routing_key"])
	assert.Equal(t, "grailed-admin:image-embedding", event["dedup_key"])

	body, ok := event["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "image-embedding job halted: unparseable_event", body["summary"])
	assert.Equal(t, notify.SeverityCritical, body["severity"])
	assert.Equal(t, "2024-01-01T00:00:00Z", body["timestamp"])

	custom, ok := body["custom_details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "image-embedding", custom["job_kind"])
	assert.Equal(t, "kept", custom["extra"])
}

func TestSendJobFaultUsesEndpoint(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := NewClient(Config{RoutingKey: "rk", Endpoint: srv.URL, Client: srv.Client()})
	require.NoError(t, err)
	require.NoError(t, c.SendJobFault(context.Background(), notify.JobFaultPayload{Kind: "scraping"}))

	assert.Equal(t, "trigger", got["event_action"])
}
