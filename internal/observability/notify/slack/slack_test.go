package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/target/grailed-admin/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#scraper-alerts",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.JobFaultPayload{
		Kind:     "scraping",
		Reason:   notify.ReasonRemoteError,
		Message:  "disk <full>",
		Metadata: map[string]string{"session": "abc"},
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#scraper-alerts" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	for _, want := range []string{"Job halted", "`scraping`", "remote_error", "disk &lt;full&gt;", "session: abc", "critical"} {
		if !strings.Contains(text, want) {
			t.Fatalf("message text missing %q: %s", want, text)
		}
	}
}

func TestFormatMessageDashboardLink(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL:   "https://hooks.slack.com/services/test",
		DashboardURL: "https://admin.example.com/",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, _ := client.formatMessage(notify.JobFaultPayload{Kind: "text-embedding"})["text"].(string)
	expected := "<https://admin.example.com/embedding|open embedding>"
	if !strings.Contains(text, expected) {
		t.Fatalf("expected link %q in text: %s", expected, text)
	}
}

func TestSendJobFaultPostsToWebhook(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendJobFault(context.Background(), notify.JobFaultPayload{Kind: "scraping"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	body := <-received
	if body["username"] != "grailed-admin" {
		t.Fatalf("expected default username, got %v", body["username"])
	}
}
