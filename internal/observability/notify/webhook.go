package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Webhook posts JSON documents to a fixed URL with linear backoff between attempts.
type Webhook struct {
	Name       string
	URL        string
	RetryLimit int
	Client     *http.Client
}

// Post encodes body and delivers it, retrying up to RetryLimit extra times.
func (w Webhook) Post(ctx context.Context, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", w.Name, err)
	}

	attempts := max(w.RetryLimit, 0) + 1
	var lastErr error
	for attempt := range attempts {
		if lastErr = w.send(ctx, payload); lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * 200 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (w Webhook) send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", w.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", w.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return errors.Join(fmt.Errorf("%s %s", w.Name, resp.Status), readErr)
		}
		return fmt.Errorf("%s %s: %s", w.Name, resp.Status, strings.TrimSpace(string(respBody)))
	}
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("drain %s response body: %w", w.Name, err)
	}
	return nil
}
