package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/grailed-admin/internal/domain/job"
)

func TestSSEStream_Framing(t *testing.T) {
	raw := ": keep-alive\n" +
		"event: log\n" +
		"data: {\"level\":\"INFO\",\"message\":\"one\"}\n\n" +
		"data: first\r\n" +
		"data: second\r\n\r\n" +
		"id: 7\n\n" +
		"data:\n\n" +
		"data: cr-only\r\r" +
		"data: tail-without-blank"

	s := newSSEStream(io.NopCloser(strings.NewReader(raw)), func() {})

	got, err := s.Next()
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"INFO","message":"one"}`, got)

	got, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)

	got, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "", got, "an empty data field is still an event")

	got, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "cr-only", got, "a lone CR ends a line")

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF, "an event cut off by end of stream is dropped")
}

func TestSSEStream_IncompleteFinalEventDropped(t *testing.T) {
	raw := "data: complete\n\n" +
		"data: partial-one\n" +
		"data: partial-two\n"
	s := newSSEStream(io.NopCloser(strings.NewReader(raw)), func() {})

	got, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "complete", got)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSSEStream_LongLineRejected(t *testing.T) {
	raw := "data: " + strings.Repeat("x", maxEventLine+1) + "\n\n"
	s := newSSEStream(io.NopCloser(strings.NewReader(raw)), func() {})

	_, err := s.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestOpenLogStream_ReadsEventsAndCloses(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings/text/logs", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		assert.True(t, ok)
		for i := 1; i <= 2; i++ {
			_, _ = fmt.Fprintf(w, "data: {\"level\":\"INFO\",\"message\":\"line %d\"}\n\n", i)
			flusher.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer close(release)

	stream, err := c.OpenLogStream(context.Background(), job.KindTextEmbedding)
	require.NoError(t, err)

	first, err := stream.Next()
	require.NoError(t, err)
	assert.Contains(t, first, "line 1")
	second, err := stream.Next()
	require.NoError(t, err)
	assert.Contains(t, second, "line 2")

	done := make(chan error, 1)
	go func() {
		_, err := stream.Next()
		done <- err
	}()
	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	select {
	case err := <-done:
		assert.Error(t, err, "Next must unblock once the stream is closed")
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after Close")
	}
}

func TestOpenLogStream_StatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such job", http.StatusNotFound)
	}))

	_, err := c.OpenLogStream(context.Background(), job.KindScraping)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}
