package backend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/ports"
)

const maxEventLine = 1 << 20

// OpenLogStream connects to the server-sent event stream for kind. The stream stays open until
// ctx is cancelled, Close is called, or the server ends it.
func (c *Client) OpenLogStream(ctx context.Context, kind job.Kind) (ports.EventStream, error) {
	path, err := endpoint(kind, opLogs)
	if err != nil {
		return nil, err
	}
	op := "GET " + path

	streamCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		cancel()
		return nil, &transportError{op: op, err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		cancel()
		return nil, &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	c.logger.DebugContext(ctx, "log stream opened", "kind", kind)
	return newSSEStream(resp.Body, cancel), nil
}

// sseStream decodes the text/event-stream framing: data lines are joined with newlines and
// dispatched on a blank line. Lines end in LF, CR or CRLF. Comment, event, id and retry fields
// are skipped. An event cut off by end of stream is discarded.
type sseStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	cancel context.CancelFunc
	// skipLF is set after a CR so a following LF is read as part of the same terminator.
	skipLF bool

	closeOnce sync.Once
	closeErr  error
}

func newSSEStream(body io.ReadCloser, cancel context.CancelFunc) *sseStream {
	return &sseStream{
		body:   body,
		reader: bufio.NewReaderSize(body, 64*1024),
		cancel: cancel,
	}
}

// Next returns the payload of the next event. An event without data lines yields "".
func (s *sseStream) Next() (string, error) {
	var (
		data    []string
		hasData bool
	)
	for {
		line, err := s.readLine()
		if err != nil {
			return "", err
		}

		if line == "" {
			if hasData {
				return strings.Join(data, "\n"), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		if field == "data" {
			data = append(data, value)
			hasData = true
		}
	}
}

// readLine returns the next complete line without its terminator. A final line with no
// terminator is incomplete and yields io.EOF.
func (s *sseStream) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			return "", err
		}
		if s.skipLF {
			s.skipLF = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case '\n':
			return sb.String(), nil
		case '\r':
			s.skipLF = true
			return sb.String(), nil
		}
		if sb.Len() >= maxEventLine {
			return "", fmt.Errorf("event line exceeds %d bytes", maxEventLine)
		}
		sb.WriteByte(b)
	}
}

// Close cancels the request and releases the connection. It is safe to call more than once.
func (s *sseStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
