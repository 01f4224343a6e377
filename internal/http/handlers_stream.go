package httpx

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/store"
)

const (
	defaultHeartbeat = 15 * time.Second
	wsWriteWait      = 10 * time.Second
)

// StreamHandlers relays a job's store to the browser while the view is open. Opening a relay
// opens the dashboard view, which keeps the backend log subscription alive.
type StreamHandlers struct {
	Renderer  *Renderer
	Heartbeat time.Duration
	Logger    *slog.Logger
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

func (h *StreamHandlers) heartbeat() time.Duration {
	if h.Heartbeat <= 0 {
		return defaultHeartbeat
	}
	return h.Heartbeat
}

// delta is what changed between two snapshots of one store.
type delta struct {
	status bool
	reset  bool
	logs   []job.LogEvent
}

func (d delta) empty() bool { return !d.status && !d.reset && len(d.logs) == 0 }

// cursor remembers what a relay has already sent.
type cursor struct {
	version uint64
	active  bool
	summary job.Summary
	logs    int
	firstID string
}

func newCursor(snap store.Snapshot) *cursor {
	c := &cursor{}
	c.mark(snap)
	return c
}

func (c *cursor) mark(snap store.Snapshot) {
	c.version = snap.Version
	c.active = snap.Status.Active
	c.summary = snap.Status.Summary
	c.logs = len(snap.Logs)
	c.firstID = ""
	if len(snap.Logs) > 0 {
		c.firstID = snap.Logs[0].ID
	}
}

// advance returns the changes since the last call and moves the cursor to snap. The log only
// grows or is replaced wholesale, so a shorter log or a different first line means a reset.
func (c *cursor) advance(snap store.Snapshot) delta {
	if snap.Version == c.version {
		return delta{}
	}
	var d delta
	d.status = snap.Status.Active != c.active || snap.Status.Summary != c.summary
	switch {
	case len(snap.Logs) < c.logs:
		d.reset = true
	case c.logs > 0 && snap.Logs[0].ID != c.firstID:
		d.reset = true
	default:
		d.logs = snap.Logs[c.logs:]
	}
	c.mark(snap)
	return d
}

// Events handles GET /jobs/{kind}/events as a server-sent event stream of HTML fragments
// for the htmx sse extension.
func (h *StreamHandlers) Events(w http.ResponseWriter, r *http.Request) {
	st, ok := storeForRequest(w, r)
	if !ok {
		return
	}
	release, err := DashboardFromRequest(r).OpenView(st.Kind())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "unavailable", Err: err})
		return
	}
	defer release()
	unsubscribe, changes := st.Subscribe()
	defer unsubscribe()

	rc := http.NewResponseController(w)
	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	operator := isOperator(r)
	snap := st.Snapshot()
	cur := newCursor(snap)
	if err := h.sendFull(w, snap, operator); err != nil {
		return
	}
	_ = rc.Flush()

	ticker := time.NewTicker(h.heartbeat())
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-changes:
			if !open {
				return
			}
			snap := st.Snapshot()
			if err := h.sendDelta(w, snap, cur.advance(snap), operator); err != nil {
				h.Logger.DebugContext(r.Context(), "event stream write failed", "kind", st.Kind(), "error", err)
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (h *StreamHandlers) sendFull(w io.Writer, snap store.Snapshot, operator bool) error {
	view := newJobView(snap, operator)
	if err := h.sendFragment(w, eventStatus, "job-status", view); err != nil {
		return err
	}
	return h.sendFragment(w, eventConsole, "job-console", view)
}

func (h *StreamHandlers) sendDelta(w io.Writer, snap store.Snapshot, d delta, operator bool) error {
	if d.empty() {
		return nil
	}
	view := newJobView(snap, operator)
	if d.status {
		if err := h.sendFragment(w, eventStatus, "job-status", view); err != nil {
			return err
		}
	}
	if d.reset {
		return h.sendFragment(w, eventConsole, "job-console", view)
	}
	for _, ev := range d.logs {
		if err := h.sendFragment(w, eventLog, "log-line", ev); err != nil {
			return err
		}
	}
	return nil
}

func (h *StreamHandlers) sendFragment(w io.Writer, event, tmpl string, data any) error {
	html, err := h.Renderer.Fragment(tmpl, data)
	if err != nil {
		return err
	}
	return writeSSE(w, event, html)
}

// writeSSE writes one event. Multi-line data is split across data fields.
func writeSSE(w io.Writer, event, data string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", event)
	for _, line := range strings.Split(strings.TrimRight(data, "\n"), "\n") {
		b.WriteString("data: ")
		b.WriteString(strings.TrimRight(line, "\r"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// WebSocket handles GET /jobs/{kind}/ws. The first message is the full snapshot; later ones
// carry only what changed.
func (h *StreamHandlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	st, ok := storeForRequest(w, r)
	if !ok {
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	release, err := DashboardFromRequest(r).OpenView(st.Kind())
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()), time.Now().Add(wsWriteWait))
		return
	}
	defer release()
	unsubscribe, changes := st.Subscribe()
	defer unsubscribe()

	pongWait := 2 * h.heartbeat()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.Logger.DebugContext(r.Context(), "websocket closed", "error", err)
				}
				return
			}
		}
	}()

	snap := st.Snapshot()
	cur := newCursor(snap)
	if err := writeWS(conn, snapshotMessage(snap)); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat())
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case _, open := <-changes:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"), time.Now().Add(wsWriteWait))
				return
			}
			snap := st.Snapshot()
			d := cur.advance(snap)
			if d.empty() {
				continue
			}
			msg := statusMessage{
				Type:    "update",
				Kind:    snap.Status.Kind,
				Active:  snap.Status.Active,
				Summary: snap.Status.Summary,
				Logs:    d.logs,
				Reset:   d.reset,
				Version: snap.Version,
			}
			if d.reset {
				msg.Logs = snap.Logs
			}
			if err := writeWS(conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func writeWS(conn *websocket.Conn, msg statusMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// sameOrigin accepts requests without an Origin header and those whose Origin host matches
// the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
