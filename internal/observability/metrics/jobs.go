// Package metrics names and tags the metrics emitted around job control and log streaming.
package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/target/grailed-admin/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Stream outcomes tagged on stream.event.
const (
	StreamApplied    = "applied"
	StreamIgnored    = "ignored"
	StreamUndecoded  = "undecodable"
	StreamCheckpoint = "checkpoint"
	StreamBadCheckpt = "bad_checkpoint"
	StreamLate       = "late"
)

// ControlMetric describes one control call against the backend.
type ControlMetric struct {
	Kind     string
	Action   string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitControl records the outcome and latency of a control call.
func EmitControl(sink statsd.Sink, in ControlMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"kind":   in.Kind,
		"action": in.Action,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		tags["error_class"] = Classify(in.Err)
	}
	sink.Count("job.control", 1, tags)
	if in.Duration > 0 {
		sink.Timing("job.control.duration", in.Duration, CloneTags(tags))
	}
}

// EmitTransition records an Active/Stopped change and what caused it.
func EmitTransition(sink statsd.Sink, kind string, active bool, cause string) {
	if sink == nil {
		return
	}
	state := "stopped"
	if active {
		state = "active"
	}
	sink.Count("job.transition", 1, map[string]string{"kind": kind, "to": state, "cause": cause})
}

// EmitStreamEvent counts a stream event by outcome.
func EmitStreamEvent(sink statsd.Sink, kind, outcome string) {
	if sink == nil {
		return
	}
	sink.Count("stream.event", 1, map[string]string{"kind": kind, "outcome": outcome})
}

// EmitStreamConnect counts subscription attempts against the backend log stream.
func EmitStreamConnect(sink statsd.Sink, kind string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"kind": kind, "result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		tags["error_class"] = Classify(err)
	}
	sink.Count("stream.connect", 1, tags)
}

// GaugeViewers records how many browser views are open for a job.
func GaugeViewers(sink statsd.Sink, kind string, n int) {
	if sink == nil {
		return
	}
	sink.Gauge("stream.viewers", float64(n), map[string]string{"kind": kind})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Classify returns a short error class for tagging. Errors may name their own class by
// implementing ErrorClass() string; otherwise the innermost concrete type name is used.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var classed interface{ ErrorClass() string }
	if errors.As(err, &classed) {
		if c := classed.ErrorClass(); c != "" {
			return c
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
