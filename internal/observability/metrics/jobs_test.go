package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/grailed-admin/internal/observability/statsd"
)

type classedErr struct{}

func (classedErr) Error() string      { return "classed" }
func (classedErr) ErrorClass() string { return "http_502" }

func TestClassify(t *testing.T) {
	assert.Empty(t, Classify(nil))
	assert.Equal(t, "http_502", Classify(fmt.Errorf("wrap: %w", classedErr{})))
	assert.Equal(t, "timeout", Classify(fmt.Errorf("call: %w", context.DeadlineExceeded)))
	assert.Equal(t, "canceled", Classify(context.Canceled))
	assert.Equal(t, "errors_errorstring", Classify(fmt.Errorf("outer: %w", errors.New("inner"))))
}

func TestEmitControl(t *testing.T) {
	rec := &statsd.Recorder{}
	EmitControl(rec, ControlMetric{
		Kind:     "scraping",
		Action:   "start",
		Result:   ResultError,
		Duration: 20 * time.Millisecond,
		Err:      classedErr{},
	})

	counts := rec.Find("job.control")
	require.Len(t, counts, 1)
	assert.Equal(t, "http_502", counts[0].Tags["error_class"])
	assert.Equal(t, "start", counts[0].Tags["action"])

	timings := rec.Find("job.control.duration")
	require.Len(t, timings, 1)
	assert.InDelta(t, 20.0, timings[0].Value, 0.001)
}

func TestEmitTransitionAndStream(t *testing.T) {
	rec := &statsd.Recorder{}
	EmitTransition(rec, "text-embedding", false, "remote_error")
	EmitStreamEvent(rec, "text-embedding", StreamUndecoded)
	EmitStreamConnect(rec, "text-embedding", errors.New("refused"))
	GaugeViewers(rec, "text-embedding", 2)

	require.Len(t, rec.Find("job.transition"), 1)
	assert.Equal(t, "stopped", rec.Find("job.transition")[0].Tags["to"])
	assert.Equal(t, StreamUndecoded, rec.Find("stream.event")[0].Tags["outcome"])
	assert.Equal(t, ResultError, rec.Find("stream.connect")[0].Tags["result"])
	assert.InDelta(t, 2.0, rec.Find("stream.viewers")[0].Value, 0)

	EmitControl(nil, ControlMetric{})
	EmitTransition(nil, "", true, "")
}
