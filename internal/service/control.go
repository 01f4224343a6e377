package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/target/grailed-admin/internal/domain/audit"
	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/observability/metrics"
	"github.com/target/grailed-admin/internal/observability/notify"
	"github.com/target/grailed-admin/internal/observability/statsd"
	"github.com/target/grailed-admin/internal/ports"
)

// StatusStore is the slice of store.Store the control and stream flows mutate.
type StatusStore interface {
	Kind() job.Kind
	Active() bool
	Append(events ...job.LogEvent) bool
	SetActive(active bool, events ...job.LogEvent) bool
	Deactivate() bool
	ApplyCheckpoint(cp job.Checkpoint) bool
	MergeReport(r job.StatusReport, events ...job.LogEvent) bool
	ClearLogs() bool
}

// ControlServiceOptions groups dependencies for ControlService.
type ControlServiceOptions struct {
	Backend ports.JobBackend    // Required: job control backend
	Audit   ports.AuditLog      // Optional: audit trail
	Faults  ports.FaultNotifier // Optional: paged when a job is stopped automatically
	Metrics statsd.Sink         // Optional: control metrics
	Logger  *slog.Logger        // Optional: structured logger
}

// ControlService issues job control calls and records their outcome in the job's store.
// Failures never propagate as errors to the page; they become ERROR console lines.
type ControlService struct {
	backend ports.JobBackend
	audit   ports.AuditLog
	faults  ports.FaultNotifier
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewControlService constructs a ControlService.
func NewControlService(opts ControlServiceOptions) (*ControlService, error) {
	if opts.Backend == nil {
		return nil, errors.New("JobBackend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlService{
		backend: opts.Backend,
		audit:   opts.Audit,
		faults:  opts.Faults,
		metrics: opts.Metrics,
		logger:  logger.With("component", "control_service"),
	}, nil
}

// MustNewControlService constructs a ControlService and panics on error.
func MustNewControlService(opts ControlServiceOptions) *ControlService {
	svc, err := NewControlService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create ControlService: %v", err))
	}
	return svc
}

// Start asks the backend to start the job. On acknowledgement the job becomes active.
func (s *ControlService) Start(ctx context.Context, st StatusStore) error {
	kind := st.Kind()
	began := time.Now()
	ack, err := s.backend.Start(ctx, kind)
	s.observe(ctx, kind, audit.ActionStart, nil, began, ack.Message, err)
	if err != nil {
		st.Append(job.Error(diagnosticsFor(kind).start))
		return err
	}
	if st.SetActive(true, job.Info(ack.Message)) {
		metrics.EmitTransition(s.metrics, kind.String(), true, "start")
	}
	return nil
}

// Stop asks the backend to stop the job. On acknowledgement the job becomes stopped.
func (s *ControlService) Stop(ctx context.Context, st StatusStore) error {
	kind := st.Kind()
	began := time.Now()
	ack, err := s.backend.Stop(ctx, kind)
	s.observe(ctx, kind, audit.ActionStop, nil, began, ack.Message, err)
	if err != nil {
		st.Append(job.Error(diagnosticsFor(kind).stop))
		return err
	}
	if st.SetActive(false, job.Info(ack.Message)) {
		metrics.EmitTransition(s.metrics, kind.String(), false, "stop")
	}
	return nil
}

// FetchStatus queries the backend and logs its message. Summary fields present in the reply
// are merged into the store; the running flag is left alone.
func (s *ControlService) FetchStatus(ctx context.Context, st StatusStore) error {
	kind := st.Kind()
	began := time.Now()
	report, err := s.backend.Status(ctx, kind)
	s.observe(ctx, kind, audit.ActionStatus, nil, began, report.Message, err)
	if err != nil {
		st.Append(job.Error(diagnosticsFor(kind).status))
		return err
	}
	st.MergeReport(report, job.Info(report.Message))
	return nil
}

// ClearLogs empties the job's console.
func (s *ControlService) ClearLogs(st StatusStore) {
	st.ClearLogs()
}

// AutoStop halts a job the stream reported as faulty. The caller has already flipped the
// store to stopped; this issues the backend stop and logs its outcome like a manual stop.
func (s *ControlService) AutoStop(ctx context.Context, st StatusStore, reason, detail string) {
	kind := st.Kind()
	metrics.EmitTransition(s.metrics, kind.String(), false, reason)
	s.logger.WarnContext(ctx, "stopping job after stream fault",
		"kind", kind, "reason", reason, "detail", detail)

	if s.faults != nil {
		s.faults.Dispatch(ctx, notify.JobFaultPayload{
			Kind:       kind.String(),
			Reason:     reason,
			Message:    detail,
			Severity:   notify.SeverityCritical,
			OccurredAt: time.Now().UTC(),
		})
	}

	began := time.Now()
	ack, err := s.backend.Stop(ctx, kind)
	params := map[string]string{"reason": reason}
	s.observe(audit.WithActor(ctx, audit.SystemActor), kind, audit.ActionAutoStop, params, began, ack.Message, err)
	if err != nil {
		st.Append(job.Error(diagnosticsFor(kind).stop))
		return
	}
	st.Append(job.Info(ack.Message))
}

// FilterRequest is the filter form. Only the non-empty parts are sent to the backend.
// RepeatedTitle and IgnoreSellers are collected by the form but no backend operation uses them.
type FilterRequest struct {
	Substrings    []string `json:"substrings" validate:"max=100,dive,required,max=200"`
	Designers     []string `json:"designers" validate:"max=100,dive,required,max=200"`
	IgnoreSellers []string `json:"ignore_sellers" validate:"max=100,dive,required,max=200"`
	Threshold     *int     `json:"threshold" validate:"omitempty,min=0,max=1000000"`
	RepeatedTitle bool     `json:"repeated_title"`
}

var filterValidate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims every entry and drops blanks.
func (r *FilterRequest) Normalize() {
	r.Substrings = compact(r.Substrings)
	r.Designers = compact(r.Designers)
	r.IgnoreSellers = compact(r.IgnoreSellers)
}

// Validate checks the request against its field constraints.
func (r *FilterRequest) Validate() error {
	return filterValidate.Struct(r)
}

// Empty reports whether the request would not issue any delete.
func (r *FilterRequest) Empty() bool {
	return len(r.Substrings) == 0 && len(r.Designers) == 0 && r.Threshold == nil
}

func compact(in []string) []string {
	out := in[:0:0]
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DeleteBySubstrings deletes scraped items whose title contains any of substrings.
func (s *ControlService) DeleteBySubstrings(ctx context.Context, st StatusStore, substrings []string) error {
	return s.runDelete(ctx, st, audit.ActionDeleteSubstring, map[string]any{"substrings": substrings},
		msgDeleteSubstringErr, func(ctx context.Context) (ports.Ack, error) {
			return s.backend.DeleteBySubstrings(ctx, substrings)
		})
}

// DeleteByDesigners deletes scraped items by the listed designers.
func (s *ControlService) DeleteByDesigners(ctx context.Context, st StatusStore, designers []string) error {
	return s.runDelete(ctx, st, audit.ActionDeleteDesigners, map[string]any{"designers": designers},
		msgDeleteDesignersErr, func(ctx context.Context) (ports.Ack, error) {
			return s.backend.DeleteByDesigners(ctx, designers)
		})
}

// DeleteLowCountDesigners deletes designers with fewer than threshold items.
func (s *ControlService) DeleteLowCountDesigners(ctx context.Context, st StatusStore, threshold int) error {
	return s.runDelete(ctx, st, audit.ActionDeleteLowCount, map[string]any{"threshold": threshold},
		msgDeleteLowCountErr, func(ctx context.Context) (ports.Ack, error) {
			return s.backend.DeleteLowCountDesigners(ctx, threshold)
		})
}

// RunFilter runs the selected deletes in a fixed order, bracketed by start and completion
// lines. A failed delete is logged and does not prevent the following ones.
func (s *ControlService) RunFilter(ctx context.Context, st StatusStore, req FilterRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid filter request: %w", err)
	}

	st.Append(job.Info(MsgFilterStarted))
	var errs []error
	if len(req.Substrings) > 0 {
		errs = append(errs, s.DeleteBySubstrings(ctx, st, req.Substrings))
	}
	if len(req.Designers) > 0 {
		errs = append(errs, s.DeleteByDesigners(ctx, st, req.Designers))
	}
	if req.Threshold != nil {
		errs = append(errs, s.DeleteLowCountDesigners(ctx, st, *req.Threshold))
	}
	st.Append(job.Info(MsgFilterCompleted))
	return errors.Join(errs...)
}

func (s *ControlService) runDelete(
	ctx context.Context,
	st StatusStore,
	action audit.Action,
	params map[string]any,
	failurePrefix string,
	call func(context.Context) (ports.Ack, error),
) error {
	began := time.Now()
	ack, err := call(ctx)
	s.observe(ctx, st.Kind(), action, params, began, ack.Message, err)
	if err != nil {
		st.Append(job.Error(failurePrefix + err.Error()))
		return err
	}
	st.Append(job.Info(ack.Message))
	return nil
}

// observe emits the control metric, logs the call and writes the audit entry.
// Audit failures are logged only.
func (s *ControlService) observe(
	ctx context.Context,
	kind job.Kind,
	action audit.Action,
	params any,
	began time.Time,
	message string,
	callErr error,
) {
	result := metrics.ResultSuccess
	outcome := audit.OutcomeSuccess
	if callErr != nil {
		result = metrics.ResultError
		outcome = audit.OutcomeFailure
		message = callErr.Error()
	}
	metrics.EmitControl(s.metrics, metrics.ControlMetric{
		Kind:     kind.String(),
		Action:   string(action),
		Result:   result,
		Duration: time.Since(began),
		Err:      callErr,
	})

	if callErr != nil {
		s.logger.ErrorContext(ctx, "control call failed", "kind", kind, "action", action, "error", callErr)
	} else {
		s.logger.InfoContext(ctx, "control call succeeded", "kind", kind, "action", action)
	}

	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		ID:         uuid.NewString(),
		Actor:      audit.ActorFrom(ctx),
		Kind:       kind.String(),
		Action:     action,
		Outcome:    outcome,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}
	if params != nil {
		if raw, err := json.Marshal(params); err == nil {
			entry.Params = raw
		}
	}
	if err := s.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.WarnContext(ctx, "audit record failed", "action", action, "error", err)
	}
}
