package httpx

import (
	"github.com/target/grailed-admin/internal/domain/audit"
	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/store"
)

// JobView is the model of one job panel.
type JobView struct {
	Kind    job.Kind
	Label   string
	Active  bool
	Summary job.Summary
	Logs    []job.LogEvent
	// Operator is set when the viewer may issue control actions.
	Operator bool
}

func newJobView(snap store.Snapshot, operator bool) JobView {
	return JobView{
		Kind:     snap.Status.Kind,
		Label:    snap.Status.Kind.Label(),
		Active:   snap.Status.Active,
		Summary:  snap.Status.Summary,
		Logs:     snap.Logs,
		Operator: operator,
	}
}

// IsEmbedding lets templates choose the summary layout.
func (v JobView) IsEmbedding() bool { return v.Kind.IsEmbedding() }

// jobsPage is the model of the scraping and embedding pages.
type jobsPage struct {
	Jobs []JobView
}

// filterPage is the model of the filter page.
type filterPage struct {
	Form      filterForm
	Errors    map[string]string
	Submitted bool
	Console   JobView
	Admin     bool
}

// filterForm echoes the submitted form back into the page.
type filterForm struct {
	Substrings    string
	Designers     string
	IgnoreSellers string
	Threshold     string
	RepeatedTitle bool
}

// auditPage is the model of the audit trail page.
type auditPage struct {
	Enabled bool
	Entries []audit.Entry
	Kind    string
	Action  string
	Error   string
}

// errorPage is the model of the error page.
type errorPage struct {
	Status  int
	Message string
}

// statusMessage is the JSON shape of the snapshot and WebSocket relay.
type statusMessage struct {
	Type    string         `json:"type"`
	Kind    job.Kind       `json:"kind"`
	Active  bool           `json:"active"`
	Summary job.Summary    `json:"summary"`
	Logs    []job.LogEvent `json:"logs,omitempty"`
	Reset   bool           `json:"reset,omitempty"`
	Version uint64         `json:"version"`
}

func snapshotMessage(snap store.Snapshot) statusMessage {
	return statusMessage{
		Type:    "snapshot",
		Kind:    snap.Status.Kind,
		Active:  snap.Status.Active,
		Summary: snap.Status.Summary,
		Logs:    snap.Logs,
		Version: snap.Version,
	}
}

func pageForKind(k job.Kind) string {
	if k.IsEmbedding() {
		return "/" + PageEmbedding
	}
	return "/" + PageScraping
}
