package service

import "github.com/target/grailed-admin/internal/domain/job"

// Fixed console diagnostics. The wording is what operators already search for, including the
// inconsistent trailing periods between the scraping and embedding pages.
type diagnostics struct {
	parse  string
	start  string
	stop   string
	status string
}

var diagnosticsByKind = map[job.Kind]diagnostics{
	job.KindScraping: {
		parse:  "Failed to parse log message",
		start:  "Failed to start scraping",
		stop:   "Failed to stop scraping",
		status: "Failed to fetch scraping status",
	},
	job.KindImageEmbedding: {
		parse:  "Failed to parse log message.",
		start:  "Failed to start embedding.",
		stop:   "Failed to stop embedding.",
		status: "Failed to fetch image embedding status.",
	},
	job.KindTextEmbedding: {
		parse:  "Failed to parse log message.",
		start:  "Failed to start embedding.",
		stop:   "Failed to stop embedding.",
		status: "Failed to fetch text embedding status.",
	},
}

func diagnosticsFor(kind job.Kind) diagnostics {
	if d, ok := diagnosticsByKind[kind]; ok {
		return d
	}
	return diagnosticsByKind[job.KindScraping]
}

// Filter flow messages.
const (
	MsgFilterStarted      = "Starting filter process..."
	MsgFilterCompleted    = "Filter process completed"
	msgDeleteSubstringErr = "Error deleting items by substring: "
	msgDeleteDesignersErr = "Error deleting items by designers: "
	msgDeleteLowCountErr  = "Error deleting low count designers: "
)

// ParseDiagnostic returns the console message logged when a stream payload cannot be decoded.
func ParseDiagnostic(kind job.Kind) string { return diagnosticsFor(kind).parse }
