package job

import (
	"strconv"
	"strings"
)

// Placeholder is rendered for summary fields with no value yet.
const Placeholder = "-"

// Summary holds the display fields derived from checkpoints and status calls.
// Scraping uses the first group of fields, embedding jobs the second.
type Summary struct {
	TotalItems         string
	LastBrandScraped   string
	LastScrollCount    string
	LastScrapeTime     string
	RemainingDesigners string
	StorageUsed        string

	IndexTotalRecords string
	LastEmbedTime     string
	IndexSize         string
}

// DefaultSummary returns the initial summary shown before any data arrives.
func DefaultSummary(k Kind) Summary {
	if k.IsEmbedding() {
		return Summary{
			IndexTotalRecords: Placeholder,
			LastEmbedTime:     Placeholder,
			IndexSize:         Placeholder,
		}
	}
	return Summary{
		TotalItems:         "0",
		LastBrandScraped:   Placeholder,
		LastScrollCount:    "0",
		LastScrapeTime:     Placeholder,
		RemainingDesigners: Placeholder,
		StorageUsed:        Placeholder,
	}
}

// Apply returns the summary that replaces s once cp arrives. Checkpoint fields overwrite the
// previous values wholesale; fields a checkpoint does not carry keep their current value.
func (s Summary) Apply(cp Checkpoint) Summary {
	next := s
	switch {
	case cp.Scraping != nil:
		c := cp.Scraping
		next.LastBrandScraped = displayOrPlaceholder(c.DesignerSlug)
		next.LastScrollCount = strconv.Itoa(c.LastScrollCount)
		next.TotalItems = strconv.Itoa(c.TotalItemsScraped)
		next.LastScrapeTime = displayOrPlaceholder(c.Timestamp)
	case cp.Embedding != nil:
		c := cp.Embedding
		next.IndexTotalRecords = strconv.Itoa(c.TotalItemsProcessed)
		next.LastEmbedTime = displayOrPlaceholder(c.Timestamp)
	}
	return next
}

// StatusReport carries the optional summary fields returned by a status call.
// Empty fields leave the summary unchanged.
type StatusReport struct {
	Message            string
	TotalItems         string
	LastBrandScraped   string
	LastScrollCount    string
	LastScrapeTime     string
	RemainingDesigners string
	StorageUsed        string
	IndexTotalRecords  string
	LastEmbedTime      string
	IndexSize          string
}

// Merge overlays the non-empty fields of r onto s.
func (s Summary) Merge(r StatusReport) Summary {
	next := s
	overlay(&next.TotalItems, r.TotalItems)
	overlay(&next.LastBrandScraped, r.LastBrandScraped)
	overlay(&next.LastScrollCount, r.LastScrollCount)
	overlay(&next.LastScrapeTime, r.LastScrapeTime)
	overlay(&next.RemainingDesigners, r.RemainingDesigners)
	overlay(&next.StorageUsed, r.StorageUsed)
	overlay(&next.IndexTotalRecords, r.IndexTotalRecords)
	overlay(&next.LastEmbedTime, r.LastEmbedTime)
	overlay(&next.IndexSize, r.IndexSize)
	return next
}

func overlay(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = displayOrPlaceholder(v)
	}
}

func displayOrPlaceholder(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == NoneLiteral {
		return Placeholder
	}
	return v
}

// Status is the dashboard's belief about one job.
type Status struct {
	Kind    Kind
	Active  bool
	Summary Summary
}

// NewStatus returns the initial, stopped status for k.
func NewStatus(k Kind) Status {
	return Status{Kind: k, Summary: DefaultSummary(k)}
}
