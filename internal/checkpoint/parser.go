// Package checkpoint turns checkpoint announcements found in job log messages into typed records.
package checkpoint

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/target/grailed-admin/internal/domain/job"
)

// Scraping checkpoint field names as emitted by the backend.
const (
	FieldDesignerSlug        = "designer_slug"
	FieldLastScrollCount     = "last_scroll_count"
	FieldTotalItemsScraped   = "total_items_scraped"
	FieldTotalItemsProcessed = "total_items_processed"
	FieldTimestamp           = "timestamp"
)

// Parser converts checkpoint payloads into records. The zero value parses the textual dictionary
// format only; use NewParser to also accept JSON payloads.
type Parser struct {
	json *JSONParser
}

// NewParser builds a Parser that accepts both the textual dictionary format and JSON objects.
func NewParser(jp *JSONParser) *Parser {
	return &Parser{json: jp}
}

// Parse converts raw, the text following a checkpoint marker, into a checkpoint for kind.
// Every failure is a *ParseError.
func (p *Parser) Parse(kind job.Kind, raw string) (job.Checkpoint, error) {
	raw = strings.TrimSpace(raw)
	if p != nil && p.json != nil && json.Valid([]byte(raw)) {
		return p.json.Parse(kind, raw)
	}

	fields, err := splitDictLiteral(raw)
	if err != nil {
		return job.Checkpoint{}, &ParseError{Kind: kind, Reason: err.Error(), Input: raw}
	}
	return fromFields(kind, raw, textFields(fields))
}

// Parse parses raw with the textual dictionary format only.
func Parse(kind job.Kind, raw string) (job.Checkpoint, error) {
	var p *Parser
	return p.Parse(kind, raw)
}

// fieldSource yields raw field values by name.
type fieldSource interface {
	lookup(name string) (string, bool)
}

type textFields map[string]string

func (f textFields) lookup(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

func fromFields(kind job.Kind, raw string, src fieldSource) (job.Checkpoint, error) {
	r := reader{kind: kind, raw: raw, src: src}

	switch kind {
	case job.KindScraping:
		cp := &job.ScrapingCheckpoint{
			DesignerSlug:      stripQuotes(r.text(FieldDesignerSlug)),
			LastScrollCount:   r.integer(FieldLastScrollCount),
			TotalItemsScraped: r.integer(FieldTotalItemsScraped),
			Timestamp:         r.text(FieldTimestamp),
		}
		if r.err != nil {
			return job.Checkpoint{}, r.err
		}
		return job.Checkpoint{Kind: kind, Scraping: cp}, nil
	case job.KindImageEmbedding, job.KindTextEmbedding:
		cp := &job.EmbeddingCheckpoint{
			TotalItemsProcessed: r.integer(FieldTotalItemsProcessed),
			Timestamp:           r.text(FieldTimestamp),
		}
		if r.err != nil {
			return job.Checkpoint{}, r.err
		}
		return job.Checkpoint{Kind: kind, Embedding: cp}, nil
	default:
		return job.Checkpoint{}, &ParseError{Kind: kind, Reason: "unknown job kind", Input: raw}
	}
}

// reader records the first failure and turns later reads into no-ops.
type reader struct {
	kind job.Kind
	raw  string
	src  fieldSource
	err  *ParseError
}

func (r *reader) text(name string) string {
	if r.err != nil {
		return ""
	}
	v, ok := r.src.lookup(name)
	if !ok {
		r.err = &ParseError{Kind: r.kind, Field: name, Reason: "missing", Input: r.raw}
		return ""
	}
	return strings.Trim(strings.TrimSpace(v), `'"`)
}

func (r *reader) integer(name string) int {
	v := r.text(name)
	if r.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = &ParseError{Kind: r.kind, Field: name, Reason: "not a base-10 integer: " + strconv.Quote(v), Input: r.raw}
		return 0
	}
	return n
}
