package checkpoint

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/target/grailed-admin/internal/domain/job"
)

// JSONParser reads checkpoint fields from a JSON object. Each field is located with a JMESPath
// expression so that payloads nesting progress under another key can still be read.
type JSONParser struct {
	paths map[string]string
}

// DefaultFieldPaths maps every checkpoint field to the top-level key of the same name.
func DefaultFieldPaths() map[string]string {
	return map[string]string{
		FieldDesignerSlug:        FieldDesignerSlug,
		FieldLastScrollCount:     FieldLastScrollCount,
		FieldTotalItemsScraped:   FieldTotalItemsScraped,
		FieldTotalItemsProcessed: FieldTotalItemsProcessed,
		FieldTimestamp:           FieldTimestamp,
	}
}

// NewJSONParser validates the override expressions and returns a parser. Fields without an
// override use DefaultFieldPaths.
func NewJSONParser(overrides map[string]string) (*JSONParser, error) {
	paths := DefaultFieldPaths()
	for field, expr := range overrides {
		if expr == "" {
			continue
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("compile path for %s: %w", field, err)
		}
		paths[field] = expr
	}
	return &JSONParser{paths: paths}, nil
}

// Parse decodes raw as a JSON object and extracts the fields required for kind.
func (p *JSONParser) Parse(kind job.Kind, raw string) (job.Checkpoint, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return job.Checkpoint{}, &ParseError{Kind: kind, Reason: "invalid JSON: " + err.Error(), Input: raw}
	}
	if _, ok := doc.(map[string]any); !ok {
		return job.Checkpoint{}, &ParseError{Kind: kind, Reason: "JSON payload is not an object", Input: raw}
	}
	return fromFields(kind, raw, jsonFields{doc: doc, paths: p.paths})
}

type jsonFields struct {
	doc   any
	paths map[string]string
}

func (f jsonFields) lookup(name string) (string, bool) {
	expr, ok := f.paths[name]
	if !ok {
		return "", false
	}
	v, err := jmespath.Search(expr, f.doc)
	if err != nil || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
