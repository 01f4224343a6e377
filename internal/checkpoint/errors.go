package checkpoint

import (
	"errors"
	"fmt"

	"github.com/target/grailed-admin/internal/domain/job"
)

// ErrMalformedCheckpoint is the sentinel wrapped by every ParseError.
var ErrMalformedCheckpoint = errors.New("malformed checkpoint")

// ParseError describes why a checkpoint payload could not be converted into a record.
type ParseError struct {
	Kind   job.Kind
	Field  string
	Reason string
	Input  string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s checkpoint: field %q: %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("parse %s checkpoint: %s", e.Kind, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformedCheckpoint }

// IsParseError reports whether err came from checkpoint parsing.
func IsParseError(err error) bool {
	return errors.Is(err, ErrMalformedCheckpoint)
}
