// Package job defines the domain vocabulary of the dashboard: the controllable job kinds,
// the log events their streams carry, and the status derived from those events.
package job

import (
	"errors"
	"fmt"
)

// Kind identifies one controllable backend job.
type Kind string

const (
	KindScraping       Kind = "scraping"
	KindImageEmbedding Kind = "image-embedding"
	KindTextEmbedding  Kind = "text-embedding"
)

// ErrUnknownKind is returned when a job kind string is not recognised.
var ErrUnknownKind = errors.New("unknown job kind")

// Kinds lists every job kind in display order.
func Kinds() []Kind {
	return []Kind{KindScraping, KindImageEmbedding, KindTextEmbedding}
}

// ParseKind validates s and returns the matching Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if k.Valid() {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindScraping, KindImageEmbedding, KindTextEmbedding:
		return true
	default:
		return false
	}
}

// IsEmbedding reports whether k is one of the embedding jobs.
func (k Kind) IsEmbedding() bool {
	return k == KindImageEmbedding || k == KindTextEmbedding
}

// Label returns a human readable name.
func (k Kind) Label() string {
	switch k {
	case KindScraping:
		return "Scraping"
	case KindImageEmbedding:
		return "Image embedding"
	case KindTextEmbedding:
		return "Text embedding"
	default:
		return string(k)
	}
}

func (k Kind) String() string { return string(k) }
