package checkpoint

import (
	"strings"

	"github.com/target/grailed-admin/internal/domain/job"
)

// Marker phrases announcing a checkpoint inside a log message. Matching is case sensitive.
const (
	MarkerScraping       = "Checkpoint updated:"
	MarkerImageEmbedding = "image embedding checkpoint updated:"
	MarkerTextEmbedding  = "text embedding checkpoint updated:"
)

var markers = map[job.Kind]string{
	job.KindScraping:       MarkerScraping,
	job.KindImageEmbedding: MarkerImageEmbedding,
	job.KindTextEmbedding:  MarkerTextEmbedding,
}

// Marker returns the checkpoint marker for kind.
func Marker(kind job.Kind) (string, bool) {
	m, ok := markers[kind]
	return m, ok
}

// Match reports whether message announces a checkpoint for kind and returns the payload that
// follows the marker, trimmed of surrounding whitespace.
func Match(kind job.Kind, message string) (string, bool) {
	marker, ok := markers[kind]
	if !ok {
		return "", false
	}
	_, payload, found := strings.Cut(message, marker)
	if !found {
		return "", false
	}
	if next := strings.Index(payload, marker); next >= 0 {
		payload = payload[:next]
	}
	return strings.TrimSpace(payload), true
}
