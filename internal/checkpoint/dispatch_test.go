package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/target/grailed-admin/internal/domain/job"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		kind    job.Kind
		message string
		want    string
		ok      bool
	}{
		{
			name:    "scraping marker",
			kind:    job.KindScraping,
			message: "Checkpoint updated: " + acmeCheckpoint,
			want:    acmeCheckpoint,
			ok:      true,
		},
		{
			name:    "image marker",
			kind:    job.KindImageEmbedding,
			message: "image embedding checkpoint updated: {'total_items_processed': 1, 'timestamp': 'x'}",
			want:    "{'total_items_processed': 1, 'timestamp': 'x'}",
			ok:      true,
		},
		{
			name:    "text marker does not match image job",
			kind:    job.KindImageEmbedding,
			message: "text embedding checkpoint updated: {}",
		},
		{
			name:    "embedding marker is not a scraping checkpoint",
			kind:    job.KindScraping,
			message: "image embedding checkpoint updated: {}",
		},
		{
			name:    "plain message",
			kind:    job.KindTextEmbedding,
			message: "Processing batch 4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.kind, tt.message)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
