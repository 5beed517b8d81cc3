package services

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestExistingIngestedAt(t *testing.T) {
	point := func(payload map[string]interface{}) *qdrant.RetrievedPoint {
		return &qdrant.RetrievedPoint{Payload: qdrant.NewValueMap(payload)}
	}

	tests := []struct {
		name   string
		points []*qdrant.RetrievedPoint
		want   int64
		ok     bool
	}{
		{
			name: "no point found",
		},
		{
			// First ingest keeps its original timestamp through overwrites.
			name: "existing point with timestamp",
			points: []*qdrant.RetrievedPoint{point(map[string]interface{}{
				"ingested_at": int64(1234567890),
			})},
			want: 1234567890,
			ok:   true,
		},
		{
			name:   "existing point without timestamp",
			points: []*qdrant.RetrievedPoint{point(map[string]interface{}{"text": "chunk"})},
		},
		{
			name: "timestamp of the wrong kind",
			points: []*qdrant.RetrievedPoint{point(map[string]interface{}{
				"ingested_at": "not a number",
			})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := existingIngestedAt(tt.points)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
