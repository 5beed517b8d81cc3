package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireloop/resume-screener/internal/models"
)

func ingestTestChunk(t *testing.T, store *InMemoryStore, docID uuid.UUID, role models.DocumentRole, index int, vector []float32) Chunk {
	t.Helper()
	chunk := Chunk{
		ID:         NewChunkID(docID, index),
		DocumentID: docID,
		Role:       role,
		Index:      index,
		Text:       fmt.Sprintf("chunk %s-%d", docID.String()[:8], index),
		Vector:     vector,
	}
	require.NoError(t, store.Ingest(context.Background(), chunk))
	return chunk
}

func TestInMemoryStore_QueryOrdersBySimilarity(t *testing.T) {
	store := NewInMemoryStore()
	docID := uuid.New()

	// Orthogonal-ish vectors with known similarity to the query.
	far := ingestTestChunk(t, store, docID, models.RoleCV, 0, []float32{0, 1, 0})
	near := ingestTestChunk(t, store, docID, models.RoleCV, 1, []float32{1, 0.1, 0})
	exact := ingestTestChunk(t, store, docID, models.RoleCV, 2, []float32{1, 0, 0})

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 10, ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, exact.ID, results[0].MatchedChunkID)
	assert.Equal(t, near.ID, results[1].MatchedChunkID)
	assert.Equal(t, far.ID, results[2].MatchedChunkID)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Similarity, 0.0)
		assert.LessOrEqual(t, r.Similarity, 1.0)
	}
}

func TestInMemoryStore_TiesBrokenByInsertionOrder(t *testing.T) {
	store := NewInMemoryStore()
	docA := uuid.New()
	docB := uuid.New()

	// Identical vectors: similarity ties across the board.
	first := ingestTestChunk(t, store, docA, models.RoleCV, 0, []float32{1, 1, 0})
	second := ingestTestChunk(t, store, docB, models.RoleCV, 0, []float32{1, 1, 0})
	third := ingestTestChunk(t, store, docA, models.RoleCV, 1, []float32{1, 1, 0})

	results, err := store.Query(context.Background(), []float32{1, 1, 0}, 10, ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, first.ID, results[0].MatchedChunkID)
	assert.Equal(t, second.ID, results[1].MatchedChunkID)
	assert.Equal(t, third.ID, results[2].MatchedChunkID)
}

func TestInMemoryStore_IngestIsIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	docID := uuid.New()

	chunk := ingestTestChunk(t, store, docID, models.RoleCV, 0, []float32{1, 0, 0})
	ingestTestChunk(t, store, docID, models.RoleCV, 1, []float32{1, 0, 0})

	// Re-ingest the first chunk several times: same id, no duplicates, and
	// tie-breaking still treats it as the earlier insertion.
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Ingest(context.Background(), chunk))
	}

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 10, ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, chunk.ID, results[0].MatchedChunkID)
}

func TestInMemoryStore_FiltersByRoleAndDocument(t *testing.T) {
	store := NewInMemoryStore()
	jdDoc := uuid.New()
	cvDocA := uuid.New()
	cvDocB := uuid.New()

	ingestTestChunk(t, store, jdDoc, models.RoleJobDescription, 0, []float32{1, 0, 0})
	wantA := ingestTestChunk(t, store, cvDocA, models.RoleCV, 0, []float32{1, 0, 0})
	ingestTestChunk(t, store, cvDocB, models.RoleCV, 0, []float32{1, 0, 0})

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 10, ChunkFilter{
		Role:       models.RoleCV,
		DocumentID: cvDocA,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, wantA.ID, results[0].MatchedChunkID)
	assert.Equal(t, cvDocA, results[0].CandidateDocumentID)
}

func TestInMemoryStore_EmptyStoreError(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Query(context.Background(), []float32{1, 0, 0}, 5, ChunkFilter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyStore))

	// A populated store with a filter that matches nothing behaves the same.
	ingestTestChunk(t, store, uuid.New(), models.RoleJobDescription, 0, []float32{1, 0, 0})
	_, err = store.Query(context.Background(), []float32{1, 0, 0}, 5, ChunkFilter{Role: models.RoleCV})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyStore))
}

func TestInMemoryStore_TopKCapsResults(t *testing.T) {
	store := NewInMemoryStore()
	docID := uuid.New()
	for i := 0; i < 5; i++ {
		ingestTestChunk(t, store, docID, models.RoleCV, i, []float32{1, float32(i), 0})
	}

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 2, ChunkFilter{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestInMemoryStore_ConcurrentIngest(t *testing.T) {
	store := NewInMemoryStore()
	docID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			chunk := Chunk{
				ID:         NewChunkID(docID, index),
				DocumentID: docID,
				Role:       models.RoleCV,
				Index:      index,
				Text:       "concurrent",
				Vector:     []float32{1, float32(index), 0},
			}
			assert.NoError(t, store.Ingest(context.Background(), chunk))
		}(i)
	}
	wg.Wait()

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 100, ChunkFilter{})
	require.NoError(t, err)
	assert.Len(t, results, 50)
}

func TestInMemoryStore_DeleteDocument(t *testing.T) {
	store := NewInMemoryStore()
	keepDoc := uuid.New()
	dropDoc := uuid.New()

	kept := ingestTestChunk(t, store, keepDoc, models.RoleCV, 0, []float32{1, 0, 0})
	ingestTestChunk(t, store, dropDoc, models.RoleCV, 0, []float32{1, 0, 0})
	ingestTestChunk(t, store, dropDoc, models.RoleCV, 1, []float32{0, 1, 0})

	require.NoError(t, store.DeleteDocument(context.Background(), dropDoc))

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 10, ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, kept.ID, results[0].MatchedChunkID)
}
