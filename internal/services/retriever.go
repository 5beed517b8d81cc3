package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hireloop/resume-screener/internal/models"
)

type Retriever interface {
	// Retrieve queries the store once per JD chunk, restricted to the given
	// candidate's chunks, and returns the hits keyed by JD chunk id. An
	// empty store is not an error here: the candidate simply gets an empty
	// result list and proceeds with empty context.
	Retrieve(ctx context.Context, jdChunks []Chunk, candidateDocumentID uuid.UUID, topK int) (map[uuid.UUID][]RetrievalResult, error)
}

type retriever struct {
	embedder Embedder
	store    EmbeddingStore
}

func NewRetriever(embedder Embedder, store EmbeddingStore) Retriever {
	return &retriever{
		embedder: embedder,
		store:    store,
	}
}

// Retrieve implements Retriever.
func (r *retriever) Retrieve(ctx context.Context, jdChunks []Chunk, candidateDocumentID uuid.UUID, topK int) (map[uuid.UUID][]RetrievalResult, error) {
	if candidateDocumentID == uuid.Nil {
		return nil, fmt.Errorf("%w: candidate document id is required", ErrInvalidInput)
	}

	filter := ChunkFilter{
		Role:       models.RoleCV,
		DocumentID: candidateDocumentID,
	}

	retrieved := make(map[uuid.UUID][]RetrievalResult, len(jdChunks))

	for _, jdChunk := range jdChunks {
		vector := jdChunk.Vector
		if vector == nil {
			embedded, err := r.embedder.Embed(ctx, jdChunk.Text)
			if err != nil {
				return nil, fmt.Errorf("failed to embed query chunk %d: %w", jdChunk.Index, err)
			}
			vector = embedded
		}

		results, err := r.store.Query(ctx, vector, topK, filter)
		if err != nil {
			if errors.Is(err, ErrEmptyStore) {
				retrieved[jdChunk.ID] = nil
				continue
			}
			return nil, fmt.Errorf("failed to query store for chunk %d: %w", jdChunk.Index, err)
		}

		for i := range results {
			results[i].QueryChunkID = jdChunk.ID
		}
		retrieved[jdChunk.ID] = results
	}

	return retrieved, nil
}
