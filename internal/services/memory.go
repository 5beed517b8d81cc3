package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore is an EmbeddingStore backed by a map, used in tests and
// single-process batch runs. Writes are serialized by a mutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*memoryEntry
	nextSeq int64
}

type memoryEntry struct {
	chunk Chunk
	seq   int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[uuid.UUID]*memoryEntry),
	}
}

// Ingest implements EmbeddingStore. Re-ingesting an existing chunk id
// overwrites the vector and text but keeps the original insertion sequence,
// so tie-breaking is unaffected by duplication.
func (s *InMemoryStore) Ingest(ctx context.Context, chunk Chunk) error {
	if chunk.ID == uuid.Nil {
		return fmt.Errorf("%w: chunk id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[chunk.ID]; ok {
		existing.chunk = chunk
		return nil
	}

	s.entries[chunk.ID] = &memoryEntry{chunk: chunk, seq: s.nextSeq}
	s.nextSeq++
	return nil
}

// Query implements EmbeddingStore. Results are ordered by similarity
// descending, ties broken by insertion order (earlier-ingested wins).
func (s *InMemoryStore) Query(ctx context.Context, vector []float32, topK int, filter ChunkFilter) ([]RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		entry *memoryEntry
		score float64
	}

	var matches []scored
	for _, entry := range s.entries {
		if filter.Role != "" && entry.chunk.Role != filter.Role {
			continue
		}
		if filter.DocumentID != uuid.Nil && entry.chunk.DocumentID != filter.DocumentID {
			continue
		}
		matches = append(matches, scored{
			entry: entry,
			score: clampSimilarity(cosineSimilarity(vector, entry.chunk.Vector)),
		})
	}

	if len(matches) == 0 {
		return nil, ErrEmptyStore
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].entry.seq < matches[j].entry.seq
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]RetrievalResult, len(matches))
	for i, m := range matches {
		results[i] = RetrievalResult{
			CandidateDocumentID: m.entry.chunk.DocumentID,
			MatchedChunkID:      m.entry.chunk.ID,
			MatchedChunkIndex:   m.entry.chunk.Index,
			MatchedText:         m.entry.chunk.Text,
			Similarity:          m.score,
		}
	}

	return results, nil
}

// DeleteDocument implements EmbeddingStore.
func (s *InMemoryStore) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		if entry.chunk.DocumentID == documentID {
			delete(s.entries, id)
		}
	}
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
