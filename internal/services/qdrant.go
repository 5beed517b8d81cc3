package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

type QdrantStore interface {
	EmbeddingStore
	InitCollection(ctx context.Context) error
}

type qdrantStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantStore(urlStr, apiKey, collectionName string, embeddingDim int) (QdrantStore, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     uint64(embeddingDim),
	}, nil
}

// InitCollection implements QdrantStore.
func (q *qdrantStore) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// Ingest implements EmbeddingStore. The point id is the chunk's stable id,
// so re-ingesting the same chunk overwrites instead of duplicating. The
// original ingestion timestamp survives the overwrite; otherwise a
// duplicate ingest would move the chunk to the back of score ties.
func (q *qdrantStore) Ingest(ctx context.Context, chunk Chunk) error {
	if chunk.ID == uuid.Nil {
		return fmt.Errorf("%w: chunk id is required", ErrInvalidInput)
	}

	ingestedAt := time.Now().UnixNano()
	existing, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewID(chunk.ID.String())},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return fmt.Errorf("failed to check existing point: %w", err)
	}
	if at, ok := existingIngestedAt(existing); ok {
		ingestedAt = at
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(chunk.ID.String()),
		Vectors: qdrant.NewVectors(chunk.Vector...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"doc_id":      chunk.DocumentID.String(),
			"role":        string(chunk.Role),
			"chunk_index": int64(chunk.Index),
			"text":        chunk.Text,
			"ingested_at": ingestedAt,
		}),
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// existingIngestedAt reads the stored ingestion timestamp out of a point
// lookup, if the point exists and carries one.
func existingIngestedAt(points []*qdrant.RetrievedPoint) (int64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	at, ok := points[0].Payload["ingested_at"]
	if !ok {
		return 0, false
	}
	val, ok := at.GetKind().(*qdrant.Value_IntegerValue)
	if !ok {
		return 0, false
	}
	return val.IntegerValue, true
}

// Query implements EmbeddingStore.
func (q *qdrantStore) Query(ctx context.Context, vector []float32, topK int, filter ChunkFilter) ([]RetrievalResult, error) {
	var conditions []*qdrant.Condition
	if filter.Role != "" {
		conditions = append(conditions, qdrant.NewMatch("role", string(filter.Role)))
	}
	if filter.DocumentID != uuid.Nil {
		conditions = append(conditions, qdrant.NewMatch("doc_id", filter.DocumentID.String()))
	}

	var qdrantFilter *qdrant.Filter
	if len(conditions) > 0 {
		qdrantFilter = &qdrant.Filter{Must: conditions}
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         qdrantFilter,
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(searchResult) == 0 {
		return nil, ErrEmptyStore
	}

	type hit struct {
		result     RetrievalResult
		ingestedAt int64
	}

	hits := make([]hit, 0, len(searchResult))
	for _, point := range searchResult {
		payload := point.Payload

		h := hit{
			result: RetrievalResult{
				Similarity: clampSimilarity(float64(point.Score)),
			},
		}

		if docID, ok := payload["doc_id"]; ok {
			if val, ok := docID.GetKind().(*qdrant.Value_StringValue); ok {
				if parsed, err := uuid.Parse(val.StringValue); err == nil {
					h.result.CandidateDocumentID = parsed
				}
			}
		}

		if text, ok := payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				h.result.MatchedText = val.StringValue
			}
		}

		if idx, ok := payload["chunk_index"]; ok {
			if val, ok := idx.GetKind().(*qdrant.Value_IntegerValue); ok {
				h.result.MatchedChunkIndex = int(val.IntegerValue)
			}
		}

		if at, ok := payload["ingested_at"]; ok {
			if val, ok := at.GetKind().(*qdrant.Value_IntegerValue); ok {
				h.ingestedAt = val.IntegerValue
			}
		}

		if pointID := point.Id.GetUuid(); pointID != "" {
			if parsed, err := uuid.Parse(pointID); err == nil {
				h.result.MatchedChunkID = parsed
			}
		}

		hits = append(hits, h)
	}

	// Qdrant orders by score; re-sort to break score ties by insertion
	// order so identical queries return identical orderings.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].result.Similarity != hits[j].result.Similarity {
			return hits[i].result.Similarity > hits[j].result.Similarity
		}
		return hits[i].ingestedAt < hits[j].ingestedAt
	})

	results := make([]RetrievalResult, len(hits))
	for i, h := range hits {
		results[i] = h.result
	}

	return results, nil
}

// DeleteDocument implements EmbeddingStore.
func (q *qdrantStore) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_id", documentID.String()),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})

	if err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}

	return nil
}
