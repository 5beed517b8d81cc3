package services

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"hireloop/resume-screener/internal/models"
)

// Chunk is the unit of embedding and retrieval. Chunk IDs are derived
// deterministically from (document id, index), so re-ingesting a document
// overwrites its existing points instead of duplicating them.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Role       models.DocumentRole
	Index      int
	Text       string
	Vector     []float32
}

// NewChunkID derives the stable chunk id for a document position.
func NewChunkID(documentID uuid.UUID, index int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(documentID.String()+":"+strconv.Itoa(index)))
}

// ChunkFilter narrows a query by metadata. Zero values mean "any".
type ChunkFilter struct {
	Role       models.DocumentRole
	DocumentID uuid.UUID
}

// RetrievalResult is one nearest-neighbor hit. Similarity is in [0,1];
// results are ordered descending, ties broken by insertion order with the
// earlier-ingested chunk first. QueryChunkID is filled in by the Retriever.
type RetrievalResult struct {
	QueryChunkID        uuid.UUID
	CandidateDocumentID uuid.UUID
	MatchedChunkID      uuid.UUID
	MatchedChunkIndex   int
	MatchedText         string
	Similarity          float64
}

// EmbeddingStore persists chunk vectors with metadata and serves
// nearest-neighbor queries. Implementations must keep concurrent ingestion
// of distinct chunks safe.
type EmbeddingStore interface {
	Ingest(ctx context.Context, chunk Chunk) error
	Query(ctx context.Context, vector []float32, topK int, filter ChunkFilter) ([]RetrievalResult, error)
	DeleteDocument(ctx context.Context, documentID uuid.UUID) error
}

// clampSimilarity maps a raw cosine score into the declared [0,1] range.
func clampSimilarity(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
