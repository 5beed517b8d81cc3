package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"hireloop/resume-screener/internal/config"
	"hireloop/resume-screener/internal/models"
	"hireloop/resume-screener/internal/services"
)

// Screens a directory of CV PDFs against one JD PDF without the API server
// or database, using the in-memory vector store.
//
//	go run ./scripts <jd.pdf> <cv-dir> "<job title>"
func main() {
	if len(os.Args) < 4 {
		log.Fatal("usage: screen_batch <jd.pdf> <cv-dir> <job title>")
	}
	jdPath, cvDir, jobTitle := os.Args[1], os.Args[2], os.Args[3]

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	gemini, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Screening.EmbeddingDim)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker(cfg.Screening.MaxChunkTokens / 5)
	store := services.NewInMemoryStore()
	retriever := services.NewRetriever(gemini, store)
	matcher := services.NewMatcher(
		gemini,
		cfg.Screening.ProviderCallsPerSecond,
		cfg.Screening.MaxConcurrentProviderCalls,
		cfg.Screening.RequestTimeout,
		cfg.Screening.ThrottleMaxAttempts,
	)

	ctx := context.Background()

	jdChunks, jdText, err := ingestPDF(ctx, pdfParser, chunker, gemini, store, jdPath, models.RoleJobDescription, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to ingest JD: %v", err)
	}
	log.Printf("📄 JD ingested: %d chunks\n", len(jdChunks))

	jdSummary, err := matcher.SummarizeJD(ctx, jdText)
	if err != nil {
		log.Fatalf("❌ Failed to summarize JD: %v", err)
	}

	cvPaths, err := filepath.Glob(filepath.Join(cvDir, "*.pdf"))
	if err != nil || len(cvPaths) == 0 {
		log.Fatalf("❌ No CV PDFs found in %s", cvDir)
	}

	type outcome struct {
		name     string
		decision services.ShortlistDecision
	}
	var outcomes []outcome

	for _, cvPath := range cvPaths {
		cvChunks, _, err := ingestPDF(ctx, pdfParser, chunker, gemini, store, cvPath, models.RoleCV, cfg)
		if err != nil {
			log.Printf("⚠️  Skipping %s: %v\n", cvPath, err)
			continue
		}
		cvDocID := uuid.New()
		if len(cvChunks) > 0 {
			cvDocID = cvChunks[0].DocumentID
		} else {
			log.Printf("⚠️  %s has no extractable text, assessing with empty context\n", cvPath)
		}
		retrieved, err := retriever.Retrieve(ctx, jdChunks, cvDocID, cfg.Screening.TopK)
		if err != nil {
			log.Printf("⚠️  Retrieval failed for %s: %v\n", cvPath, err)
			continue
		}

		assessment, err := matcher.Assess(ctx, jobTitle, jdSummary, cvDocID, retrieved)
		if err != nil {
			log.Printf("❌ Could not assess %s: %v\n", cvPath, err)
			continue
		}

		decision := services.Decide(assessment, cfg.Screening.ScoreThreshold)
		outcomes = append(outcomes, outcome{name: filepath.Base(cvPath), decision: decision})
		log.Printf("🎯 %s: score %.1f, shortlisted=%v\n", filepath.Base(cvPath), decision.FinalScore, decision.Shortlisted)
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].decision.FinalScore > outcomes[j].decision.FinalScore
	})

	fmt.Println("\n=== Shortlist ===")
	for _, o := range outcomes {
		marker := " "
		if o.decision.Shortlisted {
			marker = "✅"
		}
		fmt.Printf("%s %-40s %.1f\n", marker, o.name, o.decision.FinalScore)
	}
}

func ingestPDF(
	ctx context.Context,
	pdfParser services.PDFParserService,
	chunker services.TextChunker,
	embedder services.Embedder,
	store services.EmbeddingStore,
	path string,
	role models.DocumentRole,
	cfg *config.Config,
) ([]services.Chunk, string, error) {
	raw, err := pdfParser.ExtractText(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to extract text: %w", err)
	}
	cleaned := services.CleanText(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, "", nil
	}

	textChunks, err := chunker.ChunkText(cleaned, cfg.Screening.MaxChunkTokens, cfg.Screening.ChunkOverlap)
	if err != nil {
		return nil, "", fmt.Errorf("failed to chunk: %w", err)
	}

	docID := uuid.New()
	chunks := make([]services.Chunk, 0, len(textChunks))
	for _, tc := range textChunks {
		vector, err := embedder.Embed(ctx, tc.Text)
		if err != nil {
			return nil, "", fmt.Errorf("failed to embed chunk %d: %w", tc.Index, err)
		}

		chunk := services.Chunk{
			ID:         services.NewChunkID(docID, tc.Index),
			DocumentID: docID,
			Role:       role,
			Index:      tc.Index,
			Text:       tc.Text,
			Vector:     vector,
		}
		if err := store.Ingest(ctx, chunk); err != nil {
			return nil, "", fmt.Errorf("failed to ingest chunk %d: %w", tc.Index, err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, cleaned, nil
}
