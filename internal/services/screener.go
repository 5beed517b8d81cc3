package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"hireloop/resume-screener/internal/config"
	"hireloop/resume-screener/internal/models"
	"hireloop/resume-screener/internal/repositories"
)

// ScreenerService drives one candidate through the screening state
// machine: queued -> ingested -> retrieved -> assessed -> decided, failing
// into the failed stage from anywhere. Stages never skip; a candidate with
// zero retrieval hits is still assessed with empty context.
type ScreenerService interface {
	ScreenCandidate(ctx context.Context, screeningID uuid.UUID) error
}

type screenerService struct {
	screeningRepo repositories.ScreeningRepository
	docRepo       repositories.DocumentRepository
	chunker       TextChunker
	embedder      Embedder
	store         EmbeddingStore
	retriever     Retriever
	matcher       Matcher
	cfg           config.ScreeningConfig

	// JD summaries are per job description, not per candidate; memoize so
	// N candidates cost one summary call.
	jdSummaries sync.Map
}

func NewScreenerService(
	screeningRepo repositories.ScreeningRepository,
	docRepo repositories.DocumentRepository,
	chunker TextChunker,
	embedder Embedder,
	store EmbeddingStore,
	retriever Retriever,
	matcher Matcher,
	cfg config.ScreeningConfig,
) ScreenerService {
	return &screenerService{
		screeningRepo: screeningRepo,
		docRepo:       docRepo,
		chunker:       chunker,
		embedder:      embedder,
		store:         store,
		retriever:     retriever,
		matcher:       matcher,
		cfg:           cfg,
	}
}

// ScreenCandidate implements ScreenerService.
func (s *screenerService) ScreenCandidate(ctx context.Context, screeningID uuid.UUID) error {
	log.Printf("🔄 Starting screening %s\n", screeningID)

	screening, err := s.screeningRepo.FindByID(screeningID)
	if err != nil {
		return fmt.Errorf("failed to get screening: %w", err)
	}

	jdDoc, err := s.docRepo.FindByID(screening.JDDocumentID)
	if err != nil {
		return s.fail(screeningID, fmt.Errorf("%w: JD document not found: %v", ErrInvalidInput, err))
	}

	cvDoc, err := s.docRepo.FindByID(screening.CVDocumentID)
	if err != nil {
		return s.fail(screeningID, fmt.Errorf("%w: CV document not found: %v", ErrInvalidInput, err))
	}

	// Stage 1: chunk and ingest both documents.
	jdChunks, err := s.ingestDocument(ctx, jdDoc)
	if err != nil {
		return s.fail(screeningID, err)
	}
	if len(jdChunks) == 0 {
		return s.fail(screeningID, fmt.Errorf("%w: job description has no extractable text", ErrInvalidInput))
	}

	cvChunks, err := s.ingestDocument(ctx, cvDoc)
	if err != nil {
		return s.fail(screeningID, err)
	}
	log.Printf("📄 Screening %s: %d JD chunks, %d CV chunks ingested\n", screeningID, len(jdChunks), len(cvChunks))

	if err := s.transition(ctx, screeningID, models.StageIngested); err != nil {
		return err
	}

	// Stage 2: retrieve the candidate's nearest chunks per JD chunk.
	retrieved, err := s.retriever.Retrieve(ctx, jdChunks, cvDoc.ID, s.cfg.TopK)
	if err != nil {
		return s.fail(screeningID, err)
	}

	if err := s.transition(ctx, screeningID, models.StageRetrieved); err != nil {
		return err
	}

	// Stage 3: one structured completion call. Zero retrieval hits still
	// go through here with empty context instead of dropping the candidate.
	jdSummary, err := s.summarizeJD(ctx, jdDoc)
	if err != nil {
		return s.fail(screeningID, err)
	}

	assessment, err := s.matcher.Assess(ctx, screening.JobTitle, jdSummary, cvDoc.ID, retrieved)
	if err != nil {
		return s.fail(screeningID, err)
	}

	if err := s.transition(ctx, screeningID, models.StageAssessed); err != nil {
		return err
	}

	// Stage 4: threshold decision.
	decision := Decide(assessment, s.cfg.ScoreThreshold)

	if err := s.screeningRepo.UpdateDecision(screeningID, &repositories.ScreeningDecisionData{
		FinalScore:     decision.FinalScore,
		Shortlisted:    decision.Shortlisted,
		Recommendation: assessment.Recommendation,
		Strengths:      marshalList(assessment.Strengths),
		Weaknesses:     marshalList(assessment.Weaknesses),
		RawModelOutput: assessment.RawModelOutput,
	}); err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}

	log.Printf("✅ Screening %s decided: score %.1f, shortlisted=%v\n", screeningID, decision.FinalScore, decision.Shortlisted)
	return nil
}

// ingestDocument chunks and embeds one document into the store. A CV with
// no extractable text yields zero chunks without failing; the pipeline
// continues with an empty retrieval context.
func (s *screenerService) ingestDocument(ctx context.Context, doc *models.Document) ([]Chunk, error) {
	textChunks, err := s.chunker.ChunkText(doc.CleanedText, s.cfg.MaxChunkTokens, s.cfg.ChunkOverlap)
	if err != nil {
		if doc.Role == models.RoleCV && errors.Is(err, ErrInvalidInput) && strings.TrimSpace(doc.CleanedText) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to chunk document %s: %w", doc.ID, err)
	}

	chunks := make([]Chunk, 0, len(textChunks))
	for _, tc := range textChunks {
		embedCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		vector, err := s.embedder.Embed(embedCtx, tc.Text)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d of document %s: %w", tc.Index, doc.ID, err)
		}

		chunk := Chunk{
			ID:         NewChunkID(doc.ID, tc.Index),
			DocumentID: doc.ID,
			Role:       doc.Role,
			Index:      tc.Index,
			Text:       tc.Text,
			Vector:     vector,
		}

		if err := s.store.Ingest(ctx, chunk); err != nil {
			return nil, fmt.Errorf("failed to ingest chunk %d of document %s: %w", tc.Index, doc.ID, err)
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

func (s *screenerService) summarizeJD(ctx context.Context, jdDoc *models.Document) (string, error) {
	if cached, ok := s.jdSummaries.Load(jdDoc.ID); ok {
		return cached.(string), nil
	}

	summary, err := s.matcher.SummarizeJD(ctx, jdDoc.CleanedText)
	if err != nil {
		return "", err
	}

	s.jdSummaries.Store(jdDoc.ID, summary)
	return summary, nil
}

// transition records a stage and honors cancellation between stages: a
// cancelled run fails with reason "cancelled" instead of proceeding.
func (s *screenerService) transition(ctx context.Context, screeningID uuid.UUID, stage models.ScreeningStage) error {
	if err := ctx.Err(); err != nil {
		return s.fail(screeningID, err)
	}

	if err := s.screeningRepo.UpdateStage(screeningID, stage); err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}

	return nil
}

// fail moves the screening into the terminal failed stage carrying the
// error kind and message. Errors are never silently dropped.
func (s *screenerService) fail(screeningID uuid.UUID, cause error) error {
	reason := failureReason(cause)
	if err := s.screeningRepo.UpdateFailure(screeningID, reason); err != nil {
		log.Printf("❌ Failed to record failure for screening %s: %v\n", screeningID, err)
	}
	return fmt.Errorf("screening %s failed: %w", screeningID, cause)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout: " + err.Error()
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input: " + err.Error()
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response: " + err.Error()
	case errors.Is(err, ErrProviderThrottled):
		return "provider_throttled: " + err.Error()
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable: " + err.Error()
	default:
		return err.Error()
	}
}

func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}
