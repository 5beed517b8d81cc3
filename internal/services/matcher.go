package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Assessment is the structured result of one completion call for one
// candidate. Produced once per screening run, immutable afterwards.
type Assessment struct {
	CandidateDocumentID uuid.UUID
	Score               float64
	Strengths           []string
	Weaknesses          []string
	Recommendation      string
	RawModelOutput      string
}

// ContextSnippet is one deduplicated retrieved chunk with the maximum
// similarity it reached across all JD chunk queries.
type ContextSnippet struct {
	ChunkID    uuid.UUID
	Text       string
	Similarity float64
}

type Matcher interface {
	Assess(ctx context.Context, jobTitle, jdSummary string, candidateDocumentID uuid.UUID, retrieved map[uuid.UUID][]RetrievalResult) (*Assessment, error)
	SummarizeJD(ctx context.Context, jdText string) (string, error)
}

// Prompt context stays bounded regardless of how many chunks matched.
const maxContextChars = 12000

type matcher struct {
	completer           Completer
	promptBuilder       *PromptBuilder
	limiter             *rate.Limiter
	slots               chan struct{}
	requestTimeout      time.Duration
	throttleMaxAttempts int
	backoffBase         time.Duration
}

func NewMatcher(
	completer Completer,
	callsPerSecond float64,
	maxConcurrentCalls int,
	requestTimeout time.Duration,
	throttleMaxAttempts int,
) Matcher {
	if maxConcurrentCalls <= 0 {
		maxConcurrentCalls = 1
	}
	return &matcher{
		completer:           completer,
		promptBuilder:       NewPromptBuilder(),
		limiter:             rate.NewLimiter(rate.Limit(callsPerSecond), maxConcurrentCalls),
		slots:               make(chan struct{}, maxConcurrentCalls),
		requestTimeout:      requestTimeout,
		throttleMaxAttempts: throttleMaxAttempts,
		backoffBase:         time.Second,
	}
}

// assessmentPayload mirrors the JSON the completion provider is asked for.
// Score is a pointer so a missing field is distinguishable from zero and is
// never coerced into a real score.
type assessmentPayload struct {
	Score          *float64 `json:"score"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Recommendation string   `json:"recommendation"`
}

// Assess implements Matcher. One completion call; if the response fails
// schema validation, exactly one deterministic retry with a stricter
// prompt, then ErrMalformedResponse.
func (m *matcher) Assess(ctx context.Context, jobTitle, jdSummary string, candidateDocumentID uuid.UUID, retrieved map[uuid.UUID][]RetrievalResult) (*Assessment, error) {
	snippets := BuildContextSnippets(retrieved)
	cvContext := FormatRetrievedContext(snippets)

	prompt := m.promptBuilder.BuildAssessmentPrompt(jobTitle, jdSummary, cvContext)

	raw, err := m.generate(ctx, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("failed to generate assessment: %w", err)
	}

	assessment, parseErr := parseAssessment(raw, candidateDocumentID)
	if parseErr == nil {
		return assessment, nil
	}

	log.Printf("⚠️  Assessment response failed validation for %s, retrying with strict prompt: %v\n", candidateDocumentID, parseErr)

	strictPrompt := m.promptBuilder.BuildStrictAssessmentPrompt(jobTitle, jdSummary, cvContext)
	raw, err = m.generate(ctx, strictPrompt, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to generate assessment on strict retry: %w", err)
	}

	assessment, parseErr = parseAssessment(raw, candidateDocumentID)
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, parseErr)
	}

	return assessment, nil
}

// SummarizeJD implements Matcher.
func (m *matcher) SummarizeJD(ctx context.Context, jdText string) (string, error) {
	if strings.TrimSpace(jdText) == "" {
		return "", fmt.Errorf("%w: empty job description", ErrInvalidInput)
	}

	prompt := m.promptBuilder.BuildJDSummaryPrompt(jdText)
	summary, err := m.generate(ctx, prompt, 0.3)
	if err != nil {
		return "", fmt.Errorf("failed to summarize job description: %w", err)
	}

	return strings.TrimSpace(summary), nil
}

// generate issues one completion call behind the shared rate limiter and
// the concurrency cap, retrying throttled attempts with exponential
// backoff. The backoff loop is separate from the structural strict retry.
func (m *matcher) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	select {
	case m.slots <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-m.slots }()

	var lastErr error
	backoff := m.backoffBase

	for attempt := 1; attempt <= m.throttleMaxAttempts; attempt++ {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, m.requestTimeout)
		result, err := m.completer.Complete(callCtx, prompt, temperature)
		cancel()

		if err == nil {
			return result, nil
		}

		if !errors.Is(err, ErrProviderThrottled) {
			return "", err
		}

		lastErr = err
		if attempt < m.throttleMaxAttempts {
			log.Printf("⚠️  Provider throttled (attempt %d/%d), backing off %s\n", attempt, m.throttleMaxAttempts, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
		}
	}

	return "", fmt.Errorf("throttled after %d attempts: %w", m.throttleMaxAttempts, lastErr)
}

// BuildContextSnippets deduplicates matched chunks across JD chunk queries,
// keeps each chunk's maximum similarity, orders descending, and bounds the
// total context size.
func BuildContextSnippets(retrieved map[uuid.UUID][]RetrievalResult) []ContextSnippet {
	best := make(map[uuid.UUID]*ContextSnippet)
	firstSeen := make(map[uuid.UUID]int)

	// Iterate query chunks in a stable order so first-seen ranks are
	// deterministic.
	queryIDs := make([]uuid.UUID, 0, len(retrieved))
	for id := range retrieved {
		queryIDs = append(queryIDs, id)
	}
	sort.Slice(queryIDs, func(i, j int) bool {
		return queryIDs[i].String() < queryIDs[j].String()
	})

	order := 0
	for _, queryID := range queryIDs {
		for _, result := range retrieved[queryID] {
			snippet, ok := best[result.MatchedChunkID]
			if !ok {
				best[result.MatchedChunkID] = &ContextSnippet{
					ChunkID:    result.MatchedChunkID,
					Text:       result.MatchedText,
					Similarity: result.Similarity,
				}
				firstSeen[result.MatchedChunkID] = order
				order++
				continue
			}
			if result.Similarity > snippet.Similarity {
				snippet.Similarity = result.Similarity
			}
		}
	}

	snippets := make([]ContextSnippet, 0, len(best))
	for _, snippet := range best {
		snippets = append(snippets, *snippet)
	}

	sort.Slice(snippets, func(i, j int) bool {
		if snippets[i].Similarity != snippets[j].Similarity {
			return snippets[i].Similarity > snippets[j].Similarity
		}
		return firstSeen[snippets[i].ChunkID] < firstSeen[snippets[j].ChunkID]
	})

	total := 0
	for i, snippet := range snippets {
		total += len(snippet.Text)
		if total > maxContextChars {
			snippets = snippets[:i]
			break
		}
	}

	return snippets
}

func parseAssessment(raw string, candidateDocumentID uuid.UUID) (*Assessment, error) {
	jsonStr := extractJSON(raw)

	var payload assessmentPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %v", err)
	}

	if payload.Score == nil {
		return nil, fmt.Errorf("missing numeric score field")
	}
	if *payload.Score < 0 || *payload.Score > 100 {
		return nil, fmt.Errorf("score %.2f outside [0,100]", *payload.Score)
	}

	return &Assessment{
		CandidateDocumentID: candidateDocumentID,
		Score:               *payload.Score,
		Strengths:           payload.Strengths,
		Weaknesses:          payload.Weaknesses,
		Recommendation:      payload.Recommendation,
		RawModelOutput:      raw,
	}, nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
