package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"hireloop/resume-screener/internal/models"
	"hireloop/resume-screener/internal/repositories"
)

// mockEmbedder implements Embedder. The default embedding is deterministic
// in the text so retrieval tests are repeatable.
type mockEmbedder struct {
	mu      sync.Mutex
	calls   int
	OnEmbed func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return deterministicVector(text), nil
}

// deterministicVector maps text onto a fixed-dimensionality vector using
// byte sums, stable across calls.
func deterministicVector(text string) []float32 {
	v := make([]float32, 4)
	for i, b := range []byte(text) {
		v[i%4] += float32(b)
	}
	v[3] += 1 // never the zero vector
	return v
}

// mockCompleter implements Completer.
type mockCompleter struct {
	mu         sync.Mutex
	calls      int
	prompts    []string
	OnComplete func(call int, prompt string) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.OnComplete != nil {
		return m.OnComplete(call, prompt)
	}
	return `{"score": 50, "strengths": [], "weaknesses": [], "recommendation": "potential_match"}`, nil
}

func (m *mockCompleter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockDocRepo implements repositories.DocumentRepository over a map.
type mockDocRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.Document
}

func newMockDocRepo(docs ...*models.Document) *mockDocRepo {
	repo := &mockDocRepo{docs: make(map[uuid.UUID]*models.Document)}
	for _, doc := range docs {
		repo.docs[doc.ID] = doc
	}
	return repo
}

func (r *mockDocRepo) Create(doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *mockDocRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found")
	}
	return doc, nil
}

func (r *mockDocRepo) FindByIDs(ids []uuid.UUID) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, id := range ids {
		if doc, ok := r.docs[id]; ok {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *mockDocRepo) FindByRole(role models.DocumentRole) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, doc := range r.docs {
		if doc.Role == role {
			out = append(out, *doc)
		}
	}
	return out, nil
}

// mockScreeningRepo implements repositories.ScreeningRepository over a map.
type mockScreeningRepo struct {
	mu         sync.Mutex
	screenings map[uuid.UUID]*models.Screening
}

func newMockScreeningRepo(screenings ...*models.Screening) *mockScreeningRepo {
	repo := &mockScreeningRepo{screenings: make(map[uuid.UUID]*models.Screening)}
	for _, s := range screenings {
		repo.screenings[s.ID] = s
	}
	return repo
}

func (r *mockScreeningRepo) Create(s *models.Screening) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screenings[s.ID] = s
	return nil
}

func (r *mockScreeningRepo) FindByID(id uuid.UUID) (*models.Screening, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.screenings[id]
	if !ok {
		return nil, fmt.Errorf("screening not found")
	}
	copied := *s
	return &copied, nil
}

func (r *mockScreeningRepo) FindByJD(jdDocumentID uuid.UUID) ([]models.Screening, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Screening
	for _, s := range r.screenings {
		if s.JDDocumentID == jdDocumentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *mockScreeningRepo) UpdateStage(id uuid.UUID, stage models.ScreeningStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.screenings[id]
	if !ok {
		return fmt.Errorf("screening not found")
	}
	s.Stage = stage
	return nil
}

func (r *mockScreeningRepo) UpdateDecision(id uuid.UUID, data *repositories.ScreeningDecisionData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.screenings[id]
	if !ok {
		return fmt.Errorf("screening not found")
	}
	s.Stage = models.StageDecided
	s.FinalScore = &data.FinalScore
	s.Shortlisted = &data.Shortlisted
	s.Recommendation = &data.Recommendation
	s.Strengths = &data.Strengths
	s.Weaknesses = &data.Weaknesses
	s.RawModelOutput = &data.RawModelOutput
	return nil
}

func (r *mockScreeningRepo) UpdateFailure(id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.screenings[id]
	if !ok {
		return fmt.Errorf("screening not found")
	}
	s.Stage = models.StageFailed
	s.FailureReason = &reason
	return nil
}

func (r *mockScreeningRepo) FindPendingJobs(limit int) ([]models.Screening, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Screening
	for _, s := range r.screenings {
		if s.Stage == models.StageQueued {
			out = append(out, *s)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *mockScreeningRepo) get(id uuid.UUID) *models.Screening {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screenings[id]
}
