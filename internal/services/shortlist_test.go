package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_ThresholdBoundary(t *testing.T) {
	cvDoc := uuid.New()
	tests := []struct {
		name        string
		score       float64
		threshold   float64
		shortlisted bool
	}{
		{name: "well above threshold", score: 85, threshold: 60, shortlisted: true},
		{name: "exactly at threshold", score: 60, threshold: 60, shortlisted: true},
		{name: "just below threshold", score: 59.99, threshold: 60, shortlisted: false},
		{name: "zero score", score: 0, threshold: 60, shortlisted: false},
		{name: "zero threshold shortlists everyone", score: 0, threshold: 0, shortlisted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(&Assessment{
				CandidateDocumentID: cvDoc,
				Score:               tt.score,
			}, tt.threshold)

			assert.Equal(t, cvDoc, decision.CandidateDocumentID)
			assert.Equal(t, tt.score, decision.FinalScore)
			assert.Equal(t, tt.shortlisted, decision.Shortlisted)
		})
	}
}

func TestDecide_IsDeterministic(t *testing.T) {
	assessment := &Assessment{CandidateDocumentID: uuid.New(), Score: 72}
	first := Decide(assessment, 70)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Decide(assessment, 70))
	}
}

func TestCombineScores(t *testing.T) {
	scores := []float64{55, 80, 62}

	max, err := CombineScores(scores, CombineMax)
	require.NoError(t, err)
	assert.Equal(t, 80.0, max)

	mean, err := CombineScores(scores, CombineMean)
	require.NoError(t, err)
	assert.InDelta(t, 65.666, mean, 0.001)

	single, err := CombineScores([]float64{42}, CombineMax)
	require.NoError(t, err)
	assert.Equal(t, 42.0, single)
}

func TestCombineScores_InvalidInput(t *testing.T) {
	_, err := CombineScores(nil, CombineMax)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = CombineScores([]float64{50}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
