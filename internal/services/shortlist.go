package services

import (
	"fmt"

	"github.com/google/uuid"
)

// ShortlistDecision is derived deterministically from one Assessment and a
// threshold. It is never mutated after creation.
type ShortlistDecision struct {
	CandidateDocumentID uuid.UUID
	FinalScore          float64
	Shortlisted         bool
}

// Decide is a pure function: a score equal to the threshold shortlists.
// It operates on exactly one assessment; combining repeated runs is the
// caller's job via an explicit CombinePolicy.
func Decide(assessment *Assessment, threshold float64) ShortlistDecision {
	return ShortlistDecision{
		CandidateDocumentID: assessment.CandidateDocumentID,
		FinalScore:          assessment.Score,
		Shortlisted:         assessment.Score >= threshold,
	}
}

// CombinePolicy reduces scores from repeated screening runs of the same
// candidate into one score. There is no default: the caller picks.
type CombinePolicy func(scores []float64) float64

func CombineMax(scores []float64) float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	return max
}

func CombineMean(scores []float64) float64 {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// CombineScores applies the caller-supplied policy to scores from repeated
// runs. Fails on empty input rather than inventing a score.
func CombineScores(scores []float64, policy CombinePolicy) (float64, error) {
	if len(scores) == 0 {
		return 0, fmt.Errorf("%w: no scores to combine", ErrInvalidInput)
	}
	if policy == nil {
		return 0, fmt.Errorf("%w: combination policy is required", ErrInvalidInput)
	}
	return policy(scores), nil
}
