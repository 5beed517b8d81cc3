package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hireloop/resume-screener/internal/models"
)

type ScreeningRepository interface {
	Create(screening *models.Screening) error
	FindByID(id uuid.UUID) (*models.Screening, error)
	FindByJD(jdDocumentID uuid.UUID) ([]models.Screening, error)
	UpdateStage(id uuid.UUID, stage models.ScreeningStage) error
	UpdateDecision(id uuid.UUID, data *ScreeningDecisionData) error
	UpdateFailure(id uuid.UUID, reason string) error
	FindPendingJobs(limit int) ([]models.Screening, error)
}

type ScreeningDecisionData struct {
	FinalScore     float64
	Shortlisted    bool
	Recommendation string
	Strengths      string
	Weaknesses     string
	RawModelOutput string
}

type screeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) ScreeningRepository {
	return &screeningRepository{db: db}
}

func (r *screeningRepository) Create(screening *models.Screening) error {
	if err := r.db.Create(screening).Error; err != nil {
		return fmt.Errorf("failed to create screening: %w", err)
	}
	return nil
}

func (r *screeningRepository) FindByID(id uuid.UUID) (*models.Screening, error) {
	var screening models.Screening
	if err := r.db.Where("id = ?", id).First(&screening).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("screening not found")
		}
		return nil, fmt.Errorf("failed to find screening: %w", err)
	}
	return &screening, nil
}

func (r *screeningRepository) FindByJD(jdDocumentID uuid.UUID) ([]models.Screening, error) {
	var screenings []models.Screening
	err := r.db.
		Where("jd_document_id = ?", jdDocumentID).
		Order("final_score DESC NULLS LAST, created_at ASC").
		Find(&screenings).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find screenings for JD: %w", err)
	}

	return screenings, nil
}

func (r *screeningRepository) UpdateStage(id uuid.UUID, stage models.ScreeningStage) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stage":      stage,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update stage: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening not found")
	}

	return nil
}

func (r *screeningRepository) UpdateDecision(id uuid.UUID, data *ScreeningDecisionData) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stage":            models.StageDecided,
			"final_score":      data.FinalScore,
			"shortlisted":      data.Shortlisted,
			"recommendation":   data.Recommendation,
			"strengths":        data.Strengths,
			"weaknesses":       data.Weaknesses,
			"raw_model_output": data.RawModelOutput,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update decision: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening not found")
	}

	return nil
}

func (r *screeningRepository) UpdateFailure(id uuid.UUID, reason string) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stage":          models.StageFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update failure: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening not found")
	}

	return nil
}

func (r *screeningRepository) FindPendingJobs(limit int) ([]models.Screening, error) {
	var screenings []models.Screening
	err := r.db.
		Where("stage = ?", models.StageQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&screenings).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return screenings, nil
}
