package models

import (
	"time"

	"github.com/google/uuid"
)

// ScreeningStage is the per-candidate state machine. Transitions run
// strictly in order queued -> ingested -> retrieved -> assessed -> decided,
// with failed reachable from any stage. decided and failed are terminal.
type ScreeningStage string

const (
	StageQueued    ScreeningStage = "queued"
	StageIngested  ScreeningStage = "ingested"
	StageRetrieved ScreeningStage = "retrieved"
	StageAssessed  ScreeningStage = "assessed"
	StageDecided   ScreeningStage = "decided"
	StageFailed    ScreeningStage = "failed"
)

type Screening struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobTitle       string         `gorm:"type:text" json:"job_title"`
	JDDocumentID   uuid.UUID      `gorm:"type:uuid;not null" json:"jd_document_id"`
	CVDocumentID   uuid.UUID      `gorm:"type:uuid;not null" json:"cv_document_id"`
	Stage          ScreeningStage `gorm:"not null;default:'queued'" json:"stage"`
	FinalScore     *float64       `gorm:"type:decimal(5,2)" json:"final_score,omitempty"`
	Shortlisted    *bool          `json:"shortlisted,omitempty"`
	Recommendation *string        `gorm:"type:text" json:"recommendation,omitempty"`
	Strengths      *string        `gorm:"type:text" json:"strengths,omitempty"`
	Weaknesses     *string        `gorm:"type:text" json:"weaknesses,omitempty"`
	RawModelOutput *string        `gorm:"type:text" json:"-"`
	FailureReason  *string        `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	JDDocument Document `gorm:"foreignKey:JDDocumentID" json:"-"`
	CVDocument Document `gorm:"foreignKey:CVDocumentID" json:"-"`
}

func (Screening) TableName() string {
	return "screenings"
}
