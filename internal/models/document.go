package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentRole string

const (
	RoleJobDescription DocumentRole = "jd"
	RoleCV             DocumentRole = "cv"
)

type Document struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Role             DocumentRole `gorm:"type:text;not null" json:"role"`
	Filename         string       `gorm:"type:text" json:"filename"`
	OriginalFileName string       `gorm:"type:text" json:"original_filename"`
	FilePath         string       `gorm:"type:text" json:"file_path"`
	RawText          string       `gorm:"type:text" json:"-"`
	CleanedText      string       `gorm:"type:text" json:"-"`
	CandidateEmail   string       `gorm:"type:text" json:"candidate_email,omitempty"`
	CandidatePhone   string       `gorm:"type:text" json:"candidate_phone,omitempty"`
	CreatedAt        time.Time    `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
