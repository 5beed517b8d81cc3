package models

type UploadResponse struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
}

type ScreenRequest struct {
	JobTitle      string   `json:"job_title" validate:"required"`
	JDDocumentID  string   `json:"jd_document_id" validate:"required,uuid"`
	CVDocumentIDs []string `json:"cv_document_ids" validate:"required"`
}

type ScreenResponse struct {
	ScreeningIDs []string `json:"screening_ids"`
	Stage        string   `json:"stage"`
}

type ScreeningResult struct {
	ID             string   `json:"id"`
	CVDocumentID   string   `json:"cv_document_id"`
	Stage          string   `json:"stage"`
	FinalScore     *float64 `json:"final_score,omitempty"`
	Shortlisted    *bool    `json:"shortlisted,omitempty"`
	Recommendation *string  `json:"recommendation,omitempty"`
	Strengths      []string `json:"strengths,omitempty"`
	Weaknesses     []string `json:"weaknesses,omitempty"`
	FailureReason  *string  `json:"failure_reason,omitempty"`
}

// ShortlistResponse keeps assessed and failed candidates apart: a candidate
// that could not be assessed is never conflated with one assessed below the
// threshold.
type ShortlistResponse struct {
	JDDocumentID string            `json:"jd_document_id"`
	Shortlisted  []ScreeningResult `json:"shortlisted"`
	Rejected     []ScreeningResult `json:"rejected"`
	Failed       []ScreeningResult `json:"failed"`
}
