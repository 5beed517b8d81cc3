package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hireloop/resume-screener/internal/models"
	"hireloop/resume-screener/internal/repositories"
)

type ResultHandler struct {
	screeningRepo  repositories.ScreeningRepository
	shortlistLimit int
}

func NewResultHandler(screeningRepo repositories.ScreeningRepository, shortlistLimit int) *ResultHandler {
	return &ResultHandler{
		screeningRepo:  screeningRepo,
		shortlistLimit: shortlistLimit,
	}
}

// HandleGetResult handles GET /screenings/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	idParam := c.Params("id")
	screeningID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening ID format",
		})
	}

	screening, err := h.screeningRepo.FindByID(screeningID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Screening not found",
		})
	}

	return c.JSON(toScreeningResult(screening))
}

// HandleGetShortlist handles GET /jobs/:id/shortlist. Failed screenings are
// reported in their own bucket: "could not be assessed" is never conflated
// with "assessed and not shortlisted".
func (h *ResultHandler) HandleGetShortlist(c *fiber.Ctx) error {
	idParam := c.Params("id")
	jdDocID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JD document ID format",
		})
	}

	screenings, err := h.screeningRepo.FindByJD(jdDocID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load screenings",
		})
	}

	response := models.ShortlistResponse{
		JDDocumentID: jdDocID.String(),
		Shortlisted:  []models.ScreeningResult{},
		Rejected:     []models.ScreeningResult{},
		Failed:       []models.ScreeningResult{},
	}

	for i := range screenings {
		screening := &screenings[i]
		result := toScreeningResult(screening)

		switch {
		case screening.Stage == models.StageFailed:
			response.Failed = append(response.Failed, result)
		case screening.Stage == models.StageDecided && screening.Shortlisted != nil && *screening.Shortlisted:
			if len(response.Shortlisted) < h.shortlistLimit {
				response.Shortlisted = append(response.Shortlisted, result)
			}
		case screening.Stage == models.StageDecided:
			response.Rejected = append(response.Rejected, result)
		}
	}

	return c.JSON(response)
}

func toScreeningResult(screening *models.Screening) models.ScreeningResult {
	return models.ScreeningResult{
		ID:             screening.ID.String(),
		CVDocumentID:   screening.CVDocumentID.String(),
		Stage:          string(screening.Stage),
		FinalScore:     screening.FinalScore,
		Shortlisted:    screening.Shortlisted,
		Recommendation: screening.Recommendation,
		Strengths:      unmarshalList(screening.Strengths),
		Weaknesses:     unmarshalList(screening.Weaknesses),
		FailureReason:  screening.FailureReason,
	}
}

func unmarshalList(raw *string) []string {
	if raw == nil {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(*raw), &items); err != nil {
		return nil
	}
	return items
}
