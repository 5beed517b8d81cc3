package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hireloop/resume-screener/internal/models"
	"hireloop/resume-screener/internal/repositories"
	"hireloop/resume-screener/internal/services"
)

type ScreenHandler struct {
	screeningRepo repositories.ScreeningRepository
	docRepo       repositories.DocumentRepository
	worker        services.Worker
}

func NewScreenHandler(
	screeningRepo repositories.ScreeningRepository,
	docRepo repositories.DocumentRepository,
	worker services.Worker,
) *ScreenHandler {
	return &ScreenHandler{
		screeningRepo: screeningRepo,
		docRepo:       docRepo,
		worker:        worker,
	}
}

// HandleScreen handles POST /screen: one screening row per CV, queued onto
// the worker pool.
func (h *ScreenHandler) HandleScreen(c *fiber.Ctx) error {
	var req models.ScreenRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.JobTitle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_title is required",
		})
	}

	if req.JDDocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "jd_document_id is required",
		})
	}

	if len(req.CVDocumentIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cv_document_ids is required",
		})
	}

	jdDocID, err := uuid.Parse(req.JDDocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid jd_document_id format",
		})
	}

	jdDoc, err := h.docRepo.FindByID(jdDocID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "JD document not found",
		})
	}
	if jdDoc.Role != models.RoleJobDescription {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "jd_document_id does not reference a job description",
		})
	}

	cvDocIDs := make([]uuid.UUID, 0, len(req.CVDocumentIDs))
	for _, raw := range req.CVDocumentIDs {
		cvDocID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid cv_document_id format: " + raw,
			})
		}

		cvDoc, err := h.docRepo.FindByID(cvDocID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "CV document not found: " + raw,
			})
		}
		if cvDoc.Role != models.RoleCV {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "document is not a CV: " + raw,
			})
		}

		cvDocIDs = append(cvDocIDs, cvDocID)
	}

	screeningIDs := make([]string, 0, len(cvDocIDs))
	for _, cvDocID := range cvDocIDs {
		screening := &models.Screening{
			ID:           uuid.New(),
			JobTitle:     req.JobTitle,
			JDDocumentID: jdDocID,
			CVDocumentID: cvDocID,
			Stage:        models.StageQueued,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		if err := h.screeningRepo.Create(screening); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create screening job",
			})
		}

		h.worker.EnqueueJob(screening.ID)
		screeningIDs = append(screeningIDs, screening.ID.String())
	}

	return c.Status(fiber.StatusAccepted).JSON(models.ScreenResponse{
		ScreeningIDs: screeningIDs,
		Stage:        string(models.StageQueued),
	})
}
