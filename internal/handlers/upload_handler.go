package handlers

import (
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hireloop/resume-screener/internal/models"
	"hireloop/resume-screener/internal/repositories"
	"hireloop/resume-screener/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	pdfParser      services.PDFParserService
	maxFileSize    int64
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		pdfParser:      pdfParser,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload handles POST /upload. The form carries one optional "jd"
// file and any number of "cv" files; text extraction and cleaning happen
// here so the screening pipeline only ever sees cleaned text.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File

	var responses []models.UploadResponse

	if jdFiles, exists := files["jd"]; exists && len(jdFiles) > 0 {
		doc, err := h.saveDocument(jdFiles[0], models.RoleJobDescription)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to process JD file: %v", err),
			})
		}
		responses = append(responses, models.UploadResponse{
			ID:           doc.ID.String(),
			Role:         string(doc.Role),
			Filename:     doc.Filename,
			OriginalName: doc.OriginalFileName,
		})
	}

	if cvFiles, exists := files["cv"]; exists {
		for _, cvFile := range cvFiles {
			doc, err := h.saveDocument(cvFile, models.RoleCV)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": fmt.Sprintf("failed to process CV file %s: %v", cvFile.Filename, err),
				})
			}
			responses = append(responses, models.UploadResponse{
				ID:           doc.ID.String(),
				Role:         string(doc.Role),
				Filename:     doc.Filename,
				OriginalName: doc.OriginalFileName,
			})
		}
	}

	if len(responses) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No valid files uploaded. Please upload 'jd' and/or 'cv' as PDF files.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Files uploaded successfully",
		"documents": responses,
	})
}

func (h *UploadHandler) saveDocument(file *multipart.FileHeader, role models.DocumentRole) (*models.Document, error) {
	if file.Size > h.maxFileSize {
		return nil, fmt.Errorf("file too large, max size: %d bytes", h.maxFileSize)
	}

	filename, filePath, err := h.storageService.SaveFile(file, role)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	rawText, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		h.storageService.DeleteFile(filename)
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	doc := models.Document{
		ID:               uuid.New(),
		Role:             role,
		Filename:         filename,
		OriginalFileName: file.Filename,
		FilePath:         filePath,
		RawText:          rawText,
		CleanedText:      services.CleanText(rawText),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if role == models.RoleCV {
		doc.CandidateEmail, doc.CandidatePhone = services.ExtractContactInfo(rawText)
	}

	if err := h.docRepo.Create(&doc); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storageService.DeleteFile(filename)
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	return &doc, nil
}
