package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/tastegent/tastegent/internal/domain"
	"github.com/tastegent/tastegent/internal/service"
)

// UploadHandler handles image upload and retrieval
type UploadHandler struct {
	uploadService *service.UploadService
	maxUploadSize int64
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploadService *service.UploadService, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxUploadSize: maxUploadSizeMB * 1024 * 1024,
	}
}

// Upload handles POST /upload
// Accepts a multipart form with a "file" field, normalizes the image and
// stores it under a generated name
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided"})
	}

	if fileHeader.Size > h.maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "File too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read file"})
	}

	result, err := h.uploadService.Store(c.UserContext(), fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, domain.ErrNotAnImage) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "File is not a supported image"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

// Serve handles GET /uploads/:filename
// Streams a stored image back to the client
func (h *UploadHandler) Serve(c *fiber.Ctx) error {
	data, contentType, err := h.uploadService.Fetch(c.UserContext(), c.Params("filename"))
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if contentType != "" {
		c.Set("Content-Type", contentType)
	}
	c.Set("Cache-Control", "public, max-age=86400")
	return c.Send(data)
}
