package archive

import (
	"errors"

	"listing-vault/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for archive export/import.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, l *zap.Logger) *Handler {
	return &Handler{service: service, logger: l}
}

// RegisterRoutes registers the archive routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/archive")
	group.Post("/export", h.HandleExport)
	group.Post("/import", h.HandleImport)
}

// HandleExport exports the vault and returns the artifact handle.
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	handle, err := h.service.Export(c.Context())
	if err != nil {
		l.Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"handle": handle})
}

type importRequest struct {
	Handle string `json:"handle"`
}

// HandleImport replaces the vault contents with the given archive.
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req importRequest
	if err := c.BodyParser(&req); err != nil || req.Handle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing archive handle",
		})
	}

	if err := h.service.Import(c.Context(), req.Handle); err != nil {
		l.Error("Import failed", zap.Error(err))

		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrMissingManifest) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
