package extraction

import (
	"errors"

	"listing-vault/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for extraction.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, l *zap.Logger) *Handler {
	return &Handler{service: service, logger: l}
}

// RegisterRoutes registers the extraction routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/extract", h.HandleExtract)
}

// HandleExtract runs a full extraction and returns its stats.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	stats, err := h.service.Run(c.Context())
	if err != nil {
		l.Error("Extraction failed", zap.Error(err))

		status := fiber.StatusInternalServerError
		var authErr *AuthError
		if errors.As(err, &authErr) {
			status = fiber.StatusUnauthorized
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(stats)
}
