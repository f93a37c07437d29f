package vault

import (
	"errors"

	"listing-vault/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the vault.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, l *zap.Logger) *Handler {
	return &Handler{service: service, logger: l}
}

// RegisterRoutes registers the vault routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/listings")
	group.Get("/", h.HandleList)
	group.Get("/:localId", h.HandleGet)
	group.Patch("/:localId", h.HandleUpdateField)
	group.Delete("/:localId", h.HandleDelete)
	group.Post("/:localId/unpublish", h.HandleUnpublish)

	app.Post("/vault/reset", h.HandleReset)
}

// HandleList returns stored listings, optionally filtered by publication
// status (?filter=all|published|unpublished).
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	filter := ListFilter(c.Query("filter", string(FilterAll)))
	listings, err := h.service.List(c.Context(), filter)
	if err != nil {
		l.Error("Listing query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"count":    len(listings),
		"listings": listings,
	})
}

// HandleGet returns one listing by local id.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	listing, err := h.service.Get(c.Context(), c.Params("localId"))
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(listing)
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// HandleUpdateField sets one editable field of a listing.
func (h *Handler) HandleUpdateField(c *fiber.Ctx) error {
	var req updateFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	listing, err := h.service.UpdateField(c.Context(), c.Params("localId"), req.Field, req.Value)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(listing)
}

// HandleDelete removes a listing and its blobs.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("localId")); err != nil {
		return h.renderError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUnpublish marks a listing unpublished, attempting a remote delete.
func (h *Handler) HandleUnpublish(c *fiber.Ctx) error {
	listing, err := h.service.Unpublish(c.Context(), c.Params("localId"))
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(listing)
}

// HandleReset clears the whole vault.
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if err := h.service.Reset(c.Context()); err != nil {
		l.Error("Vault reset failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrNotFound) {
		status = fiber.StatusNotFound
	}

	logger.WithRayID(h.logger, c).Error("Vault request failed", zap.Error(err))
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
