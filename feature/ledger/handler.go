package ledger

import (
	"errors"

	"cardvault/core/errs"
	"cardvault/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the ledger.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ledger routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/ledger")
	group.Post("/import", h.HandleImport)
	group.Post("/entries", h.HandleAdd)
	group.Put("/entries/:id/quantity", h.HandleSetQuantity)
	group.Delete("/entries/:id", h.HandleDelete)
	group.Get("/collections", h.HandleCollections)
	group.Get("/collections/:name/entries", h.HandleList)
	group.Delete("/collections/:name", h.HandleDeleteCollection)
}

func (h *Handler) fail(c *fiber.Ctx, err error, msg string) error {
	l := logger.WithRayID(h.service.logger, c)
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error(msg, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// HandleImport merges a batch of normalized records into the ledger.
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	var records []ImportRecord
	if err := c.BodyParser(&records); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	merged, err := h.service.Import(c.Context(), records)
	if err != nil {
		return h.fail(c, err, "Ledger import failed")
	}
	return c.JSON(fiber.Map{"merged": merged})
}

// HandleAdd merges a single record into the ledger.
func (h *Handler) HandleAdd(c *fiber.Ctx) error {
	var record ImportRecord
	if err := c.BodyParser(&record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.service.Add(c.Context(), record); err != nil {
		return h.fail(c, err, "Ledger add failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": true})
}

// HandleSetQuantity updates one entry's quantity.
func (h *Handler) HandleSetQuantity(c *fiber.Ctx) error {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.service.SetQuantity(c.Context(), c.Params("id"), body.Quantity); err != nil {
		return h.fail(c, err, "Ledger quantity update failed")
	}
	return c.JSON(fiber.Map{"updated": true})
}

// HandleDelete removes one entry.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err, "Ledger delete failed")
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// HandleCollections lists every collection with counts.
func (h *Handler) HandleCollections(c *fiber.Ctx) error {
	collections, err := h.service.Collections(c.Context())
	if err != nil {
		return h.fail(c, err, "Collection listing failed")
	}
	return c.JSON(collections)
}

// HandleList returns every entry in a collection.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	entries, err := h.service.List(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, err, "Collection entries listing failed")
	}
	return c.JSON(entries)
}

// HandleDeleteCollection removes a whole collection.
func (h *Handler) HandleDeleteCollection(c *fiber.Ctx) error {
	removed, err := h.service.DeleteCollection(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, err, "Collection delete failed")
	}
	return c.JSON(fiber.Map{"deleted": removed})
}
