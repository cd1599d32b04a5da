package catalog

import (
	"context"
	"errors"

	"cardvault/core/errs"
	"cardvault/core/logger"
	"cardvault/core/progress"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Post("/import", h.HandleImport)
	group.Delete("/import", h.HandleCancelImport)
	group.Get("/import/status", h.HandleImportStatus)
	group.Get("/meta", h.HandleMeta)
	group.Get("/search", h.HandleSearch)
	group.Get("/resolve", h.HandleResolve)
}

type importRequest struct {
	// Object is the bulk file's name in the configured bucket.
	Object string `json:"object"`
	// Promo targets the secondary promotional/token catalog.
	Promo bool `json:"promo"`
}

// HandleImport starts a catalog import from object storage. The import runs
// in the background; poll /catalog/import/status for progress.
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Object == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "object is required"})
	}
	if h.service.Importing() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": errs.ErrAlreadyRunning.Error()})
	}

	go func() {
		// Detached from the request: the import outlives the HTTP call.
		if _, err := h.service.ImportFromStorage(context.Background(), req.Object, req.Promo); err != nil {
			if !errors.Is(err, errs.ErrAlreadyRunning) {
				l.Error("Background catalog import failed", zap.Error(err))
			}
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"started": true})
}

// HandleCancelImport requests a cooperative abort of the running import.
func (h *Handler) HandleCancelImport(c *fiber.Ctx) error {
	if !h.service.CancelImport() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no import running"})
	}
	return c.JSON(fiber.Map{"cancelled": true})
}

// HandleImportStatus returns the latest import progress message.
func (h *Handler) HandleImportStatus(c *fiber.Ctx) error {
	msg, ok := h.service.bus.Latest(progress.PhaseImport)
	if !ok {
		return c.JSON(fiber.Map{"phase": progress.PhaseImport, "state": "idle"})
	}
	return c.JSON(msg)
}

// HandleMeta returns the provenance of the last successful ingest.
func (h *Handler) HandleMeta(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	meta, err := h.service.Meta(c.Context())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "catalog not built"})
		}
		l.Error("Failed to read catalog metadata", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(meta)
}

// HandleResolve maps a loose (?name=&set=&number=) identity onto its best
// catalog record and reports which fallback tier matched.
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	match, err := h.service.Resolve(c.Context(), c.Query("name"), c.Query("set"), c.Query("number"))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a usable name is required"})
		case errors.Is(err, errs.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no catalog record matches"})
		default:
			l.Error("Catalog resolve failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"tier": match.Tier, "card": match.Card})
}

// HandleSearch returns every printing matching ?name= case-insensitively.
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	cards, err := h.service.Search(c.Context(), c.Query("name"))
	if err != nil {
		if errors.Is(err, errs.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}
		l.Error("Catalog search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cards)
}
