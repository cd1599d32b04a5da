package reconcile

import (
	"errors"

	"cardvault/core/errs"
	"cardvault/core/logger"
	"cardvault/core/progress"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation.
type Handler struct {
	engine *Engine
	bus    *progress.Broadcaster
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(engine *Engine, bus *progress.Broadcaster, log *zap.Logger) *Handler {
	return &Handler{engine: engine, bus: bus, logger: log}
}

// RegisterRoutes registers the reconciliation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/reconcile")
	group.Post("/", h.HandleRun)
	group.Get("/status", h.HandleStatus)
}

// HandleRun runs one reconciliation pass and returns its report.
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	report, err := h.engine.Reconcile(c.Context())
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		logger.WithRayID(h.logger, c).Error("Reconciliation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleStatus returns the latest reconciliation progress snapshot.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	msg, ok := h.bus.Latest(progress.PhaseReconcile)
	if !ok {
		return c.JSON(fiber.Map{"running": false})
	}
	return c.JSON(fiber.Map{
		"running": h.engine.Running(),
		"last":    msg,
	})
}
