package reconcile

import (
	"cardvault/core/progress"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the reconcile feature around an existing engine.
func NewFeature(engine *Engine, bus *progress.Broadcaster, log *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(engine, bus, log)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "reconcile"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
