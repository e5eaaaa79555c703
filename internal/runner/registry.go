package runner

import (
	"go.uber.org/zap"

	"github.com/mtgmine/mtgmine/internal/collectors/scryfall"
	"github.com/mtgmine/mtgmine/internal/collectors/seventeenlands"
	"github.com/mtgmine/mtgmine/internal/engine"
	"github.com/mtgmine/mtgmine/internal/engine/steps"
)

// BuildRegistry creates a new registry with all collectors and steps registered.
func BuildRegistry(logger *zap.Logger) *engine.Registry {
	registry := engine.NewRegistry(logger)

	scryfall.Register(registry)
	seventeenlands.Register(registry)

	steps.Register(registry)

	return registry
}
