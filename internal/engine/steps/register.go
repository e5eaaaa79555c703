package steps

import (
	"context"

	"go.uber.org/zap"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/engine"
)

func Register(registry *engine.Registry) {
	registry.RegisterStep(
		StaticStepKind,
		engine.NewStepFactoryWithoutCollector(StaticStepKind, newStaticStep),
	)
}

func newStaticStep(_ context.Context, _ *zap.Logger, id string, spec *v1.StaticStep) (engine.Step, error) {
	return NewStaticStep(id, StaticStepConfig{
		Filepath: spec.Filepath,
		Value:    spec.Value,
		ParseAs:  spec.ParseAs,
		Columns:  spec.Columns,
	})
}
