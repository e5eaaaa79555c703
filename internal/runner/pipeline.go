package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/engine"
)

// createPipeline builds every declared collector, then every step. A step
// without a collector reference shares an implicit collector named after
// the kind it needs, built from defaults alone.
func createPipeline(ctx context.Context, logger *zap.Logger, registry *engine.Registry, job v1.MineJob, defaults ClientDefaults) (*engine.Pipeline, error) {
	logger.Info("creating pipeline", zap.String("job_name", job.Metadata.Name))
	pipeline := engine.NewPipeline(job.Metadata.Name)

	for _, collectorSpec := range job.Spec.Collectors {
		resolved, err := ResolveCollectorSpec(collectorSpec)
		if err != nil {
			return nil, err
		}

		if err := addCollector(ctx, logger, registry, pipeline, collectorSpec.ID, resolved, defaults); err != nil {
			return nil, err
		}
	}

	for _, stepSpec := range job.Spec.Steps {
		resolved, err := ResolveStepSpec(stepSpec)
		if err != nil {
			return nil, err
		}

		collector, err := stepCollector(ctx, logger, registry, pipeline, stepSpec, resolved, defaults)
		if err != nil {
			return nil, err
		}

		step, err := registry.CreateStep(ctx, resolved.Kind, stepSpec.ID, collector, resolved.Spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create step %s: %w", stepSpec.ID, err)
		}

		if err := pipeline.AddStep(stepSpec.ID, logStep(logger, stepSpec.ID, step)); err != nil {
			return nil, fmt.Errorf("failed to add step: %w", err)
		}

		logger.Info("created step", zap.String("step_id", stepSpec.ID), zap.String("step_kind", resolved.Kind))
	}

	return pipeline, nil
}

func addCollector(ctx context.Context, logger *zap.Logger, registry *engine.Registry, pipeline *engine.Pipeline, id string, resolved ResolvedSpec, defaults ClientDefaults) error {
	defaults.apply(resolved.Spec)

	collector, err := registry.CreateCollector(ctx, resolved.Kind, resolved.Spec)
	if err != nil {
		return fmt.Errorf("failed to create collector %s: %w", id, err)
	}

	if err := pipeline.AddCollector(id, collector); err != nil {
		return fmt.Errorf("failed to add collector: %w", err)
	}

	logger.Info("created collector",
		zap.String("collector_id", id),
		zap.String("collector_kind", resolved.Kind),
		zap.String("collector", collector.Name()),
	)
	return nil
}

func stepCollector(ctx context.Context, logger *zap.Logger, registry *engine.Registry, pipeline *engine.Pipeline, stepSpec v1.Step, resolved ResolvedSpec, defaults ClientDefaults) (engine.Collector, error) {
	if resolved.CollectorKind == "" {
		return nil, nil
	}

	if stepSpec.Collector != nil {
		collector, ok := pipeline.GetCollector(*stepSpec.Collector)
		if !ok {
			return nil, fmt.Errorf("step %s has invalid collector reference: collector %s not found", stepSpec.ID, *stepSpec.Collector)
		}
		if collector.Kind() != resolved.CollectorKind {
			return nil, fmt.Errorf("step %s has invalid collector reference: collector %s is not a %s collector", stepSpec.ID, *stepSpec.Collector, resolved.CollectorKind)
		}
		return collector, nil
	}

	id := resolved.CollectorKind
	if collector, ok := pipeline.GetCollector(id); ok {
		if collector.Kind() != resolved.CollectorKind {
			return nil, fmt.Errorf("step %s has no collector reference and collector %s is not a %s collector", stepSpec.ID, id, resolved.CollectorKind)
		}
		return collector, nil
	}

	spec, err := defaultCollectorSpec(resolved.CollectorKind)
	if err != nil {
		return nil, err
	}
	if err := addCollector(ctx, logger, registry, pipeline, id, ResolvedSpec{Kind: resolved.CollectorKind, Spec: spec}, defaults); err != nil {
		return nil, err
	}

	collector, _ := pipeline.GetCollector(id)
	return collector, nil
}

// logStep logs how long a step took and how many rows it produced.
func logStep(logger *zap.Logger, id string, step engine.Step) engine.Step {
	return engine.WrapStep(step, func(ctx context.Context, inner engine.Step) (engine.Result, error) {
		start := time.Now()
		result, err := inner.Resolve(ctx)

		fields := []zap.Field{
			zap.String("step_id", id),
			zap.String("step", inner.Name()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			logger.Warn("step failed", append(fields, zap.Error(err))...)
			return result, err
		}

		if rows, ok := result.Meta["rows"]; ok {
			fields = append(fields, zap.String("rows", rows))
		}
		logger.Info("step resolved", fields...)
		return result, nil
	})
}
