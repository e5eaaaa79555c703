package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type CollectorFactory func(ctx context.Context, logger *zap.Logger, input any) (Collector, error)
type StepFactory func(ctx context.Context, logger *zap.Logger, id string, collector Collector, input any) (Step, error)

// TypedCollectorFactory builds a collector from its concrete job spec type
// (e.g. *v1.ScryfallCollector).
type TypedCollectorFactory[T any] func(ctx context.Context, logger *zap.Logger, spec T) (Collector, error)

// TypedStepFactory builds a step bound to a concrete collector type C (e.g.
// *scryfall.Collector) from its spec type S (e.g. *v1.ScryfallSearchStep).
type TypedStepFactory[C Collector, S any] func(ctx context.Context, logger *zap.Logger, id string, collector C, spec S) (Step, error)

// TypedStepFactoryWithoutCollector builds a step that needs no collector.
type TypedStepFactoryWithoutCollector[S any] func(ctx context.Context, logger *zap.Logger, id string, spec S) (Step, error)

// NewCollectorFactory adapts a typed factory to the registry's untyped
// signature, rejecting specs of the wrong type.
func NewCollectorFactory[T any](kind string, f TypedCollectorFactory[T]) CollectorFactory {
	return func(ctx context.Context, logger *zap.Logger, input any) (Collector, error) {
		spec, ok := input.(T)
		if !ok {
			return nil, fmt.Errorf("invalid collector spec for kind %q: %T", kind, input)
		}
		return f(ctx, logger, spec)
	}
}

// NewStepFactory adapts a typed step factory, checking both the collector it
// is bound to and its spec.
func NewStepFactory[C Collector, S any](kind string, f TypedStepFactory[C, S]) StepFactory {
	return func(ctx context.Context, logger *zap.Logger, id string, collector Collector, input any) (Step, error) {
		if collector == nil {
			return nil, fmt.Errorf("step kind %q requires a collector, got nil", kind)
		}

		typedCollector, ok := collector.(C)
		if !ok {
			return nil, fmt.Errorf("invalid collector type for step %q with id %s: %T", kind, id, collector)
		}

		spec, ok := input.(S)
		if !ok {
			return nil, fmt.Errorf("invalid step spec for kind %q with id %s: %T", kind, id, input)
		}

		return f(ctx, logger, id, typedCollector, spec)
	}
}

// NewStepFactoryWithoutCollector adapts a typed factory for collector-less
// steps. Any collector passed in is ignored.
func NewStepFactoryWithoutCollector[S any](kind string, f TypedStepFactoryWithoutCollector[S]) StepFactory {
	return func(ctx context.Context, logger *zap.Logger, id string, _ Collector, input any) (Step, error) {
		spec, ok := input.(S)
		if !ok {
			return nil, fmt.Errorf("invalid step spec for kind %q with id %s: %T", kind, id, input)
		}

		return f(ctx, logger, id, spec)
	}
}

// UnsupportedTypeError is returned when a collector or step kind is not registered.
type UnsupportedTypeError struct {
	Category  string // "collector" or "step"
	Kind      string
	Available []string
}

func (e *UnsupportedTypeError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported %s type %q: no %ss registered", e.Category, e.Kind, e.Category)
	}
	return fmt.Sprintf("unsupported %s type %q (available: %v)", e.Category, e.Kind, e.Available)
}

// Registry maps collector and step kinds to their factories. Factories get a
// logger named after the kind they build.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]CollectorFactory
	steps      map[string]StepFactory
	logger     *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		collectors: make(map[string]CollectorFactory),
		steps:      make(map[string]StepFactory),
		logger:     logger,
	}
}

// RegisterCollector registers factory for kind. Registering the same kind
// twice is a programming error and panics.
func (r *Registry) RegisterCollector(kind string, factory CollectorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collectors[kind]; ok {
		panic(fmt.Sprintf("collector kind %q registered twice", kind))
	}
	r.collectors[kind] = factory
}

// RegisterStep registers factory for kind and panics on duplicates.
func (r *Registry) RegisterStep(kind string, factory StepFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.steps[kind]; ok {
		panic(fmt.Sprintf("step kind %q registered twice", kind))
	}
	r.steps[kind] = factory
}

func (r *Registry) CreateCollector(ctx context.Context, kind string, spec any) (Collector, error) {
	r.mu.RLock()
	factory, ok := r.collectors[kind]
	available := sortedKeys(r.collectors)
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedTypeError{Category: "collector", Kind: kind, Available: available}
	}
	return factory(ctx, r.logger.Named(kind), spec)
}

func (r *Registry) CreateStep(ctx context.Context, kind string, id string, collector Collector, spec any) (Step, error) {
	r.mu.RLock()
	factory, ok := r.steps[kind]
	available := sortedKeys(r.steps)
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedTypeError{Category: "step", Kind: kind, Available: available}
	}
	return factory(ctx, r.logger.Named(kind), id, collector, spec)
}

func (r *Registry) AvailableCollectors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.collectors)
}

func (r *Registry) AvailableSteps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.steps)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
