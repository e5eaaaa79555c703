package engine

import (
	"context"
)

// Step is one endpoint call (or local load) producing a Result.
type Step interface {
	Named
	Resolve(ctx context.Context) (Result, error)
}

type StepFunc func(ctx context.Context) (Result, error)

type stepFunction struct {
	name string
	kind string
	fn   StepFunc
}

func (s *stepFunction) Name() string {
	return s.name
}

func (s *stepFunction) Kind() string {
	return s.kind
}

func (s *stepFunction) Resolve(ctx context.Context) (Result, error) {
	return s.fn(ctx)
}

func StepFunction(name string, kind string, fn StepFunc) Step {
	return &stepFunction{name: name, kind: kind, fn: fn}
}

// WrappingStepFunc runs around an inner step, e.g. to time or log it.
type WrappingStepFunc func(ctx context.Context, inner Step) (Result, error)

type wrappingStep struct {
	fn    WrappingStepFunc
	inner Step
}

func (s *wrappingStep) Name() string {
	return s.inner.Name()
}

func (s *wrappingStep) Kind() string {
	return s.inner.Kind()
}

func (s *wrappingStep) Resolve(ctx context.Context) (Result, error) {
	return s.fn(ctx, s.inner)
}

// WrapStep returns a step that keeps inner's name and kind but resolves
// through fn.
func WrapStep(inner Step, fn WrappingStepFunc) Step {
	return &wrappingStep{fn: fn, inner: inner}
}
