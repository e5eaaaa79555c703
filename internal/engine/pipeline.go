package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StepEntry holds a step with its ID for ordered execution.
type StepEntry struct {
	ID   string
	Step Step
}

type collectorEntry struct {
	id        string
	collector Collector
}

// Pipeline runs its steps one after another, in declaration order, against
// the collectors they were built with.
type Pipeline struct {
	name       string
	date       time.Time
	collectors []collectorEntry
	steps      []StepEntry
}

func NewPipeline(name string) *Pipeline {
	return &Pipeline{
		name: name,
		date: time.Now().UTC(),
	}
}

func (p *Pipeline) Name() string {
	return p.name
}

func (p *Pipeline) AddCollector(id string, collector Collector) error {
	if _, ok := p.GetCollector(id); ok {
		return fmt.Errorf("collector %s already exists", id)
	}

	p.collectors = append(p.collectors, collectorEntry{id: id, collector: collector})
	return nil
}

func (p *Pipeline) AddStep(id string, step Step) error {
	for _, entry := range p.steps {
		if entry.ID == id {
			return fmt.Errorf("step %s already exists", id)
		}
	}

	p.steps = append(p.steps, StepEntry{ID: id, Step: step})
	return nil
}

func (p *Pipeline) Date() time.Time {
	return p.date
}

func (p *Pipeline) Steps() []StepEntry {
	return p.steps
}

func (p *Pipeline) GetCollector(id string) (Collector, bool) {
	for _, entry := range p.collectors {
		if entry.id == id {
			return entry.collector, true
		}
	}
	return nil, false
}

// Start starts every collector in the order they were added.
func (p *Pipeline) Start(ctx context.Context) error {
	for _, entry := range p.collectors {
		if err := entry.collector.Start(ctx); err != nil {
			return fmt.Errorf("failed to start collector '%s' (%s): %w", entry.id, entry.collector.Name(), err)
		}
	}
	return nil
}

// Close closes every collector, joining the errors.
func (p *Pipeline) Close(ctx context.Context) error {
	var errs error
	for _, entry := range p.collectors {
		if err := entry.collector.Close(ctx); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to close collector '%s': %w", entry.id, err))
		}
	}
	return errs
}

// Run resolves every step and returns their results in step order. The
// first failing step aborts the run and no results are returned.
func (p *Pipeline) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(p.steps))

	for _, entry := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled while running pipeline at step '%s': %w", entry.ID, err)
		}

		result, err := entry.Step.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve step '%s': %w", entry.ID, err)
		}

		result.ID = entry.ID
		results = append(results, result)
	}

	return results, nil
}
