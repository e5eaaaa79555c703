package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgmine/mtgmine/internal/table"
)

func constStep(id string, data any) Step {
	return StepFunction(id, "const", func(context.Context) (Result, error) {
		return Result{Data: data}, nil
	})
}

func TestPipeline_RunKeepsStepOrder(t *testing.T) {
	p := NewPipeline("ratings")
	for _, id := range []string{"colors", "cards", "trophies", "a"} {
		require.NoError(t, p.AddStep(id, constStep(id, id+"-data")))
	}

	results, err := p.Run(t.Context())
	require.NoError(t, err)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
		assert.Equal(t, r.ID+"-data", r.Data)
	}
	assert.Equal(t, []string{"colors", "cards", "trophies", "a"}, ids)
}

func TestPipeline_FailingStepAbortsRun(t *testing.T) {
	p := NewPipeline("ratings")
	require.NoError(t, p.AddStep("first", constStep("first", 1)))
	require.NoError(t, p.AddStep("broken", StepFunction("broken", "const", func(context.Context) (Result, error) {
		return Result{}, errors.New("upstream said no")
	})))
	require.NoError(t, p.AddStep("never", StepFunction("never", "const", func(context.Context) (Result, error) {
		t.Fatal("steps after a failure must not run")
		return Result{}, nil
	})))

	results, err := p.Run(t.Context())
	assert.Nil(t, results)
	assert.ErrorContains(t, err, "failed to resolve step 'broken'")
	assert.ErrorContains(t, err, "upstream said no")
}

func TestPipeline_CancelledContext(t *testing.T) {
	p := NewPipeline("ratings")
	require.NoError(t, p.AddStep("first", constStep("first", 1)))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_DuplicateIDs(t *testing.T) {
	p := NewPipeline("dup")
	require.NoError(t, p.AddStep("s", constStep("s", nil)))
	assert.ErrorContains(t, p.AddStep("s", constStep("s", nil)), "step s already exists")

	require.NoError(t, p.AddCollector("c", &fakeCollector{}))
	assert.ErrorContains(t, p.AddCollector("c", &fakeCollector{}), "collector c already exists")
}

func TestPipeline_StartAndClose(t *testing.T) {
	scryfall := &fakeCollector{name: "scryfall"}
	lands := &fakeCollector{name: "17lands", failOn: "close"}

	p := NewPipeline("lifecycle")
	require.NoError(t, p.AddCollector("scryfall", scryfall))
	require.NoError(t, p.AddCollector("lands", lands))

	got, ok := p.GetCollector("lands")
	require.True(t, ok)
	assert.Same(t, lands, got)

	require.NoError(t, p.Start(t.Context()))
	assert.True(t, scryfall.started)
	assert.True(t, lands.started)

	err := p.Close(t.Context())
	assert.ErrorContains(t, err, "failed to close collector 'lands'")
	assert.True(t, scryfall.closed, "every collector is closed even when one fails")
}

func TestPipeline_StartFailure(t *testing.T) {
	p := NewPipeline("lifecycle")
	require.NoError(t, p.AddCollector("bad", &fakeCollector{name: "bad", failOn: "start"}))
	assert.ErrorContains(t, p.Start(t.Context()), "failed to start collector 'bad' (bad)")
}

func TestWrapStep(t *testing.T) {
	var calls []string
	inner := StepFunction("inner", "scryfall_search", func(context.Context) (Result, error) {
		calls = append(calls, "inner")
		return Result{Data: 1}, nil
	})

	wrapped := WrapStep(inner, func(ctx context.Context, s Step) (Result, error) {
		calls = append(calls, "before")
		r, err := s.Resolve(ctx)
		calls = append(calls, "after")
		return r, err
	})

	assert.Equal(t, "inner", wrapped.Name())
	assert.Equal(t, "scryfall_search", wrapped.Kind())

	_, err := wrapped.Resolve(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "inner", "after"}, calls)
}

func TestResult_Table(t *testing.T) {
	tbl := table.New("name")
	tbl.Append(table.Record{"name": "Opt"})

	tests := []struct {
		name     string
		data     any
		columns  []string
		rows     int
		expected []any
	}{
		{name: "table passes through", data: tbl, columns: []string{"name"}, rows: 1},
		{name: "record becomes one row", data: table.Record{"name": "Shock"}, columns: []string{"name"}, rows: 1},
		{name: "string list becomes value column", data: []string{"W", "U", "B"}, columns: []string{"value"}, rows: 3, expected: []any{"W", "U", "B"}},
		{name: "decoded json", data: []any{map[string]any{"name": "Opt"}, map[string]any{"name": "Shock"}}, columns: []string{"name"}, rows: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Result{Data: tt.data}.Table()
			require.NoError(t, err)
			assert.Equal(t, tt.columns, got.Columns())
			assert.Equal(t, tt.rows, got.Len())
			if tt.expected != nil {
				assert.Equal(t, tt.expected, got.Column("value"))
			}
		})
	}

	_, err := Result{Data: 42}.Table()
	assert.Error(t, err)
}
