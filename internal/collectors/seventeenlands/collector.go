// Package seventeenlands is a client for the 17Lands draft statistics
// endpoints. Aggregates come back as tables with stable, descriptive column
// names; single drafts and decks come back as tables plus metadata.
package seventeenlands

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/engine"
	"github.com/mtgmine/mtgmine/internal/errs"
	"github.com/mtgmine/mtgmine/internal/table"
)

const (
	CollectorKind  = "seventeenlands"
	DefaultBaseURL = "https://www.17lands.com"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Collector struct {
	client *apiclient.Client
}

// NewCollector builds a 17Lands client. An empty BaseURL means the public site.
func NewCollector(cfg apiclient.Config, opts ...apiclient.Option) (*Collector, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	client, err := apiclient.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create 17lands client: %w", err)
	}

	return &Collector{client: client}, nil
}

func (c *Collector) Name() string {
	return fmt.Sprintf("%s(%s)", CollectorKind, c.client.BaseURL().Host)
}

func (c *Collector) Kind() string {
	return CollectorKind
}

func (c *Collector) Start(context.Context) error {
	return nil
}

func (c *Collector) Close(context.Context) error {
	return nil
}

// Colors lists the deck color combinations 17Lands tracks.
func (c *Collector) Colors(ctx context.Context) ([]string, error) {
	return c.catalog(ctx, "/data/colors")
}

// Expansions lists the set codes 17Lands has data for.
func (c *Collector) Expansions(ctx context.Context) ([]string, error) {
	return c.catalog(ctx, "/data/expansions")
}

// EventTypes lists the event types (formats) 17Lands has data for.
func (c *Collector) EventTypes(ctx context.Context) ([]string, error) {
	return c.catalog(ctx, "/data/formats")
}

func (c *Collector) catalog(ctx context.Context, path string) ([]string, error) {
	items, err := apiclient.Paginate(ctx, c.client, path, nil)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errs.Formatf("%s entry %d is %T, not a string", path, i, item)
		}
		values = append(values, s)
	}
	return values, nil
}

// list fetches a list endpoint and normalizes it into a table.
func (c *Collector) list(ctx context.Context, path string, params *apiclient.Params) (*table.Table, error) {
	items, err := apiclient.Paginate(ctx, c.client, path, params)
	if err != nil {
		return nil, err
	}

	tbl, err := table.FromJSON(items)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", path, err)
	}
	return tbl, nil
}

func eventTypeOrDefault(eventType string) string {
	if eventType == "" {
		return DefaultEventType
	}
	return eventType
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

func parseTimestamp(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errs.Formatf("timestamp is %T, not a string", v)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, errs.Formatf("unrecognized timestamp %q", s)
}

var _ engine.Collector = (*Collector)(nil)
