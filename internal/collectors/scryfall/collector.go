// Package scryfall is a client for the Scryfall card database: full-text
// search and single-card lookups, normalized into tables.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/engine"
	"github.com/mtgmine/mtgmine/internal/errs"
)

const (
	CollectorKind  = "scryfall"
	DefaultBaseURL = "https://api.scryfall.com"
)

// SimplifiedColumns are the card fields kept when a caller asks for
// simplified output.
var SimplifiedColumns = []string{
	"id",
	"name",
	"mana_cost",
	"cmc",
	"type_line",
	"power",
	"toughness",
	"colors",
	"color_indicator",
	"color_identity",
	"rarity",
	"oracle_text",
	"keywords",
	"produced_mana",
	"image_uris",
	"flavor_text",
	"card_faces",
	"all_parts",
	"legalities",
	"released_at",
	"set",
	"set_name",
	"set_type",
	"artist",
	"prices",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

type Collector struct {
	client *apiclient.Client
}

// NewCollector builds a Scryfall client. An empty BaseURL means the public API.
func NewCollector(cfg apiclient.Config, opts ...apiclient.Option) (*Collector, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	client, err := apiclient.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scryfall client: %w", err)
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

// errorEnvelope is the body Scryfall sends with every non-2xx status.
type errorEnvelope struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

// mapError turns a 404 into a NotFoundError for query, keeping the upstream
// error as its cause. Other errors are returned as they are.
func mapError(query string, err error) error {
	var upstream *errs.UpstreamError
	if !errors.As(err, &upstream) || upstream.StatusCode != 404 {
		return err
	}

	var envelope errorEnvelope
	_ = json.Unmarshal(upstream.Body, &envelope)

	return &errs.NotFoundError{
		Query:     query,
		Ambiguous: envelope.Type == "ambiguous",
		Details:   envelope.Details,
		Err:       err,
	}
}

// checkEnvelope rejects a 2xx body that still carries an error object.
func checkEnvelope(query string, url string, body any) error {
	obj, ok := body.(map[string]any)
	if !ok || obj["object"] != "error" {
		return nil
	}

	raw, _ := json.Marshal(obj)
	status, _ := obj["status"].(float64)
	return mapError(query, &errs.UpstreamError{URL: url, StatusCode: int(status), Body: raw})
}

func parseReleaseDate(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errs.Formatf("released_at is %T, not a string", v)
	}

	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, &errs.FormatError{Reason: fmt.Sprintf("invalid released_at %q", s), Err: err}
	}
	return day, nil
}

var _ engine.Collector = (*Collector)(nil)
