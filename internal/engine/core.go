package engine

import "context"

type Named interface {
	Name() string
	Kind() string
}

type Closer interface {
	Close(context.Context) error
}

// Collector is a configured API client (Scryfall, 17Lands) shared by the
// steps that call its endpoints. Start runs before the first step and Close
// after the last one.
type Collector interface {
	Named
	Closer
	Start(context.Context) error
}

const (
	// ISO8601Basic is a URL-safe timestamp format without colons, used for
	// S3 keys and archive names.
	ISO8601Basic = "20060102T150405Z"
)
