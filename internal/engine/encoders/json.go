package encoders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mtgmine/mtgmine/internal/engine"
)

// JSONEncoder writes a result's data as JSON: tables become a list of row
// objects.
type JSONEncoder struct {
	indent string
}

func NewJSONEncoder(indent string) engine.Encoder {
	return &JSONEncoder{
		indent: indent,
	}
}

func (e *JSONEncoder) EncodeResult(ctx context.Context, result engine.Result) (io.Reader, error) {
	var buff bytes.Buffer
	encoder := json.NewEncoder(&buff)
	encoder.SetEscapeHTML(false)
	if e.indent != "" {
		encoder.SetIndent("", e.indent)
	}

	if err := encoder.Encode(result.Data); err != nil {
		return nil, fmt.Errorf("failed to encode result as JSON: %w", err)
	}

	return &buff, nil
}

func (e *JSONEncoder) FileExtension() string {
	return "json"
}
