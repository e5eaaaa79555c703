package encoders

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mtgmine/mtgmine/internal/engine"
)

// CSVEncoder writes a result as CSV with a header row of column names.
type CSVEncoder struct {
	comma rune
}

// NewCSVEncoder returns a CSV encoder using delimiter, or a comma when
// delimiter is zero.
func NewCSVEncoder(delimiter rune) engine.Encoder {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVEncoder{comma: delimiter}
}

func (e *CSVEncoder) EncodeResult(ctx context.Context, result engine.Result) (io.Reader, error) {
	tbl, err := result.Table()
	if err != nil {
		return nil, fmt.Errorf("failed to convert result %s to a table: %w", result.ID, err)
	}

	var buff bytes.Buffer
	w := csv.NewWriter(&buff)
	w.Comma = e.comma

	columns := tbl.Columns()
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range tbl.Records() {
		for i, col := range columns {
			record[i] = formatCell(row[col])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return &buff, nil
}

func (e *CSVEncoder) FileExtension() string {
	return "csv"
}
