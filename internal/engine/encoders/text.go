package encoders

import (
	"bytes"
	"context"
	"fmt"
	"io"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mtgmine/mtgmine/internal/engine"
)

const DefaultMaxCellWidth = 48

// TextEncoder renders a result as a human readable box table, titled with
// the step ID.
type TextEncoder struct {
	maxCellWidth int
}

// NewTextEncoder returns a text table encoder. Cells wider than maxCellWidth
// are trimmed; zero selects DefaultMaxCellWidth and a negative value disables
// trimming.
func NewTextEncoder(maxCellWidth int) engine.Encoder {
	if maxCellWidth == 0 {
		maxCellWidth = DefaultMaxCellWidth
	}
	return &TextEncoder{maxCellWidth: maxCellWidth}
}

func (e *TextEncoder) EncodeResult(ctx context.Context, result engine.Result) (io.Reader, error) {
	tbl, err := result.Table()
	if err != nil {
		return nil, fmt.Errorf("failed to convert result %s to a table: %w", result.ID, err)
	}

	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleRounded)
	if result.ID != "" {
		tw.SetTitle(result.ID)
	}

	columns := tbl.Columns()
	header := make(prettytable.Row, len(columns))
	configs := make([]prettytable.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col
		configs[i] = prettytable.ColumnConfig{Number: i + 1}
		if e.maxCellWidth > 0 {
			configs[i].WidthMax = e.maxCellWidth
			configs[i].WidthMaxEnforcer = text.Trim
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, record := range tbl.Records() {
		row := make(prettytable.Row, len(columns))
		for i, col := range columns {
			row[i] = formatCell(record[col])
		}
		tw.AppendRow(row)
	}
	tw.AppendFooter(prettytable.Row{fmt.Sprintf("%d rows", tbl.Len())})

	var buff bytes.Buffer
	buff.WriteString(tw.Render())
	buff.WriteString("\n")
	return &buff, nil
}

func (e *TextEncoder) FileExtension() string {
	return "txt"
}
