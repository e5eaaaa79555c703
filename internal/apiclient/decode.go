package apiclient

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/mtgmine/mtgmine/internal/errs"
)

func newGzipReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// DecodeBody decodes CSV bodies into a list of objects keyed by the header
// row, and everything else as JSON.
func DecodeBody(body []byte, contentType string) (any, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/csv" {
		return decodeCSV(body)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &errs.FormatError{Reason: "failed to parse JSON response", Err: err}
	}
	return data, nil
}

func decodeCSV(body []byte) (any, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &errs.FormatError{Reason: "failed to parse CSV response", Err: err}
	}

	rows := make([]any, 0, len(records))
	if len(records) == 0 {
		return rows, nil
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	for n, record := range records[1:] {
		if len(record) > len(header) {
			return nil, errs.Formatf("CSV row %d has %d fields, header has %d", n+1, len(record), len(header))
		}
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = nil
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
