package table

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgmine/mtgmine/internal/errs"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		columns   []string
		rows      int
		expectErr string
	}{
		{
			name:    "single object",
			input:   `{"name": "Llanowar Elves", "cmc": 1}`,
			columns: []string{"cmc", "name"},
			rows:    1,
		},
		{
			name:    "list of objects",
			input:   `[{"name": "a"}, {"name": "b"}]`,
			columns: []string{"name"},
			rows:    2,
		},
		{
			name:    "empty list",
			input:   `[]`,
			columns: []string{},
			rows:    0,
		},
		{
			name:      "list with a string element",
			input:     `[{"name": "a"}, "b"]`,
			expectErr: "element 1 is a string",
		},
		{
			name:      "list with a nested list",
			input:     `[[{"name": "a"}]]`,
			expectErr: "element 0 is a list",
		},
		{
			name:      "scalar",
			input:     `42`,
			expectErr: "got a number",
		},
		{
			name:      "null",
			input:     `null`,
			expectErr: "got null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := FromJSON(decode(t, tt.input))
			if tt.expectErr != "" {
				require.Error(t, err)
				var formatErr *errs.FormatError
				assert.True(t, errors.As(err, &formatErr), "expected a FormatError, got %T", err)
				assert.ErrorContains(t, err, tt.expectErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.rows, tbl.Len())
			if len(tt.columns) == 0 {
				assert.Empty(t, tbl.Columns())
			} else {
				assert.Equal(t, tt.columns, tbl.Columns())
			}
		})
	}
}

func TestFromJSON_MissingFieldIsNull(t *testing.T) {
	tbl, err := FromJSON(decode(t, `[
		{"name": "Shock", "power": null, "rarity": "common"},
		{"name": "Grizzly Bears", "rarity": "common"},
		{"name": "Serra Angel", "power": "4", "rarity": "uncommon"}
	]`))
	require.NoError(t, err)

	require.Equal(t, 3, tbl.Len())
	assert.True(t, tbl.HasColumn("power"))
	assert.Nil(t, tbl.Value(1, "power"))
	assert.Contains(t, tbl.Row(1), "power", "missing fields are materialized as the null marker")
	assert.Equal(t, "4", tbl.Value(2, "power"))
	assert.Equal(t, []any{"Shock", "Grizzly Bears", "Serra Angel"}, tbl.Column("name"))
}

func TestFromJSON_NewColumnBackfillsEarlierRows(t *testing.T) {
	tbl, err := FromJSON(decode(t, `[{"name": "a"}, {"name": "b", "loyalty": "3"}]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "loyalty"}, tbl.Columns())
	assert.Contains(t, tbl.Row(0), "loyalty")
	assert.Nil(t, tbl.Value(0, "loyalty"))
}

func TestFromJSON_ColumnOrder(t *testing.T) {
	tbl, err := FromJSON(decode(t, `[
		{"name": "Opt", "cmc": 1, "rarity": "common"},
		{"name": "Shock", "artist": "Jon Foster", "set": "m19"}
	]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"cmc", "name", "rarity", "artist", "set"}, tbl.Columns(),
		"earlier records place their columns first, each record's new fields sorted")
}

func TestFromJSON_NestedValuesAreOpaque(t *testing.T) {
	tbl, err := FromJSON(decode(t, `{
		"name": "Fire // Ice",
		"legalities": {"modern": "legal", "standard": "not_legal"},
		"card_faces": [{"name": "Fire"}, {"name": "Ice"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"card_faces", "legalities", "name"}, tbl.Columns())
	assert.Equal(t, map[string]any{"modern": "legal", "standard": "not_legal"}, tbl.Value(0, "legalities"))
	faces, ok := tbl.Value(0, "card_faces").([]any)
	require.True(t, ok)
	assert.Len(t, faces, 2)
}

func TestSelect(t *testing.T) {
	tbl := FromRecords([]Record{
		{"id": "1", "name": "a", "extra": true},
		{"id": "2", "name": "b"},
	})

	selected := tbl.Select("name", "id", "flavor_text")

	assert.Equal(t, []string{"name", "id", "flavor_text"}, selected.Columns())
	assert.Equal(t, 2, selected.Len())
	assert.NotContains(t, selected.Row(0), "extra")
	assert.Nil(t, selected.Value(0, "flavor_text"))
	assert.True(t, tbl.HasColumn("extra"), "select must not alter the source")
}

func TestRename(t *testing.T) {
	tbl := FromRecords([]Record{{"avg_pick": 2.5, "name": "a"}})

	renamed := tbl.Rename(map[string]string{"avg_pick": "avg_taken_at"})

	assert.Equal(t, []string{"avg_taken_at", "name"}, renamed.Columns())
	assert.Equal(t, 2.5, renamed.Value(0, "avg_taken_at"))
	assert.False(t, renamed.HasColumn("avg_pick"))
}

func TestRename_TargetAlreadyPresent(t *testing.T) {
	tbl := FromRecords([]Record{{"aggregate_id": "A", "draft_id": "B"}})

	renamed := tbl.Rename(map[string]string{"aggregate_id": "draft_id"})

	assert.Equal(t, []string{"aggregate_id", "draft_id"}, renamed.Columns())
	assert.Equal(t, Record{"aggregate_id": "A", "draft_id": "B"}, renamed.Row(0))
}

func TestRename_TwoSourcesOneTarget(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append(Record{"a": 1, "b": 2})

	renamed := tbl.Rename(map[string]string{"a": "c", "b": "c"})

	assert.Equal(t, []string{"c", "b"}, renamed.Columns())
	assert.Equal(t, Record{"c": 1, "b": 2}, renamed.Row(0))
}

func TestApply(t *testing.T) {
	tbl := FromRecords([]Record{{"name": "a"}, {"name": nil}, {"name": "c"}})

	upper, err := tbl.Apply("name", func(v any) (any, error) {
		return strings.ToUpper(v.(string)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"A", nil, "C"}, upper.Column("name"))
	assert.Equal(t, []any{"a", nil, "c"}, tbl.Column("name"))

	_, err = tbl.Apply("name", func(v any) (any, error) {
		return nil, errors.New("bad value")
	})
	assert.ErrorContains(t, err, "row 0, column name")
}

func TestDropDuplicates(t *testing.T) {
	tbl := FromRecords([]Record{
		{"date": "2022-09-01", "name": "a"},
		{"date": "2022-09-01", "name": "a"},
		{"date": "2022-09-02", "name": "a"},
	})

	deduped := tbl.DropDuplicates()

	assert.Equal(t, 2, deduped.Len())
	assert.Equal(t, []any{"2022-09-01", "2022-09-02"}, deduped.Column("date"))
}

func TestConcat(t *testing.T) {
	first := FromRecords([]Record{{"name": "a"}})
	second := FromRecords([]Record{{"name": "b", "cmc": 2.0}})

	all := first.Concat(second)

	assert.Equal(t, []any{"a", "b"}, all.Column("name"))
	assert.Equal(t, []string{"name", "cmc"}, all.Columns())
	assert.False(t, first.HasColumn("cmc"))
	assert.NotContains(t, first.Row(0), "cmc")
}

func TestMarshalJSON(t *testing.T) {
	tbl := FromRecords([]Record{{"name": "a"}, {"cmc": 1.0}})

	data, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"a","cmc":null},{"name":null,"cmc":1}]`, string(data))

	empty, err := json.Marshal(New("name"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}
