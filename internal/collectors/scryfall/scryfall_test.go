package scryfall

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
	"github.com/mtgmine/mtgmine/internal/apiclient"
	"github.com/mtgmine/mtgmine/internal/engine"
	"github.com/mtgmine/mtgmine/internal/errs"
	"github.com/mtgmine/mtgmine/internal/table"
)

type route struct {
	status int
	body   string
}

// fakeScryfall serves canned bodies keyed by path and records every raw
// request URI.
type fakeScryfall struct {
	*httptest.Server
	mu       sync.Mutex
	routes   map[string]route
	requests []string
}

func newFakeScryfall(t *testing.T, routes map[string]route) *fakeScryfall {
	t.Helper()
	f := &fakeScryfall{routes: routes}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL.RequestURI())
		f.mu.Unlock()

		key := r.URL.Path
		if page := r.URL.Query().Get("page"); page != "" && page != "1" {
			key += "?page=" + page
		}
		rt, ok := f.routes[key]
		if !ok {
			http.Error(w, "unexpected path "+key, http.StatusTeapot)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if rt.status != 0 {
			w.WriteHeader(rt.status)
		}
		_, _ = w.Write([]byte(rt.body))
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeScryfall) collector(t *testing.T) *Collector {
	t.Helper()
	c, err := NewCollector(apiclient.Config{BaseURL: f.URL}, apiclient.WithHTTPClient(f.Client()))
	require.NoError(t, err)
	return c
}

func (f *fakeScryfall) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

const notFoundBody = `{"object":"error","code":"not_found","status":404,"details":"Your query didn't match any cards."}`

func TestSearchByQuery(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{})
	f.routes["/cards/search"] = route{body: `{"object":"list","total_cards":3,"has_more":true,
		"next_page":"` + f.URL + `/cards/search?format=json&page=2&q=c%3Ared",
		"data":[
			{"id":"a1","name":"Goblin Guide","cmc":1,"released_at":"2009-10-02","rarity":"rare","lang":"en"},
			{"id":"a2","name":"Lightning Bolt","cmc":1,"released_at":"1993-08-05","rarity":"common","lang":"en"}
		]}`}
	f.routes["/cards/search?page=2"] = route{body: `{"object":"list","has_more":false,"data":[
		{"id":"a3","name":"Monastery Swiftspear","cmc":1,"released_at":"2014-09-26","rarity":"uncommon","lang":"en"}
	]}`}

	tbl, err := f.collector(t).SearchByQuery(t.Context(), SearchOptions{
		Query:      "c:red cmc=1",
		Order:      "cmc",
		Simplified: true,
	})
	require.NoError(t, err)

	requests := f.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t,
		"/cards/search?q=c%3Ared%20cmc%3D1&order=cmc&include_extras=false&include_multilingual=false&include_variations=false&page=1&format=json&pretty=false",
		requests[0])
	assert.Equal(t, "/cards/search?format=json&page=2&q=c%3Ared", requests[1], "next_page is followed as given")

	assert.Equal(t, SimplifiedColumns, tbl.Columns())
	assert.Equal(t, []any{"Goblin Guide", "Lightning Bolt", "Monastery Swiftspear"}, tbl.Column("name"))
	assert.Equal(t, time.Date(2009, 10, 2, 0, 0, 0, 0, time.UTC), tbl.Value(0, "released_at"))
	assert.Nil(t, tbl.Value(0, "oracle_text"), "columns absent upstream read as null")
	assert.False(t, tbl.HasColumn("lang"))
}

func TestSearchByQuery_Full(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/search": {body: `{"object":"list","has_more":false,"data":[{"id":"a1","name":"Opt","lang":"en","released_at":"2017-09-29"}]}`},
	})

	tbl, err := f.collector(t).SearchByQuery(t.Context(), SearchOptions{Query: "Opt"})
	require.NoError(t, err)
	assert.True(t, tbl.HasColumn("lang"))
	assert.Equal(t, 1, tbl.Len())
}

func TestSearchByQuery_NoMatches(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/search": {status: http.StatusNotFound, body: notFoundBody},
	})

	_, err := f.collector(t).SearchByQuery(t.Context(), SearchOptions{Query: "name:zzzzzz"})
	require.Error(t, err)

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "name:zzzzzz", notFound.Query)
	assert.False(t, notFound.Ambiguous)
	assert.Equal(t, "Your query didn't match any cards.", notFound.Details)
	assert.Equal(t, 404, errs.StatusCode(err))
}

func TestSearchByQuery_ServerError(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/search": {status: http.StatusInternalServerError, body: `{"object":"error","status":500}`},
	})

	_, err := f.collector(t).SearchByQuery(t.Context(), SearchOptions{Query: "t:goblin"})
	assert.False(t, errs.IsNotFound(err))
	assert.Equal(t, 500, errs.StatusCode(err))
}

func TestSearchByQuery_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts SearchOptions
	}{
		{name: "empty query", opts: SearchOptions{}},
		{name: "blank query", opts: SearchOptions{Query: "  \t "}},
		{name: "unknown order", opts: SearchOptions{Query: "t:elf", Order: "popularity"}},
		{name: "unknown unique", opts: SearchOptions{Query: "t:elf", Unique: "names"}},
		{name: "unknown direction", opts: SearchOptions{Query: "t:elf", Direction: "up"}},
	}

	f := newFakeScryfall(t, nil)
	c := f.collector(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.SearchByQuery(t.Context(), tt.opts)
			assert.ErrorContains(t, err, "invalid search options")
		})
	}
	assert.Empty(t, f.Requests(), "invalid options never reach the network")
}

func TestSearchCards(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/search": {body: `{"object":"list","has_more":false,"data":[{
			"id":"c1","name":"Sheoldred, the Apocalypse","cmc":4,"mana_cost":"{2}{B}{B}",
			"type_line":"Legendary Creature — Phyrexian Praetor","power":"4","toughness":"5",
			"color_identity":["B"],"rarity":"mythic","released_at":"2022-09-09",
			"legalities":{"standard":"not_legal","pioneer":"legal"},
			"prices":{"usd":"79.99","eur":null}
		}]}`},
	})

	cards, err := f.collector(t).SearchCards(t.Context(), SearchOptions{Query: "Sheoldred"})
	require.NoError(t, err)
	require.Len(t, cards, 1)

	card := cards[0]
	assert.Equal(t, "Sheoldred, the Apocalypse", card.Name)
	assert.Equal(t, 4.0, card.CMC)
	assert.Equal(t, "4", lo.FromPtr(card.Power))
	assert.Nil(t, card.OracleText)
	assert.Equal(t, time.Date(2022, 9, 9, 0, 0, 0, 0, time.UTC), card.ReleasedAt.Time)
	assert.True(t, card.IsLegal("pioneer"))
	assert.False(t, card.IsLegal("standard"))
	assert.Nil(t, card.Prices["eur"])
}

func TestSearchByName(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/named": {body: `{"object":"card","id":"o1","name":"Opt","mana_cost":"{U}","cmc":1,"lang":"en","oracle_id":"x"}`},
	})
	c := f.collector(t)

	card, err := c.SearchByName(t.Context(), NamedOptions{Exact: "Opt", Simplified: true})
	require.NoError(t, err)
	assert.Equal(t, table.Record{"id": "o1", "name": "Opt", "mana_cost": "{U}", "cmc": float64(1)}, card,
		"simplified output keeps only the simplified fields present upstream")

	card, err = c.SearchByName(t.Context(), NamedOptions{Fuzzy: "op", Set: "xln"})
	require.NoError(t, err)
	assert.Equal(t, "en", card["lang"])

	assert.Equal(t, []string{
		"/cards/named?exact=Opt&format=json&pretty=false",
		"/cards/named?fuzzy=op&format=json&set=xln&pretty=false",
	}, f.Requests())
}

func TestSearchByName_Errors(t *testing.T) {
	tests := []struct {
		name          string
		opts          NamedOptions
		response      route
		wantAmbiguous bool
		errContains   string
	}{
		{
			name:     "no match",
			opts:     NamedOptions{Exact: "Opt the Great"},
			response: route{status: http.StatusNotFound, body: `{"object":"error","code":"not_found","status":404,"details":"No cards found matching “Opt the Great”"}`},
		},
		{
			name:          "ambiguous",
			opts:          NamedOptions{Fuzzy: "jac"},
			response:      route{status: http.StatusNotFound, body: `{"object":"error","code":"not_found","type":"ambiguous","status":404,"details":"Too many cards match ambiguous name “jac”."}`},
			wantAmbiguous: true,
		},
		{
			name:     "error object with ok status",
			opts:     NamedOptions{Exact: "Opt"},
			response: route{body: `{"object":"error","code":"not_found","status":404,"details":"gone"}`},
		},
		{
			name:        "neither exact nor fuzzy",
			opts:        NamedOptions{},
			errContains: "exactly one of exact or fuzzy must be set",
		},
		{
			name:        "blank fuzzy name",
			opts:        NamedOptions{Fuzzy: "   "},
			errContains: "exactly one of exact or fuzzy must be set",
		},
		{
			name:        "blank exact name",
			opts:        NamedOptions{Exact: "\t"},
			errContains: "exactly one of exact or fuzzy must be set",
		},
		{
			name:        "both exact and fuzzy",
			opts:        NamedOptions{Exact: "Opt", Fuzzy: "opt"},
			errContains: "exactly one of exact or fuzzy must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeScryfall(t, map[string]route{"/cards/named": tt.response})

			_, err := f.collector(t).SearchByName(t.Context(), tt.opts)
			require.Error(t, err)

			if tt.errContains != "" {
				assert.ErrorContains(t, err, tt.errContains)
				assert.Empty(t, f.Requests())
				return
			}

			var notFound *errs.NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.opts.query(), notFound.Query)
			assert.Equal(t, tt.wantAmbiguous, notFound.Ambiguous)
			assert.NotEmpty(t, notFound.Details)
		})
	}
}

func TestAutocomplete(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/autocomplete": {body: `{"object":"catalog","total_values":2,"data":["Thalia, Guardian of Thraben","Thalia's Lancers"]}`},
	})

	names, err := f.collector(t).Autocomplete(t.Context(), "thal")
	require.NoError(t, err)
	assert.Equal(t, []string{"Thalia, Guardian of Thraben", "Thalia's Lancers"}, names)
	assert.Equal(t, []string{"/cards/autocomplete?q=thal"}, f.Requests())
}

func TestSuggestNames(t *testing.T) {
	candidates := []string{"Lightning Bolt", "Lightning Helix", "Counterspell", "Lightning Bolt", "Lightning Strike"}

	got := SuggestNames("lightnin bolt", candidates, 2)
	require.NotEmpty(t, got)
	assert.Equal(t, "Lightning Bolt", got[0])
	assert.LessOrEqual(t, len(got), 2)
	assert.NotContains(t, got, "Counterspell")

	assert.Empty(t, SuggestNames("zzz", candidates, 0))
	assert.Empty(t, SuggestNames("anything", nil, 3))
}

func TestNamedStep_Suggestions(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/named":        {status: http.StatusNotFound, body: notFoundBody},
		"/cards/autocomplete": {body: `{"object":"catalog","data":["Lightning Bolt","Lightning Helix"]}`},
	})

	step := NewNamedStep(f.collector(t), NamedOptions{Exact: "Lightning Bolts"}, nil)
	assert.Equal(t, NamedStepKind, step.Kind())

	_, err := step.Resolve(t.Context())
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.ErrorContains(t, err, "did you mean: Lightning Bolt")
}

func TestSearchStep_Meta(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/search": {body: `{"object":"list","has_more":false,"data":[{"id":"a","name":"Opt"},{"id":"b","name":"Shock"}]}`},
	})

	result, err := NewSearchStep(f.collector(t), SearchOptions{Query: "cmc=1"}).Resolve(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"query": "cmc=1", "rows": "2"}, result.Meta)
}

func TestRegister(t *testing.T) {
	f := newFakeScryfall(t, map[string]route{
		"/cards/named": {body: `{"object":"card","id":"o1","name":"Opt","lang":"en"}`},
	})

	registry := engine.NewRegistry(nil)
	Register(registry)
	assert.Equal(t, []string{CollectorKind}, registry.AvailableCollectors())
	assert.Equal(t, []string{NamedStepKind, SearchStepKind}, registry.AvailableSteps())

	collector, err := registry.CreateCollector(t.Context(), CollectorKind, &v1.ScryfallCollector{
		ClientSpec: v1.ClientSpec{BaseURL: f.URL},
	})
	require.NoError(t, err)
	assert.Equal(t, CollectorKind, collector.Kind())

	step, err := registry.CreateStep(t.Context(), NamedStepKind, "opt", collector, &v1.ScryfallNamedStep{Exact: "Opt"})
	require.NoError(t, err)

	result, err := step.Resolve(t.Context())
	require.NoError(t, err)
	assert.Equal(t, table.Record{"id": "o1", "name": "Opt"}, result.Data, "simplified by default")

	_, err = registry.CreateStep(t.Context(), SearchStepKind, "s", nil, &v1.ScryfallSearchStep{Query: "x"})
	assert.ErrorContains(t, err, "requires a collector")
}

func TestNewCollector_DefaultBaseURL(t *testing.T) {
	c, err := NewCollector(apiclient.Config{})
	require.NoError(t, err)
	assert.Equal(t, "scryfall(api.scryfall.com)", c.Name())
}
