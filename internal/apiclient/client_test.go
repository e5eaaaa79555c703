package apiclient

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgmine/mtgmine/internal/errs"
)

type getTest struct {
	name               string
	path               string
	params             *Params
	headers            map[string]string
	response           string
	responseStatusCode int    // defaults to 200
	contentType        string // defaults to "application/json"
	expected           any    // if set, asserts result equals this
	expectErr          string // if set, asserts error contains this
	validateErr        func(t *testing.T, err error)
	validateReq        func(t *testing.T, req *http.Request)
}

func runGetTests(t *testing.T, tests []getTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statusCode := tt.responseStatusCode
			if statusCode == 0 {
				statusCode = http.StatusOK
			}
			contentType := tt.contentType
			if contentType == "" {
				contentType = "application/json"
			}

			var capturedReq *http.Request
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedReq = r
				w.Header().Set("Content-Type", contentType)
				w.WriteHeader(statusCode)
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client, err := New(Config{
				BaseURL: server.URL,
				Headers: tt.headers,
			}, WithHTTPClient(server.Client()))
			require.NoError(t, err)

			result, err := client.Get(t.Context(), tt.path, tt.params)

			if tt.validateReq != nil {
				tt.validateReq(t, capturedReq)
			}

			if tt.expectErr != "" || tt.validateErr != nil {
				require.Error(t, err)
				if tt.expectErr != "" {
					assert.Contains(t, err.Error(), tt.expectErr)
				}
				if tt.validateErr != nil {
					tt.validateErr(t, err)
				}
				return
			}

			require.NoError(t, err)
			if tt.expected != nil {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("path handling", func(t *testing.T) {
		runGetTests(t, []getTest{
			{
				name:     "simple path",
				path:     "/cards/search",
				response: `{"object": "list"}`,
				expected: map[string]any{"object": "list"},
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, "/cards/search", req.URL.Path)
				},
			},
			{
				name:     "path without leading slash",
				path:     "data/colors",
				response: `["W", "U"]`,
				expected: []any{"W", "U"},
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, "/data/colors", req.URL.Path)
				},
			},
		})
	})

	t.Run("request building", func(t *testing.T) {
		runGetTests(t, []getTest{
			{
				name:     "default headers",
				path:     "/cards/named",
				response: `{}`,
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, UserAgent, req.Header.Get("User-Agent"))
					assert.Contains(t, req.Header.Get("Accept"), "application/json")
				},
			},
			{
				name:     "custom headers override defaults",
				path:     "/cards/named",
				headers:  map[string]string{"User-Agent": "notebook/1.0", "X-Custom": "v"},
				response: `{}`,
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, "notebook/1.0", req.Header.Get("User-Agent"))
					assert.Equal(t, "v", req.Header.Get("X-Custom"))
				},
			},
			{
				name:     "ordered query params",
				path:     "/cards/search",
				params:   NewParams().Set("q", "c:red pow:3").Set("order", "cmc").Set("page", 1),
				response: `{}`,
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, "q=c%3Ared%20pow%3A3&order=cmc&page=1", req.URL.RawQuery)
					assert.Equal(t, "c:red pow:3", req.URL.Query().Get("q"))
				},
			},
			{
				name:     "empty optional params are dropped",
				path:     "/cards/search",
				params:   NewParams().Set("q", "t:goblin").Set("unique", "").Set("dir", nil),
				response: `{}`,
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, "q=t%3Agoblin", req.URL.RawQuery)
				},
			},
		})
	})

	t.Run("response decoding", func(t *testing.T) {
		runGetTests(t, []getTest{
			{
				name:     "json object",
				path:     "/x",
				response: `{"name": "Shock", "cmc": 1}`,
				expected: map[string]any{"name": "Shock", "cmc": float64(1)},
			},
			{
				name:        "csv",
				path:        "/x",
				contentType: "text/csv; charset=utf-8",
				response:    "name,wins\nShock,10\nOpt,3\n",
				expected: []any{
					map[string]any{"name": "Shock", "wins": "10"},
					map[string]any{"name": "Opt", "wins": "3"},
				},
			},
			{
				name:      "invalid json",
				path:      "/x",
				response:  "not valid json",
				expectErr: "failed to parse JSON",
				validateErr: func(t *testing.T, err error) {
					var formatErr *errs.FormatError
					assert.True(t, errors.As(err, &formatErr))
				},
			},
		})
	})

	t.Run("error handling", func(t *testing.T) {
		runGetTests(t, []getTest{
			{
				name:               "404 carries status and body",
				path:               "/cards/named",
				response:           `{"details":"not found"}`,
				responseStatusCode: http.StatusNotFound,
				expectErr:          "404",
				validateErr: func(t *testing.T, err error) {
					var upstream *errs.UpstreamError
					require.True(t, errors.As(err, &upstream))
					assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
					assert.JSONEq(t, `{"details":"not found"}`, string(upstream.Body))
				},
			},
			{
				name:               "500 internal server error",
				path:               "/x",
				response:           "Internal Server Error",
				responseStatusCode: http.StatusInternalServerError,
				expectErr:          "500",
			},
			{
				name:               "401 unauthorized",
				path:               "/x",
				response:           "Unauthorized",
				responseStatusCode: http.StatusUnauthorized,
				expectErr:          "401",
			},
		})
	})
}

func TestClient_HeaderOverrideIgnoresCase(t *testing.T) {
	var agents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := New(Config{
		BaseURL: server.URL,
		Headers: map[string]string{"user-agent": "custom/1", "accept": "application/json"},
	}, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"User-Agent":      "custom/1",
		"Accept":          "application/json",
		"Accept-Encoding": "gzip",
	}, client.headers)

	for range 20 {
		_, err := client.Get(t.Context(), "/cards/random", nil)
		require.NoError(t, err)
	}
	assert.Len(t, agents, 20)
	for _, agent := range agents {
		assert.Equal(t, "custom/1", agent)
	}
}

func TestClient_GzipBody(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(`{"object": "card"}`))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL}, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	result, err := client.Get(t.Context(), "/cards/x", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"object": "card"}, result)
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := New(Config{BaseURL: baseURL})
	require.NoError(t, err)

	_, err = client.Get(t.Context(), "/cards/search", nil)
	require.Error(t, err)

	var netErr *errs.NetworkError
	assert.True(t, errors.As(err, &netErr), "expected a NetworkError, got %T", err)
}

func TestClient_Auth(t *testing.T) {
	tests := []struct {
		name     string
		auth     *AuthConfig
		expected string
	}{
		{name: "bearer", auth: &AuthConfig{Bearer: "token"}, expected: "Bearer token"},
		{name: "basic", auth: &AuthConfig{Basic: &BasicAuthConfig{Username: "u", Password: "p"}}, expected: "Basic dTpw"},
		{name: "basic pre-encoded", auth: &AuthConfig{Basic: &BasicAuthConfig{Encoded: "abc"}}, expected: "Basic abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			client, err := New(Config{BaseURL: server.URL, Auth: tt.auth}, WithHTTPClient(server.Client()))
			require.NoError(t, err)

			_, err = client.Get(t.Context(), "/", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		expectErr string
	}{
		{name: "missing base url", cfg: Config{}, expectErr: "base_url is required"},
		{name: "bad scheme", cfg: Config{BaseURL: "ftp://example.com"}, expectErr: "http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorContains(t, err, tt.expectErr)
		})
	}
}

func TestClient_BasePathPrefix(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL + "/proxy/scryfall"}, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = client.Get(t.Context(), "/cards/search", nil)
	require.NoError(t, err)
	assert.Equal(t, "/proxy/scryfall/cards/search", path)
}
