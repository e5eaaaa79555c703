package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError_UnwrapsUpstream(t *testing.T) {
	upstream := &UpstreamError{URL: "https://api.example.com/cards/named", StatusCode: 404, Body: []byte(`{"details":"not found"}`)}
	err := fmt.Errorf("failed to look up card: %w", &NotFoundError{Query: "jac bel", Err: upstream})

	assert.True(t, IsNotFound(err))
	assert.Equal(t, 404, StatusCode(err))

	var up *UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, `{"details":"not found"}`, string(up.Body))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "network",
			err:      &NetworkError{URL: "https://x/y", Err: errors.New("connection refused")},
			contains: []string{"network error", "https://x/y", "connection refused"},
		},
		{
			name:     "upstream with body",
			err:      &UpstreamError{URL: "https://x/y", StatusCode: 500, Body: []byte("boom")},
			contains: []string{"500", "boom"},
		},
		{
			name:     "upstream without body",
			err:      &UpstreamError{URL: "https://x/y", StatusCode: 503},
			contains: []string{"503"},
		},
		{
			name:     "not found",
			err:      &NotFoundError{Query: "black lotus"},
			contains: []string{"no match", "black lotus"},
		},
		{
			name:     "ambiguous",
			err:      &NotFoundError{Query: "jace", Ambiguous: true, Details: "too many cards match"},
			contains: []string{"ambiguous match", "jace", "too many cards match"},
		},
		{
			name:     "format",
			err:      Formatf("element %d is %s, not an object", 2, "string"),
			contains: []string{"unexpected response format", "element 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.ErrorContains(t, tt.err, s)
			}
		})
	}
}

func TestStatusCode_NoUpstream(t *testing.T) {
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
	assert.False(t, IsNotFound(errors.New("plain")))
}
