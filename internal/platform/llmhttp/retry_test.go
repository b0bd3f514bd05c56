package llmhttp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "transient failure",
			err:  fmt.Errorf("%w: response error 429: too many requests", generation.ErrTransientFailure),
			want: true,
		},
		{
			name: "truncated JSON completion",
			err:  fmt.Errorf("%w: response is not valid JSON: unexpected end of JSON input", generation.ErrGenerationFailed),
			want: true,
		},
		{
			name: "permanent API error",
			err:  fmt.Errorf("%w: response error 400: bad request", generation.ErrGenerationFailed),
			want: false,
		},
		{
			name: "malformed cards payload",
			err:  fmt.Errorf("%w: card 0: answer cannot be empty", generation.ErrInvalidResponse),
			want: false,
		},
		{
			name: "untagged error",
			err:  errors.New("something else"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
