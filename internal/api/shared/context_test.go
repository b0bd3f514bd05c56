package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	t.Run("set and get round trip", func(t *testing.T) {
		ctx := SetTraceID(context.Background())

		traceID := GetTraceID(ctx)
		require.NotEmpty(t, traceID)
		assert.Len(t, traceID, TraceIDLength*2)

		_, err := hex.DecodeString(traceID)
		assert.NoError(t, err, "trace IDs are hex encoded")
	})

	t.Run("missing trace ID reads as empty", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("ids are unique per request", func(t *testing.T) {
		first := GetTraceID(SetTraceID(context.Background()))
		second := GetTraceID(SetTraceID(context.Background()))
		assert.NotEqual(t, first, second)
	})

	t.Run("fallback keeps the format", func(t *testing.T) {
		fallback := generateFallbackTraceID()
		assert.Len(t, fallback, TraceIDLength*2)

		_, err := hex.DecodeString(fallback)
		assert.NoError(t, err)
	})
}
