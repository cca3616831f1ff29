package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		ctx       func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "user and operation",
			ctx: func() context.Context {
				return WithOperation(WithUser(context.Background(), "ada@example.com"), "swap")
			},
			wantKeys: []string{"user", "op"},
		},
		{
			name: "only user",
			ctx: func() context.Context {
				return WithUser(context.Background(), "ada@example.com")
			},
			wantKeys:  []string{"user"},
			wantEmpty: []string{"op"},
		},
		{
			name:      "background context",
			ctx:       context.Background,
			wantEmpty: []string{"user", "op"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.ctx()).Msg("test")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			for _, key := range tt.wantKeys {
				assert.Contains(t, entry, key)
			}
			for _, key := range tt.wantEmpty {
				assert.NotContains(t, entry, key)
			}
		})
	}
}
