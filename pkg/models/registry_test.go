package models

import (
	"context"
	"errors"
	"testing"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingProvider struct {
	llm.ProviderFunc
	closed int
	err    error
}

func (p *closingProvider) Close() error {
	p.closed++
	return p.err
}

var definitions = map[string]config.ModelDef{
	"fast":  {Provider: "openai", ModelName: "gpt-3.5-turbo"},
	"smart": {Provider: "anthropic", ModelName: "claude-3-5-sonnet-latest"},
}

func echo() llm.ProviderFunc {
	return func(ctx context.Context, msgs []llm.Message, tools ...any) (llm.Message, error) {
		return llm.NewAssistantMessage("ok"), nil
	}
}

func TestRegistry_GetCachesByAlias(t *testing.T) {
	calls := 0
	r := NewRegistry(definitions, func(ctx context.Context, def config.ModelDef) (llm.Provider, error) {
		calls++
		return echo(), nil
	})

	_, def, err := r.Get(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", def.ModelName)

	_, _, err = r.Get(context.Background(), "fast")
	require.NoError(t, err)
	_, _, err = r.Get(context.Background(), "smart")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"fast", "smart"}, r.ListNames())
}

func TestRegistry_GetErrors(t *testing.T) {
	tests := []struct {
		name    string
		alias   string
		factory Factory
		want    string
	}{
		{
			name:    "unknown alias",
			alias:   "missing",
			factory: func(ctx context.Context, def config.ModelDef) (llm.Provider, error) { return echo(), nil },
			want:    "not found",
		},
		{
			name:    "factory error",
			alias:   "fast",
			factory: func(ctx context.Context, def config.ModelDef) (llm.Provider, error) { return nil, errors.New("no api key") },
			want:    "no api key",
		},
		{
			name:    "nil provider",
			alias:   "fast",
			factory: func(ctx context.Context, def config.ModelDef) (llm.Provider, error) { return nil, nil },
			want:    "nil provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(definitions, tt.factory)
			_, _, err := r.Get(context.Background(), tt.alias)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, r.ListNames())
		})
	}
}

func TestRegistry_Close(t *testing.T) {
	fast := &closingProvider{ProviderFunc: echo()}
	smart := &closingProvider{ProviderFunc: echo(), err: errors.New("close failed")}
	byModel := map[string]llm.Provider{"gpt-3.5-turbo": fast, "claude-3-5-sonnet-latest": smart}

	r := NewRegistry(definitions, func(ctx context.Context, def config.ModelDef) (llm.Provider, error) {
		return byModel[def.ModelName], nil
	})
	for _, alias := range []string{"fast", "smart"} {
		_, _, err := r.Get(context.Background(), alias)
		require.NoError(t, err)
	}

	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smart")
	assert.Equal(t, 1, fast.closed)
	assert.Equal(t, 1, smart.closed)
	assert.Empty(t, r.ListNames())
}
