package registry_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.FunctionDispatcher = (*registry.Registry)(nil)

func TestRegistry_Execute(t *testing.T) {
	r := registry.NewRegistry()
	var got []string
	require.NoError(t, r.Register(domain.FuncGiveItem, func(ctx context.Context, p string) error {
		got = append(got, "give:"+p)
		return nil
	}))
	require.NoError(t, r.RegisterCustom("OpenShop", func(ctx context.Context, p string) error {
		got = append(got, "shop:"+p)
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, r.Execute(ctx, domain.FunctionCall{Function: domain.FuncGiveItem, Parameter: "sword"}))
	require.NoError(t, r.Execute(ctx, domain.FunctionCall{Function: domain.FuncCustom, Name: "OpenShop", Parameter: "armory"}))
	assert.Equal(t, []string{"give:sword", "shop:armory"}, got)
}

func TestRegistry_Unmapped(t *testing.T) {
	var buf bytes.Buffer
	r := registry.NewRegistry(registry.WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug)))
	ctx := context.Background()

	err := r.Execute(ctx, domain.FunctionCall{Function: domain.FuncSpawnNPC, Parameter: "guard"})
	assert.ErrorIs(t, err, domain.ErrUnmappedFunction)

	err = r.Execute(ctx, domain.FunctionCall{Function: domain.FuncCustom, Name: "Dance"})
	assert.NoError(t, err, "unmapped custom is a no-op")
	assert.Contains(t, buf.String(), "Dance")
}

func TestRegistry_Missing(t *testing.T) {
	r := registry.NewRegistry()
	assert.Len(t, r.Missing(), len(domain.ExternalFunctions)-1)

	noop := func(context.Context, string) error { return nil }
	for _, fn := range domain.ExternalFunctions {
		if fn == domain.FuncCustom {
			assert.Error(t, r.Register(fn, noop))
			continue
		}
		require.NoError(t, r.Register(fn, noop))
	}
	assert.Empty(t, r.Missing())
	assert.Error(t, r.Register("Juggle", noop))
	assert.Error(t, r.RegisterCustom("", noop))
}

func TestRegistry_HandlerError(t *testing.T) {
	r := registry.NewRegistry()
	boom := errors.New("inventory full")
	require.NoError(t, r.Register(domain.FuncGiveItem, func(context.Context, string) error { return boom }))

	err := r.Execute(context.Background(), domain.FunctionCall{Function: domain.FuncGiveItem, Parameter: "shield"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "GiveItem[shield]")
}
