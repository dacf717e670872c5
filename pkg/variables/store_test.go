package variables_test

import (
	"testing"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetAfterRegisterReturnsDefault(t *testing.T) {
	defaults := map[string]domain.Value{
		"HasKey":  domain.BoolValue(true),
		"Gold":    domain.IntValue(10),
		"Speed":   domain.FloatValue(1.25),
		"Faction": domain.StringValue("rebels"),
	}

	store := variables.NewStore()
	for name, v := range defaults {
		require.NoError(t, store.Register(name, v.Type(), v, ""))
	}
	for name, want := range defaults {
		got, err := store.Get(name)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%s: got %v want %v", name, got, want)
	}
}

func TestStore_RegisterDuplicate(t *testing.T) {
	store := variables.NewStore()
	require.NoError(t, store.Register("Gold", domain.TypeInt, domain.IntValue(0), ""))

	err := store.Register("Gold", domain.TypeInt, domain.IntValue(5), "")
	assert.ErrorIs(t, err, domain.ErrDuplicateVariable)

	v, _ := store.Get("Gold")
	assert.True(t, v.Equal(domain.IntValue(0)), "duplicate register must not touch the original")
}

func TestStore_RegisterDefaultTypeMismatch(t *testing.T) {
	store := variables.NewStore()
	err := store.Register("Gold", domain.TypeInt, domain.StringValue("0"), "")
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
	assert.False(t, store.Has("Gold"))
}

func TestStore_SetRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		def  domain.Value
		next domain.Value
	}{
		{"flag", domain.BoolValue(false), domain.BoolValue(true)},
		{"count", domain.IntValue(0), domain.IntValue(-12)},
		{"ratio", domain.FloatValue(0), domain.FloatValue(0.1)},
		{"label", domain.StringValue(""), domain.StringValue("ünïcode")},
	}

	store := variables.NewStore()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.Register(tt.name, tt.def.Type(), tt.def, ""))
			require.NoError(t, store.Set(tt.name, tt.next))

			got, err := store.Get(tt.name)
			require.NoError(t, err)
			assert.True(t, tt.next.Equal(got))

			decl, err := store.Variable(tt.name)
			require.NoError(t, err)
			assert.True(t, tt.def.Equal(decl.Default), "Set must not change the default")
		})
	}
}

func TestStore_Errors(t *testing.T) {
	store := variables.NewStore()
	require.NoError(t, store.Register("Gold", domain.TypeInt, domain.IntValue(0), ""))

	_, err := store.Get("Silver")
	assert.ErrorIs(t, err, domain.ErrUnknownVariable)

	err = store.Set("Silver", domain.IntValue(1))
	assert.ErrorIs(t, err, domain.ErrUnknownVariable)

	err = store.Set("Gold", domain.FloatValue(1))
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestStore_ListNames(t *testing.T) {
	store := variables.NewStore()
	require.NoError(t, store.Register("b", domain.TypeInt, domain.IntValue(0), ""))
	require.NoError(t, store.Register("a", domain.TypeBool, domain.BoolValue(false), ""))
	require.NoError(t, store.Register("c", domain.TypeInt, domain.IntValue(0), ""))

	assert.Equal(t, []string{"a", "b", "c"}, store.ListNames())
	assert.Equal(t, []string{"b", "c"}, store.ListNamesByType(domain.TypeInt))
	assert.Empty(t, store.ListNamesByType(domain.TypeString))
}

func TestStore_HooksFireOnChangeOnly(t *testing.T) {
	var events []*domain.VariableEvent
	store := variables.NewStore(variables.WithHooks(domain.LifecycleHooks{
		OnVariableChanged: func(e *domain.VariableEvent) { events = append(events, e) },
	}))
	require.NoError(t, store.Register("Gold", domain.TypeInt, domain.IntValue(0), ""))

	require.NoError(t, store.Set("Gold", domain.IntValue(0)))
	require.NoError(t, store.Set("Gold", domain.IntValue(5)))

	require.Len(t, events, 1)
	assert.Equal(t, "Gold", events[0].Name)
	assert.True(t, events[0].Old.Equal(domain.IntValue(0)))
	assert.True(t, events[0].New.Equal(domain.IntValue(5)))
}

func TestStore_SnapshotRestore(t *testing.T) {
	store := variables.NewStore()
	require.NoError(t, store.Register("Gold", domain.TypeInt, domain.IntValue(0), ""))
	require.NoError(t, store.Register("Name", domain.TypeString, domain.StringValue(""), ""))
	require.NoError(t, store.Set("Gold", domain.IntValue(99)))

	snap := store.Snapshot()
	store.ResetAll()

	gold, _ := store.Get("Gold")
	assert.True(t, gold.Equal(domain.IntValue(0)))

	snap.Values["Ghost"] = domain.IntValue(1)
	snap.Values["Name"] = domain.IntValue(7)

	skipped := store.Restore(snap)
	assert.Len(t, skipped, 2)

	gold, _ = store.Get("Gold")
	assert.True(t, gold.Equal(domain.IntValue(99)))
	name, _ := store.Get("Name")
	assert.True(t, name.Equal(domain.StringValue("")), "mismatched snapshot entry must not be coerced")
}
