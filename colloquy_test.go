package colloquy_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/registry"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calls struct {
	sounds []string
	chests []string
}

func newTavern(t *testing.T, opts ...colloquy.Option) (*colloquy.Engine, *calls) {
	t.Helper()
	rec := &calls{}
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(domain.FuncPlaySound, func(ctx context.Context, p string) error {
		rec.sounds = append(rec.sounds, p)
		return nil
	}))
	require.NoError(t, reg.RegisterCustom("OpenChest", func(ctx context.Context, p string) error {
		rec.chests = append(rec.chests, p)
		return nil
	}))

	eng, err := colloquy.New(filepath.Join("testdata", "tavern.yaml"), append([]colloquy.Option{colloquy.WithRegistry(reg)}, opts...)...)
	require.NoError(t, err)
	return eng, rec
}

func play(t *testing.T, eng *colloquy.Engine, input string, auto bool) (string, error) {
	t.Helper()
	start, err := eng.Start("Bar", "")
	require.NoError(t, err)

	var out bytes.Buffer
	r := &colloquy.Runner{
		Input:      strings.NewReader(input),
		View:       tui.NewRenderer(&out, tui.WithProfile(termenv.Ascii)),
		AutoChoose: auto,
	}
	err = r.Run(context.Background(), eng, start)
	return out.String(), err
}

func TestEngine_Validate(t *testing.T) {
	eng, _ := newTavern(t)
	assert.NoError(t, eng.Validate())
	assert.Equal(t, "tavern.yaml", eng.Name)
}

func TestEngine_Start(t *testing.T) {
	eng, _ := newTavern(t)

	node, err := eng.Start("", "")
	require.NoError(t, err)
	assert.Equal(t, "greet", node.ID)

	node, err = eng.Start("Cellar", "Start")
	require.NoError(t, err)
	assert.Equal(t, "cellar", node.ID)

	node, err = eng.Start("", "Epilogue")
	require.NoError(t, err)
	assert.Equal(t, "epilogue", node.ID)

	_, err = eng.Start("Cellar", "")
	assert.ErrorIs(t, err, dialogue.ErrNodeNotFound, "Cellar has no starting node")
}

func TestRunner_PlaysThroughBarAndCellar(t *testing.T) {
	var entered []string
	eng, rec := newTavern(t, colloquy.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeEnter: func(e *domain.NodeEvent) { entered = append(entered, e.NodeID) },
	}))

	out, err := play(t, eng, "1\n2\n", false)
	require.NoError(t, err)

	menu := "barkeep (cheerful): Welcome, traveller. What will it be?\n" +
		"  1) Buy an ale (10 gold)\n" +
		"  2) Ask about the cellar\n" +
		"  3) Leave\n" +
		"> "
	assert.Equal(t, menu+menu+"Dust and old barrels.\n", out)

	assert.Equal(t, []string{"greet", "check_gold", "pay", "serve", "greet", "cellar", "key", "chest"}, entered)
	assert.Equal(t, []string{"pour"}, rec.sounds)
	assert.Equal(t, []string{"cellar"}, rec.chests)

	vars := eng.Variables()
	gold, _ := vars.Get("Gold")
	assert.True(t, gold.Equal(domain.IntValue(20)))
	hasKey, _ := vars.Get("HasKey")
	assert.True(t, hasKey.Equal(domain.BoolValue(true)))
	rep, _ := vars.Get("reputation")
	assert.True(t, rep.Equal(domain.IntValue(2)), "story change pulled back, got %v", rep)
}

func TestRunner_QuitAndRetry(t *testing.T) {
	eng, rec := newTavern(t)

	out, err := play(t, eng, "9\nale\nquit\n", false)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Pick a number between 1 and 3."))
	assert.Empty(t, rec.sounds)

	eng, _ = newTavern(t)
	_, err = play(t, eng, "3\n", false)
	assert.NoError(t, err, "a choice without target ends the conversation")

	eng, _ = newTavern(t)
	_, err = play(t, eng, "", false)
	assert.NoError(t, err, "end of input quits")
}

func TestRunner_AutoChooseAndBudget(t *testing.T) {
	eng, rec := newTavern(t)
	out, err := play(t, eng, "", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"pour", "pour", "pour"}, rec.sounds)
	assert.True(t, strings.HasSuffix(out, "Come back when you have coin.\n"))

	eng, _ = newTavern(t, colloquy.WithStepBudget(10))
	_, err = play(t, eng, "", true)
	assert.ErrorIs(t, err, dialogue.ErrStepBudget)
}

func TestRunner_UnmappedFunctionStopsPlayback(t *testing.T) {
	eng, err := colloquy.New(filepath.Join("testdata", "tavern.yaml"))
	require.NoError(t, err)

	_, err = play(t, eng, "1\n", false)
	assert.ErrorIs(t, err, domain.ErrUnmappedFunction)
}

func TestEngine_PersistAndRestore(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewStore()

	eng, _ := newTavern(t)
	ok, err := eng.Restore(ctx, snapshots, "player-1")
	require.NoError(t, err)
	assert.False(t, ok, "nothing saved yet")

	require.NoError(t, eng.Variables().Set("Gold", domain.IntValue(7)))
	require.NoError(t, eng.Persist(ctx, snapshots, "player-1"))

	fresh, _ := newTavern(t)
	ok, err = fresh.Restore(ctx, snapshots, "player-1")
	require.NoError(t, err)
	assert.True(t, ok)
	gold, _ := fresh.Variables().Get("Gold")
	assert.True(t, gold.Equal(domain.IntValue(7)))
}
