package testbed

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer"
)

func TestTestGamePrintsInstructions(t *testing.T) {
	g := NewTestGame(core.DefaultConfig())
	var out bytes.Buffer
	g.out = &out

	require.NoError(t, g.FnInitialize())
	assert.Contains(t, out.String(), "(C)lear colour")
	assert.Contains(t, out.String(), "Escape")
}

func TestTestGameLeavesKeysToRenderer(t *testing.T) {
	g := NewTestGame(core.DefaultConfig())
	assert.Equal(t, "colour-uniform", g.ApplicationConfig.Name)

	assert.False(t, g.FnOnKey(core.KEY_R))
	assert.False(t, g.FnOnKey(core.KEY_5))
	require.NoError(t, g.FnOnResize(640, 480))

	state := g.State.(*gameState)
	assert.Equal(t, uint32(2), state.keysPressed)
	assert.Equal(t, uint32(640), state.width)
	require.NoError(t, g.FnShutdown())
}

func TestTestGameEchoesEdits(t *testing.T) {
	g := NewTestGame(core.DefaultConfig())
	var out bytes.Buffer
	g.out = &out

	g.FnOnEdit(renderer.Edit{Handled: true, Channel: renderer.ChannelR, Value: 25})
	g.FnOnEdit(renderer.Edit{Handled: true, Committed: renderer.TargetTint, Channel: renderer.ChannelR})
	g.FnOnEdit(renderer.Edit{Handled: true, Committed: renderer.TargetBackground, Channel: renderer.ChannelA})

	assert.Equal(t, "Set Red color to: 25 (press enter/C to confirm)\n"+
		"Colour updated!\n"+
		"Set Red color to: 0 (press enter/C to confirm)\n"+
		"Background color updated!\n"+
		"Set Alpha color to: 0 (press enter/C to confirm)\n", out.String())
}
