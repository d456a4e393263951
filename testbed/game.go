package testbed

import (
	"fmt"
	"io"
	"os"

	"github.com/spaghettifunk/tinted/engine"
	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer"
)

const instructions = `
Instructions:
	Choose whether to change the (R)ed, (G)reen, (B)lue or (A)lpha channel by pressing the appropriate key.
	Type in the value you want to change it to, where 0 is nothing, 255 is normal and 510 is double, etc.
	Then press C to change the (C)lear colour or (Enter) for the image colour.
	Press Escape to quit.
`

type TestGame struct {
	*engine.Game
	out io.Writer
}

type gameState struct {
	keysPressed uint32
	width       uint32
	height      uint32
}

func NewTestGame(cfg *core.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: engine.NewApplicationConfig(cfg),
			State: &gameState{
				width:  cfg.Window.Width,
				height: cfg.Window.Height,
			},
		},
		out: os.Stdout,
	}

	tg.FnInitialize = tg.Initialize
	tg.FnOnKey = tg.OnKey
	tg.FnOnEdit = tg.OnEdit
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")
	_, err := fmt.Fprint(g.out, instructions)
	return err
}

// OnKey only counts keys, the renderer applies them.
func (g *TestGame) OnKey(key core.KeyCode) bool {
	state := g.State.(*gameState)
	state.keysPressed++
	core.LogDebug("'%s' key pressed in window.", key)
	return false
}

// OnEdit echoes the editor state so the user sees what they are typing.
func (g *TestGame) OnEdit(edit renderer.Edit) {
	switch edit.Committed {
	case renderer.TargetTint:
		fmt.Fprintln(g.out, "Colour updated!")
	case renderer.TargetBackground:
		fmt.Fprintln(g.out, "Background color updated!")
	}
	fmt.Fprintf(g.out, "Set %s color to: %d (press enter/C to confirm)\n", edit.Channel.Name(), edit.Value)
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	core.LogInfo("TestGame shutting down after %d key presses", state.keysPressed)
	return nil
}
