package engine

import (
	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnOnKey           OnKey
	FnOnEdit          OnEdit
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error

// OnKey sees every key press before the renderer. Returning true consumes it.
type OnKey func(key core.KeyCode) bool

// OnEdit is called after the renderer handled a color editing key.
type OnEdit func(edit renderer.Edit)
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
