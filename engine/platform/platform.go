package platform

import (
	"runtime"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/tinted/engine/containers"
	"github.com/spaghettifunk/tinted/engine/core"
)

// eventQueueSize bounds the events buffered between two PollEvents calls.
const eventQueueSize = 256

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	window  *glfw.Window
	events  *containers.RingQueue[core.EventContext]
	started atomic.Bool
}

func New() *Platform {
	return &Platform{
		events: containers.NewRingQueue[core.EventContext](eventQueueSize),
	}
}

// Startup creates the window. There is no client API since Vulkan draws to
// it, and the framebuffer is transparent when asked for.
func (p *Platform) Startup(cfg core.WindowConfig) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return core.ErrNoSuitableAdapter
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.
	if cfg.Transparent {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	}

	window, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return err
	}
	p.window = window

	p.window.SetKeyCallback(p.keyCallback)
	p.window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.window.SetCloseCallback(p.closeCallback)
	p.window.SetRefreshCallback(p.refreshCallback)
	p.window.Show()
	p.started.Store(true)

	core.LogInfo("Window created: %dx%d '%s'", cfg.Width, cfg.Height, cfg.Title)
	return nil
}

// Window returns the native window the Vulkan surface is created from.
func (p *Platform) Window() *glfw.Window {
	return p.window
}

func (p *Platform) Shutdown() error {
	if !p.started.Swap(false) {
		return nil
	}
	if p.window != nil {
		p.window.Destroy()
		p.window = nil
	}
	glfw.Terminate()
	return nil
}

// PollEvents pumps the OS message queue and returns the events raised since
// the last call, oldest first.
func (p *Platform) PollEvents() []core.EventContext {
	glfw.PollEvents()
	return p.events.Drain()
}

// WaitEvents blocks until at least one event arrives, then returns the
// pending events like PollEvents.
func (p *Platform) WaitEvents() []core.EventContext {
	glfw.WaitEvents()
	return p.events.Drain()
}

// Wake unblocks WaitEvents. Safe to call from any goroutine.
func (p *Platform) Wake() {
	if p.started.Load() {
		glfw.PostEmptyEvent()
	}
}

func (p *Platform) push(e core.EventContext) {
	if err := p.events.Enqueue(e); err != nil {
		core.LogWarn("Dropping event %d: %s", e.Type, err)
	}
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	code := translateKey(key)
	if code == core.KEY_UNKNOWN {
		return
	}
	p.push(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Key: code})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.push(core.EventContext{Type: core.EVENT_CODE_RESIZED, Width: uint32(width), Height: uint32(height)})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.push(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
}

func (p *Platform) refreshCallback(w *glfw.Window) {
	p.push(core.EventContext{Type: core.EVENT_CODE_REDRAW})
}

func translateKey(key glfw.Key) core.KeyCode {
	switch {
	case key >= glfw.Key0 && key <= glfw.Key9:
		return core.KEY_0 + core.KeyCode(key-glfw.Key0)
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return core.KEY_A + core.KeyCode(key-glfw.KeyA)
	case key >= glfw.KeyKP0 && key <= glfw.KeyKP9:
		return core.KEY_NUMPAD0 + core.KeyCode(key-glfw.KeyKP0)
	}
	switch key {
	case glfw.KeyEnter:
		return core.KEY_ENTER
	case glfw.KeyKPEnter:
		return core.KEY_NUMPAD_ENTER
	case glfw.KeyEscape:
		return core.KEY_ESCAPE
	case glfw.KeySpace:
		return core.KEY_SPACE
	}
	return core.KEY_UNKNOWN
}
