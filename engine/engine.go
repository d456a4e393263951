package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/assets"
	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/platform"
	"github.com/spaghettifunk/tinted/engine/renderer"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    atomic.Bool
	isSuspended  bool
	platform     *platform.Platform
	assetManager *assets.AssetManager
	shaders      *assets.ShaderFiles
	events       *core.EventBus
	instance     hal.Instance
	device       *renderer.DeviceContext
	renderer     *renderer.Renderer
	width        uint32
	height       uint32
	clock        *core.Clock
	metrics      *core.FrameMetrics
	sessionID    uuid.UUID

	rendererOpts []renderer.Option
}

func New(g *Game) (*Engine, error) {
	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		platform:     platform.New(),
		assetManager: am,
		shaders:      am.Shaders(g.ApplicationConfig.Renderer.Shaders),
		events:       core.NewEventBus(),
		width:        g.ApplicationConfig.Window.Width,
		height:       g.ApplicationConfig.Window.Height,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		sessionID:    uuid.New(),
	}
	e.isRunning.Store(true)
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	cfg := e.gameInstance.ApplicationConfig
	core.LogInfo("Starting %s, session %s", cfg.Name, e.sessionID)

	e.registerEvents()

	if err := e.platform.Startup(cfg.Window); err != nil {
		return fmt.Errorf("failed to start platform: %w", err)
	}

	instance, err := newInstance(cfg, e.platform)
	if err != nil {
		return fmt.Errorf("failed to create %s instance: %w", cfg.Name, err)
	}
	if err := e.initRenderer(instance); err != nil {
		return err
	}

	if cfg.Renderer.HotReload {
		if err := e.assetManager.Initialize(e.shaders.Dirs()...); err != nil {
			return fmt.Errorf("failed to watch shaders: %w", err)
		}
		core.LogInfo("Watching %v for shader changes", e.shaders.Dirs())
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) registerEvents() {
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.events.Register(core.EVENT_CODE_REDRAW, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e.onResized)
}

func (e *Engine) initRenderer(instance hal.Instance) error {
	e.instance = instance
	surface := instance.Surface()

	device, err := renderer.NewDeviceContext(instance, surface)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	e.device = device

	logo, err := assets.Logo()
	if err != nil {
		return fmt.Errorf("failed to decode logo: %w", err)
	}

	r, err := renderer.New(device, surface, e.shaders, logo, e.gameInstance.ApplicationConfig.Renderer, e.rendererOpts...)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	e.renderer = r
	return nil
}

// Run pumps events and draws until the application quits. GPU objects are
// released before it returns. A returned error is fatal.
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	defer e.teardown()

	for e.isRunning.Load() {
		var events []core.EventContext
		if e.isSuspended {
			events = e.platform.WaitEvents()
		} else {
			events = e.platform.PollEvents()
		}
		for _, ev := range events {
			e.events.Fire(ev)
		}
		if !e.isRunning.Load() || e.isSuspended {
			continue
		}

		if err := e.frame(); err != nil {
			return err
		}
		e.clock.Update()
	}

	core.LogInfo("Shutting down after %s", e.clock.Elapsed().Round(time.Millisecond))
	return nil
}

// frame draws once, after applying a pending shader change.
func (e *Engine) frame() error {
	select {
	case path := <-e.assetManager.Changes():
		core.LogInfo("Shader %s changed, reloading", path)
		e.renderer.ReloadShaders()
	default:
	}

	frameStart := time.Now()
	if err := e.renderer.Draw(); err != nil {
		return fmt.Errorf("failed to draw frame: %w", err)
	}
	if e.metrics.Update(time.Since(frameStart)) {
		core.LogDebug("FPS: %.0f, frame time: %.3fms", e.metrics.FPS(), e.metrics.FrameTime())
	}
	return nil
}

// Shutdown asks the loop to stop. Safe to call from any goroutine.
func (e *Engine) Shutdown() error {
	e.isRunning.Store(false)
	e.platform.Wake()
	return nil
}

func (e *Engine) teardown() {
	e.currentStage = EngineStageShuttingDown
	e.clock.Stop()

	if e.renderer != nil {
		e.renderer.Destroy()
		e.renderer = nil
	}
	if e.device != nil {
		if err := e.device.Destroy(); err != nil {
			core.LogError(err.Error())
		}
		e.device = nil
	}
	if e.instance != nil {
		e.instance.Destroy()
		e.instance = nil
	}

	e.assetManager.Shutdown()
	e.events.Shutdown()

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if err := e.platform.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		if e.renderer != nil {
			e.renderer.Terminate()
		}
		return true
	case core.EVENT_CODE_REDRAW:
		// the loop draws every iteration anyway
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	keyCode := context.Key

	if keyCode == core.KEY_ESCAPE {
		e.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	if e.gameInstance.FnOnKey != nil && e.gameInstance.FnOnKey(keyCode) {
		return true
	}
	if e.renderer == nil {
		return true
	}
	if edit := e.renderer.Input(keyCode); edit.Handled && e.gameInstance.FnOnEdit != nil {
		e.gameInstance.FnOnEdit(edit)
	}
	return true
}

func (e *Engine) onResized(context core.EventContext) bool {
	width := context.Width
	height := context.Height
	if width == e.width && height == e.height && !e.isSuspended {
		return true
	}
	e.width = width
	e.height = height

	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
	} else if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}

	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return true
}
