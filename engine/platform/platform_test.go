package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/tinted/engine/core"
)

func TestTranslateKey(t *testing.T) {
	cases := map[glfw.Key]core.KeyCode{
		glfw.Key0:       core.KEY_0,
		glfw.Key7:       core.KEY_7,
		glfw.KeyA:       core.KEY_A,
		glfw.KeyR:       core.KEY_R,
		glfw.KeyZ:       core.KEY_Z,
		glfw.KeyKP0:     core.KEY_NUMPAD0,
		glfw.KeyKP9:     core.KEY_NUMPAD9,
		glfw.KeyEnter:   core.KEY_ENTER,
		glfw.KeyKPEnter: core.KEY_NUMPAD_ENTER,
		glfw.KeyEscape:  core.KEY_ESCAPE,
		glfw.KeySpace:   core.KEY_SPACE,
		glfw.KeyF1:      core.KEY_UNKNOWN,
		glfw.KeyTab:     core.KEY_UNKNOWN,
	}
	for key, want := range cases {
		assert.Equal(t, want, translateKey(key), "glfw key %d", key)
	}
}

func TestCallbacksQueueEvents(t *testing.T) {
	p := New()

	p.keyCallback(nil, glfw.Key5, 0, glfw.Press, 0)
	p.keyCallback(nil, glfw.Key5, 0, glfw.Release, 0)
	p.keyCallback(nil, glfw.KeyF1, 0, glfw.Press, 0)
	p.framebufferSizeCallback(nil, 800, 600)
	p.refreshCallback(nil)
	p.closeCallback(nil)

	events := p.events.Drain()
	assert.Equal(t, []core.EventContext{
		{Type: core.EVENT_CODE_KEY_PRESSED, Key: core.KEY_5},
		{Type: core.EVENT_CODE_RESIZED, Width: 800, Height: 600},
		{Type: core.EVENT_CODE_REDRAW},
		{Type: core.EVENT_CODE_APPLICATION_QUIT},
	}, events)
	assert.True(t, p.events.IsEmpty())
}

func TestQueueOverflowDropsNewest(t *testing.T) {
	p := New()
	for i := 0; i < eventQueueSize+10; i++ {
		p.framebufferSizeCallback(nil, i, i)
	}
	events := p.events.Drain()
	assert.Len(t, events, eventQueueSize)
	assert.Equal(t, uint32(0), events[0].Width)
	assert.Equal(t, uint32(eventQueueSize-1), events[eventQueueSize-1].Width)
}

func TestShutdownBeforeStartup(t *testing.T) {
	p := New()
	p.Wake()
	assert.NoError(t, p.Shutdown())
}
