package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusStopsAtFirstHandler(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	assert.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		calls = append(calls, "first:"+ctx.Key.String())
		return ctx.Key == KEY_ESCAPE
	}))
	assert.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		calls = append(calls, "second:"+ctx.Key.String())
		return true
	}))

	assert.True(t, bus.Fire(EventContext{Type: EVENT_CODE_KEY_PRESSED, Key: KEY_R}))
	assert.True(t, bus.Fire(EventContext{Type: EVENT_CODE_KEY_PRESSED, Key: KEY_ESCAPE}))
	assert.Equal(t, []string{"first:R", "second:R", "first:Escape"}, calls)
}

func TestEventBusRejectsBadCodes(t *testing.T) {
	bus := NewEventBus()
	assert.False(t, bus.Register(0, func(EventContext) bool { return true }))
	assert.False(t, bus.Register(MAX_EVENT_CODE, func(EventContext) bool { return true }))
	assert.False(t, bus.Register(EVENT_CODE_RESIZED, nil))
	assert.False(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
}

func TestKeyCodeDigit(t *testing.T) {
	d, ok := KEY_7.Digit()
	assert.True(t, ok)
	assert.Equal(t, uint32(7), d)

	d, ok = KEY_NUMPAD0.Digit()
	assert.True(t, ok)
	assert.Equal(t, uint32(0), d)

	_, ok = KEY_R.Digit()
	assert.False(t, ok)
}
