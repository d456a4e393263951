package core

// System internal event codes.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed. Key holds the key code.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Resized/resolution changed from the OS. Width and Height hold the new
	// framebuffer size.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// The window asked to be redrawn.
	EVENT_CODE_REDRAW SystemEventCode = 0x09

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type   SystemEventCode
	Key    KeyCode
	Width  uint32
	Height uint32
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

// EventBus dispatches events synchronously on the caller's goroutine, in
// registration order, until a listener reports the event as handled.
type EventBus struct {
	registered [MAX_EVENT_CODE][]FnOnEvent
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

func (eb *EventBus) Register(code SystemEventCode, onEvent FnOnEvent) bool {
	if code <= 0 || code >= MAX_EVENT_CODE || onEvent == nil {
		return false
	}
	eb.registered[code] = append(eb.registered[code], onEvent)
	return true
}

// Fire returns true if a listener handled the event.
func (eb *EventBus) Fire(context EventContext) bool {
	if context.Type <= 0 || context.Type >= MAX_EVENT_CODE {
		return false
	}
	for _, callback := range eb.registered[context.Type] {
		if callback(context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

func (eb *EventBus) Shutdown() {
	for i := range eb.registered {
		eb.registered[i] = nil
	}
}
