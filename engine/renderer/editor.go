package renderer

import (
	"github.com/spaghettifunk/tinted/engine/core"
)

type Channel uint8

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
	ChannelA
)

func (c Channel) String() string {
	return [...]string{"R", "G", "B", "A"}[c]
}

// Name is the long channel name shown to the user.
func (c Channel) Name() string {
	return [...]string{"Red", "Green", "Blue", "Alpha"}[c]
}

type Target uint8

const (
	TargetNone Target = iota
	TargetTint
	TargetBackground
)

// Edit describes what one key did to the editor.
type Edit struct {
	Handled   bool
	Committed Target
	Channel   Channel
	Value     uint32
}

// ColorEditor turns key presses into tint and background edits. Digits
// accumulate a decimal value, R/G/B/A pick the channel, Enter stores the
// value into the tint and C into the background. Every commit clears the
// value.
type ColorEditor struct {
	channel    Channel
	value      uint32
	tint       [4]float32
	background [4]float32
}

func NewColorEditor(tint, background [4]float32) *ColorEditor {
	return &ColorEditor{tint: tint, background: background}
}

// Input applies one key. Keys the editor does not know are not handled.
func (e *ColorEditor) Input(key core.KeyCode) Edit {
	edit := Edit{Handled: true}
	if d, ok := key.Digit(); ok {
		e.value = e.value*10 + d
		return e.report(edit)
	}

	switch key {
	case core.KEY_R:
		e.selectChannel(ChannelR)
	case core.KEY_G:
		e.selectChannel(ChannelG)
	case core.KEY_B:
		e.selectChannel(ChannelB)
	case core.KEY_A:
		e.selectChannel(ChannelA)
	case core.KEY_ENTER, core.KEY_NUMPAD_ENTER:
		e.tint[e.channel] = float32(e.value) / 255
		core.LogDebug("Tint %s set to %d: %v", e.channel, e.value, e.tint)
		e.value = 0
		edit.Committed = TargetTint
	case core.KEY_C:
		v := float32(e.value) / 255
		if e.channel == ChannelA {
			// background is kept premultiplied
			e.background[3] = v
			for i := 0; i < 3; i++ {
				e.background[i] *= e.background[3]
			}
		} else {
			e.background[e.channel] = v * e.background[3]
		}
		core.LogDebug("Background %s set to %d: %v", e.channel, e.value, e.background)
		e.value = 0
		edit.Committed = TargetBackground
	default:
		return Edit{Channel: e.channel, Value: e.value}
	}
	return e.report(edit)
}

func (e *ColorEditor) report(edit Edit) Edit {
	edit.Channel = e.channel
	edit.Value = e.value
	return edit
}

func (e *ColorEditor) selectChannel(c Channel) {
	e.channel = c
	e.value = 0
}

func (e *ColorEditor) Channel() Channel {
	return e.channel
}

func (e *ColorEditor) Value() uint32 {
	return e.value
}

func (e *ColorEditor) Tint() [4]float32 {
	return e.tint
}

func (e *ColorEditor) Background() [4]float32 {
	return e.background
}
