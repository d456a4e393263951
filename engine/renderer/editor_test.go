package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/tinted/engine/core"
)

var (
	white = [4]float32{1, 1, 1, 1}
	grey  = [4]float32{0.8, 0.8, 0.8, 1}
)

func press(e *ColorEditor, keys ...core.KeyCode) bool {
	changed := false
	for _, k := range keys {
		changed = e.Input(k).Committed == TargetTint || changed
	}
	return changed
}

func TestColorEditorTint(t *testing.T) {
	e := NewColorEditor(white, grey)

	assert.False(t, press(e, core.KEY_R, core.KEY_2, core.KEY_5))
	assert.Equal(t, uint32(25), e.Value())
	assert.True(t, press(e, core.KEY_5, core.KEY_ENTER))
	assert.Equal(t, float32(1), e.Tint()[0])
	assert.Equal(t, uint32(0), e.Value())

	press(e, core.KEY_G, core.KEY_NUMPAD5, core.KEY_1, core.KEY_NUMPAD_ENTER)
	assert.InDelta(t, 51.0/255, e.Tint()[1], 1e-6)
	assert.Equal(t, ChannelG, e.Channel())
	assert.Equal(t, grey, e.Background())
}

func TestColorEditorChannelKeyResetsValue(t *testing.T) {
	e := NewColorEditor(white, grey)

	press(e, core.KEY_1, core.KEY_2, core.KEY_R)
	assert.Equal(t, uint32(0), e.Value())
	assert.Equal(t, ChannelR, e.Channel())

	press(e, core.KEY_9, core.KEY_B)
	assert.Equal(t, uint32(0), e.Value())
	assert.Equal(t, ChannelB, e.Channel())
	assert.Equal(t, white, e.Tint())
}

func TestColorEditorBackgroundAlphaPremultiplies(t *testing.T) {
	e := NewColorEditor(white, grey)

	assert.False(t, press(e, core.KEY_A, core.KEY_1, core.KEY_2, core.KEY_8, core.KEY_C))
	bg := e.Background()
	assert.InDelta(t, 0.4, bg[0], 0.005)
	assert.InDelta(t, 0.4, bg[1], 0.005)
	assert.InDelta(t, 0.4, bg[2], 0.005)
	assert.InDelta(t, 0.50196, bg[3], 1e-5)
	assert.Equal(t, uint32(0), e.Value())
	assert.Equal(t, white, e.Tint())
}

func TestColorEditorBackgroundChannelUsesAlpha(t *testing.T) {
	e := NewColorEditor(white, [4]float32{0, 0, 0, 0.5})

	press(e, core.KEY_G, core.KEY_2, core.KEY_5, core.KEY_5, core.KEY_C)
	assert.InDelta(t, 0.5, e.Background()[1], 1e-6)
	assert.Equal(t, uint32(0), e.Value())
}

func TestColorEditorBackgroundCommitClearsValue(t *testing.T) {
	e := NewColorEditor(white, grey)

	press(e, core.KEY_R, core.KEY_2, core.KEY_0, core.KEY_0, core.KEY_C, core.KEY_1, core.KEY_C)
	assert.Equal(t, uint32(0), e.Value())
	assert.InDelta(t, 1.0/255, e.Background()[0], 1e-6)
}

func TestColorEditorReportsEdits(t *testing.T) {
	e := NewColorEditor(white, grey)

	assert.Equal(t, Edit{Handled: true, Channel: ChannelB}, e.Input(core.KEY_B))
	assert.Equal(t, Edit{Handled: true, Channel: ChannelB, Value: 4}, e.Input(core.KEY_4))
	assert.Equal(t, Edit{Handled: true, Channel: ChannelB, Value: 42}, e.Input(core.KEY_2))
	assert.Equal(t, Edit{Handled: true, Committed: TargetTint, Channel: ChannelB}, e.Input(core.KEY_ENTER))
	assert.Equal(t, Edit{Handled: true, Channel: ChannelB, Value: 7}, e.Input(core.KEY_7))
	assert.Equal(t, Edit{Handled: true, Committed: TargetBackground, Channel: ChannelB}, e.Input(core.KEY_C))
	assert.Equal(t, Edit{Channel: ChannelB}, e.Input(core.KEY_SPACE))
	assert.Equal(t, "Blue", ChannelB.Name())
}

func TestColorEditorIgnoresOtherKeys(t *testing.T) {
	e := NewColorEditor(white, grey)
	press(e, core.KEY_4, core.KEY_SPACE, core.KEY_X)
	assert.Equal(t, uint32(4), e.Value())
	assert.Equal(t, white, e.Tint())
	assert.Equal(t, grey, e.Background())
}
