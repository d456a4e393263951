package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectangle(t *testing.T) {
	rect := NewRectangle(0, 0, 50, 50)

	assert.Equal(t, Vec2{25, 25}, rect.Center())
	assert.Equal(t, float32(2500), rect.Area())
	assert.True(t, rect.Contains(Vec2{25, 25}))
	assert.False(t, rect.Contains(Vec2{100, 100}))
	assert.False(t, rect.Contains(Vec2{25, 100}))
	assert.False(t, rect.Contains(Vec2{100, 25}))
}

func TestRectangleBuildersCopy(t *testing.T) {
	rect := NewRectangle(0, 0, 10, 20)
	red := rect.WithColor(RGBA8{255, 0, 0, 255}).WithFormat(Line(2))

	assert.Equal(t, RGBA8{255, 255, 255, 255}, rect.Color)
	assert.False(t, rect.Format.IsLine())
	assert.Equal(t, RGBA8{255, 0, 0, 255}, red.Color)
	assert.True(t, red.Format.IsLine())
	assert.Equal(t, float32(2), red.Format.LineWidth())
	assert.Equal(t, [4]Vec2{{0, 0}, {10, 0}, {10, 20}, {0, 20}}, red.Vertices())
}

func TestTriangle(t *testing.T) {
	tri := NewTriangle(Vec2{0, 0}, Vec2{50, 50}, Vec2{100, 0})

	assert.True(t, tri.Center().Compare(Vec2{50, 16.666666}, 1e-4))
	assert.True(t, tri.Contains(Vec2{25, 25}))
	assert.False(t, tri.Contains(Vec2{50, 60}))
	assert.False(t, tri.Contains(Vec2{-1, 0}))

	small := NewTriangle(Vec2{0, 0}, Vec2{25, 25}, Vec2{50, 0})
	assert.Equal(t, float32(625), small.Area())

	// Winding order must not matter.
	flipped := NewTriangle(Vec2{100, 0}, Vec2{50, 50}, Vec2{0, 0})
	assert.True(t, flipped.Contains(Vec2{25, 25}))
	assert.Equal(t, tri.Area(), flipped.Area())
}

func TestTriangleBuildersCopy(t *testing.T) {
	tri := NewTriangle(Vec2{0, 0}, Vec2{1, 1}, Vec2{2, 0})
	blue := tri.WithColor(RGBA8{0, 0, 255, 255}).WithFormat(Line(1.5))

	assert.Equal(t, Fill, tri.Format)
	assert.Equal(t, RGBA8{0, 0, 255, 255}, blue.Color)
	assert.Equal(t, float32(1.5), blue.Format.LineWidth())
	assert.Equal(t, [3]Vec2{{0, 0}, {1, 1}, {2, 0}}, blue.Vertices())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint32(10), Clamp(uint32(5), 10, 20))
	assert.Equal(t, uint32(20), Clamp(uint32(25), 10, 20))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint32(4096), AlignUp(uint32(1024*4), 256))
	assert.Equal(t, uint32(256), AlignUp(uint32(3*4), 256))
	assert.Equal(t, uint64(12), AlignUp(uint64(12), 4))
	assert.Equal(t, uint64(12), AlignUp(uint64(12), 0))
}
