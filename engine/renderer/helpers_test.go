package renderer

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
	"github.com/spaghettifunk/tinted/engine/renderer/headless"
)

type testShaders struct {
	vertex, fragment string
	err              error
}

func (s *testShaders) VertexSource() (string, error) {
	return s.vertex, s.err
}

func (s *testShaders) FragmentSource() (string, error) {
	return s.fragment, s.err
}

func newTestShaders() *testShaders {
	return &testShaders{vertex: "vertex", fragment: "fragment"}
}

// fakeCompile produces a minimal valid SPIR-V header for any source except
// "broken".
func fakeCompile(source string) ([]uint32, error) {
	if strings.Contains(source, "broken") {
		return nil, errors.New("broken: " + core.ErrShaderCompile.Error())
	}
	return []uint32{0x07230203, 0x00010000, 0, 1, 0}, nil
}

func newTestContext(t *testing.T, cfg headless.Config) (*headless.Instance, *DeviceContext) {
	t.Helper()
	inst := headless.NewInstance(cfg)
	ctx, err := NewDeviceContext(inst, inst.Surface())
	require.NoError(t, err)
	return inst, ctx
}

func newTestLogo(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	return img
}

func newTestRenderer(t *testing.T, cfg headless.Config) (*headless.Instance, *DeviceContext, *Renderer) {
	t.Helper()
	inst, ctx := newTestContext(t, cfg)
	r, err := New(ctx, inst.Surface(), newTestShaders(), newTestLogo(16, 8), core.DefaultConfig().Renderer, WithShaderCompiler(fakeCompile))
	require.NoError(t, err)
	return inst, ctx, r
}

// ops strips the object labels from the recorded calls that start with one
// of the given operations.
func ops(calls []string, names ...string) []string {
	var out []string
	for _, c := range calls {
		op := strings.Fields(c)[0]
		for _, n := range names {
			if op == n {
				out = append(out, op)
			}
		}
	}
	return out
}

func readBuffer(t *testing.T, b *Buffer) []byte {
	t.Helper()
	device := b.ctx.Device()
	data, err := device.MapMemory(b.memory, 0, b.size)
	require.NoError(t, err)
	out := append([]byte(nil), data...)
	device.UnmapMemory(b.memory)
	return out
}

var _ hal.Instance = (*headless.Instance)(nil)
