package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/resources"
)

const testShader = "@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLogoDecodes(t *testing.T) {
	logo, err := Logo()
	require.NoError(t, err)
	assert.Equal(t, 128, logo.Bounds().Dx())
	assert.Equal(t, 128, logo.Bounds().Dy())
	assert.Equal(t, 128*4, logo.Stride)
	// corners are transparent
	assert.Equal(t, uint8(0), logo.RGBAAt(0, 0).A)
}

func TestShaderFilesLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "quad.vert.wgsl")
	frag := filepath.Join(dir, "quad.frag.wgsl")
	writeFile(t, vert, "vertex")
	writeFile(t, frag, testShader)

	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	shaders := am.Shaders(core.ShaderPaths{Vertex: vert, Fragment: frag})
	src, err := shaders.VertexSource()
	require.NoError(t, err)
	assert.Equal(t, "vertex", src)

	src, err = shaders.FragmentSource()
	require.NoError(t, err)
	assert.Equal(t, testShader, src)

	info, ok := am.Info(frag)
	require.True(t, ok)
	assert.Equal(t, resources.ResourceTypeShader, info.Type)
	assert.False(t, info.LastLoaded.IsZero())

	assert.Equal(t, []string{dir}, shaders.Dirs())

	// edits are visible on the next read
	writeFile(t, vert, "edited")
	src, err = shaders.VertexSource()
	require.NoError(t, err)
	assert.Equal(t, "edited", src)
}

func TestLoadAssetErrors(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	_, err = am.LoadAsset("model.obj")
	assert.Error(t, err)

	_, err = am.LoadAsset(filepath.Join(t.TempDir(), "missing.wgsl"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	shaders := am.Shaders(core.ShaderPaths{Vertex: "a/x.wgsl", Fragment: "b/y.wgsl"})
	assert.Equal(t, []string{"a", "b"}, shaders.Dirs())
}

func TestUnloadAsset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.frag.wgsl")
	writeFile(t, path, testShader)

	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	res, err := am.LoadAsset(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(testShader)), res.DataSize)

	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)
	assert.Zero(t, res.DataSize)
}

func TestWatcherReportsShaderWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.frag.wgsl")
	writeFile(t, path, testShader)
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	require.NoError(t, am.Initialize(dir))
	_, indexed := am.Info(path)
	assert.True(t, indexed)
	_, indexed = am.Info(filepath.Join(dir, "notes.md"))
	assert.False(t, indexed)

	writeFile(t, path, testShader+"// edit\n")

	select {
	case changed := <-am.Changes():
		assert.Equal(t, filepath.Clean(path), changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification for shader write")
	}
}

func TestShutdownWithoutWatching(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	am.Shutdown()
	am.Shutdown()
	assert.Error(t, am.Initialize(t.TempDir()))
}
