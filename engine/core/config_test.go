package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[window]
title = "quad"
width = 800

[renderer]
present_mode = "mailbox"
background = [0.1, 0.2, 0.3, 1.0]

[log]
level = "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "quad", cfg.Window.Title)
	assert.Equal(t, uint32(800), cfg.Window.Width)
	assert.Equal(t, uint32(768), cfg.Window.Height)
	assert.Equal(t, "mailbox", cfg.Renderer.PresentMode)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1.0}, cfg.Renderer.Background)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, cfg.Renderer.Tint)
	assert.Equal(t, "assets/shaders/quad.vert.wgsl", cfg.Renderer.Shaders.Vertex)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\npresent_mode = \"immediate\"\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = \"wide\"\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestSetLogLevel(t *testing.T) {
	assert.True(t, SetLogLevel("ERROR"))
	assert.False(t, SetLogLevel("loud"))
	assert.True(t, SetLogLevel("debug"))
}
