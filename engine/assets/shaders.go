package assets

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/tinted/engine/core"
)

// ShaderFiles reads the quad shaders from disk on every call, so a reload
// picks up edits.
type ShaderFiles struct {
	am    *AssetManager
	paths core.ShaderPaths
}

func (am *AssetManager) Shaders(paths core.ShaderPaths) *ShaderFiles {
	return &ShaderFiles{am: am, paths: paths}
}

func (s *ShaderFiles) VertexSource() (string, error) {
	return s.load(s.paths.Vertex)
}

func (s *ShaderFiles) FragmentSource() (string, error) {
	return s.load(s.paths.Fragment)
}

// Dirs returns the distinct directories holding the shader files.
func (s *ShaderFiles) Dirs() []string {
	vert := filepath.Dir(s.paths.Vertex)
	frag := filepath.Dir(s.paths.Fragment)
	if vert == frag {
		return []string{vert}
	}
	return []string{vert, frag}
}

func (s *ShaderFiles) load(path string) (string, error) {
	res, err := s.am.LoadAsset(path)
	if err != nil {
		return "", fmt.Errorf("failed to load shader: %w", err)
	}
	src, ok := res.Text()
	if !ok {
		return "", fmt.Errorf("%s is not a shader", path)
	}
	return src, nil
}
