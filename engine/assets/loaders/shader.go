package loaders

import (
	"os"
	"path/filepath"

	"github.com/spaghettifunk/tinted/engine/resources"
)

type ShaderLoader struct{}

// Load reads WGSL source text. Compilation happens when the pipeline is built.
func (sl *ShaderLoader) Load(path string) (*resources.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		Type:     resources.ResourceTypeShader,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(r *resources.Resource) error {
	r.Data = nil
	r.DataSize = 0
	return nil
}
