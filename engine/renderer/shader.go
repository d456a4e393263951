package renderer

import (
	"fmt"

	"github.com/gogpu/naga"

	"github.com/spaghettifunk/tinted/engine/core"
)

// ShaderSource supplies the WGSL text of the quad shaders.
type ShaderSource interface {
	VertexSource() (string, error)
	FragmentSource() (string, error)
}

// ShaderCompiler turns WGSL into SPIR-V words.
type ShaderCompiler func(source string) ([]uint32, error)

// CompileWGSL compiles WGSL source to SPIR-V with naga.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrShaderCompile, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", core.ErrShaderCompile, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
