//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/tinted/engine/renderer"
)

const shaderDir = "assets/shaders"

type Shaders mg.Namespace

// Compiles every WGSL file under assets/shaders to SPIR-V and reports errors.
func (Shaders) Check() error {
	files, err := filepath.Glob(filepath.Join(shaderDir, "*.wgsl"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no shaders found in %s", shaderDir)
	}

	var failed int
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		words, err := renderer.CompileWGSL(string(src))
		if err != nil {
			fmt.Printf("FAIL %s: %s\n", f, err)
			failed++
			continue
		}
		if mg.Verbose() {
			fmt.Printf("ok   %s (%d words)\n", f, len(words))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d shaders failed to compile", failed, len(files))
	}
	return nil
}
