package assets

import (
	_ "embed"
	"image"

	"github.com/spaghettifunk/tinted/engine/assets/loaders"
)

//go:embed data/logo.png
var logoPNG []byte

// Logo decodes the embedded logo texture.
func Logo() (*image.RGBA, error) {
	return loaders.DecodePNG(logoPNG, false)
}
