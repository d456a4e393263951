package loaders

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/tinted/engine/resources"
)

type ImageLoader struct {
	// FlipY mirrors the rows so that row 0 is the bottom of the picture.
	FlipY bool
}

func (il *ImageLoader) Load(path string) (*resources.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodePNG(data, il.FlipY)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return &resources.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		Type:     resources.ResourceTypeImage,
		DataSize: uint64(len(img.Pix)),
		Data:     img,
	}, nil
}

func (il *ImageLoader) Unload(r *resources.Resource) error {
	r.Data = nil
	r.DataSize = 0
	return nil
}

// DecodePNG decodes PNG bytes of any color model into tightly packed RGBA8.
func DecodePNG(data []byte, flipY bool) (*image.RGBA, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	if flipY {
		flipRows(dst)
	}
	return dst, nil
}

func flipRows(img *image.RGBA) {
	h := img.Bounds().Dy()
	row := make([]byte, img.Stride)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[top*img.Stride : (top+1)*img.Stride]
		b := img.Pix[bottom*img.Stride : (bottom+1)*img.Stride]
		copy(row, t)
		copy(t, b)
		copy(b, row)
	}
}
