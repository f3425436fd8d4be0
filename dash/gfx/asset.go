package gfx

import (
	"fmt"
	"image/png"
	"os"
)

// LoadPNG reads artwork from disk. Callers treat failures as fatal at startup.
func LoadPNG(path string) (*Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load asset %s: %w", path, err)
	}
	return FromImage(img), nil
}
