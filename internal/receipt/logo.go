package receipt

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadLogo decodes a PNG, JPEG, GIF, BMP or WebP logo from disk.
func LoadLogo(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode logo %s: %w", path, err)
	}
	return img, nil
}

// DefaultLogo draws the wireless signal mark used when no logo is configured.
func DefaultLogo() image.Image {
	const (
		width  = 240
		height = 130
		band   = 14
	)
	img := image.NewGray(image.Rect(0, 0, width, height))
	cx, cy := float64(width)/2, float64(height)-10

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := float64(x)-cx, cy-float64(y)
			r := math.Hypot(dx, dy)
			ink := false
			switch {
			case r <= band/2+2:
				ink = true
			case dy > 0 && math.Abs(dx) < dy:
				ink = int(r/band)%2 == 0 && r < float64(height)-12
			}
			if ink {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
