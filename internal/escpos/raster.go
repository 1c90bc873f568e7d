package escpos

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// MaxDots is the printable width of an 80mm head at 203 dpi.
const MaxDots = 512

// Fit prepares img for a thermal head: images wider than maxDots are scaled
// down keeping their aspect ratio, and transparent pixels become white.
func Fit(img image.Image, maxDots int) *image.Gray {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if maxDots > 0 && w > maxDots {
		h = h * maxDots / w
		w = maxDots
		if h == 0 {
			h = 1
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(canvas, canvas.Bounds(), img, src.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, src, draw.Over, nil)
	}

	gray := image.NewGray(canvas.Bounds())
	draw.Draw(gray, gray.Bounds(), canvas, image.Point{}, draw.Src)
	return gray
}
