// Package filter holds the cosmetic preview filters and applies them to
// decoded images for terminal previews. Uploaded bytes are never filtered.
package filter

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Filter is one entry of the preview catalog.
type Filter struct {
	ID   string
	Name string
}

// Catalog lists the filters in display order.
var Catalog = []Filter{
	{ID: "none", Name: "Normal"},
	{ID: "grayscale", Name: "Grayscale"},
	{ID: "sepia", Name: "Sepia"},
	{ID: "invert", Name: "Invert"},
	{ID: "blur", Name: "Blur"},
	{ID: "brightness", Name: "Bright"},
}

const (
	blurRadius       = 2
	brightnessFactor = 1.5
)

// Lookup finds a filter by id.
func Lookup(id string) (Filter, bool) {
	for _, f := range Catalog {
		if f.ID == id {
			return f, true
		}
	}
	return Filter{}, false
}

// Index returns the catalog position of id, or -1.
func Index(id string) int {
	for i, f := range Catalog {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// Apply returns a filtered copy of src. Unknown ids and "none" return an
// unmodified copy.
func Apply(src image.Image, id string) *image.RGBA {
	dst := toRGBA(src)

	switch id {
	case "grayscale":
		mapPixels(dst, func(c color.RGBA) color.RGBA {
			y := luma(c)
			return color.RGBA{y, y, y, c.A}
		})
	case "sepia":
		mapPixels(dst, func(c color.RGBA) color.RGBA {
			r, g, b := float64(c.R), float64(c.G), float64(c.B)
			return color.RGBA{
				R: clamp(0.393*r + 0.769*g + 0.189*b),
				G: clamp(0.349*r + 0.686*g + 0.168*b),
				B: clamp(0.272*r + 0.534*g + 0.131*b),
				A: c.A,
			}
		})
	case "invert":
		mapPixels(dst, func(c color.RGBA) color.RGBA {
			return color.RGBA{255 - c.R, 255 - c.G, 255 - c.B, c.A}
		})
	case "brightness":
		mapPixels(dst, func(c color.RGBA) color.RGBA {
			return color.RGBA{
				R: clamp(float64(c.R) * brightnessFactor),
				G: clamp(float64(c.G) * brightnessFactor),
				B: clamp(float64(c.B) * brightnessFactor),
				A: c.A,
			}
		})
	case "blur":
		dst = boxBlur(dst, blurRadius)
	}

	return dst
}

func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func mapPixels(img *image.RGBA, fn func(color.RGBA) color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, fn(img.RGBAAt(x, y)))
		}
	}
}

// boxBlur averages each pixel with its (2r+1)^2 neighbourhood, clamped at edges.
func boxBlur(src *image.RGBA, r int) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sr, sg, sb, sa, n int
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					p := image.Pt(x+dx, y+dy)
					if !p.In(b) {
						continue
					}
					c := src.RGBAAt(p.X, p.Y)
					sr += int(c.R)
					sg += int(c.G)
					sb += int(c.B)
					sa += int(c.A)
					n++
				}
			}
			dst.SetRGBA(x, y, color.RGBA{
				uint8(sr / n), uint8(sg / n), uint8(sb / n), uint8(sa / n),
			})
		}
	}

	return dst
}

func luma(c color.RGBA) uint8 {
	return clamp(0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B))
}

func clamp(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
