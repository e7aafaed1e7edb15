package filter

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

// Thumbnail scales src to fit within w x h pixels, keeping the aspect ratio.
func Thumbnail(src image.Image, w, h int) *image.RGBA {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}

	tw, th := w, b.Dy()*w/b.Dx()
	if th > h {
		tw, th = b.Dx()*h/b.Dy(), h
	}
	tw, th = max(tw, 1), max(th, 1)

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// Render draws img as terminal cells, two pixel rows per line using the
// upper half block. The image is scaled to cols x rows cells first and the
// filter is applied to the scaled copy.
func Render(src image.Image, id string, cols, rows int) string {
	thumb := Apply(Thumbnail(src, cols, rows*2), id)
	b := thumb.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := thumb.RGBAAt(x, y)
			style := lipgloss.NewStyle().Foreground(hexColor(top))
			if y+1 < b.Max.Y {
				style = style.Background(hexColor(thumb.RGBAAt(x, y+1)))
			}
			sb.WriteString(style.Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
