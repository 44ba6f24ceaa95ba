package render

import (
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	xdraw.Draw(rgba, b, img, b.Min, xdraw.Src)
	return rgba
}

// drawLegend draws a swatch and name per series in the top-right corner, in series order.
func drawLegend(img image.Image, names []string) image.Image {
	if img == nil || len(names) == 0 {
		return img
	}
	rgba := toRGBA(img)
	b := rgba.Bounds()
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: rgba, Src: image.NewUniform(color.RGBA{A: 255}), Face: face}

	const pad, swatch, lineH = 6, 10, 16
	tw := 0
	for _, n := range names {
		if w := dr.MeasureString(n).Ceil(); w > tw {
			tw = w
		}
	}
	boxW := pad + swatch + pad + tw + pad
	boxH := pad + lineH*len(names) + pad/2
	x0 := b.Max.X - boxW - 12
	y0 := b.Min.Y + 8
	bg := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 230})
	border := image.NewUniform(color.RGBA{R: 160, G: 160, B: 160, A: 255})
	xdraw.Draw(rgba, image.Rect(x0-1, y0-1, x0+boxW+1, y0+boxH+1), border, image.Point{}, xdraw.Over)
	xdraw.Draw(rgba, image.Rect(x0, y0, x0+boxW, y0+boxH), bg, image.Point{}, xdraw.Over)
	for i, n := range names {
		top := y0 + pad + i*lineH
		sw := image.Rect(x0+pad, top+2, x0+pad+swatch, top+2+swatch)
		xdraw.Draw(rgba, sw, image.NewUniform(colorAt(i)), image.Point{}, xdraw.Src)
		dr.Dot = fixed.Point26_6{X: fixed.I(x0 + pad + swatch + pad), Y: fixed.I(top + face.Metrics().Ascent.Ceil())}
		dr.DrawString(n)
	}
	return rgba
}

// drawCaption draws text centred along the bottom edge.
func drawCaption(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	rgba := toRGBA(img)
	b := rgba.Bounds()
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: rgba, Src: image.NewUniform(color.RGBA{R: 51, G: 51, B: 51, A: 255}), Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + (b.Dx()-tw)/2
	if x < b.Min.X+4 {
		x = b.Min.X + 4
	}
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(b.Max.Y - 6)}
	dr.DrawString(text)
	return rgba
}
