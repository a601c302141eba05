package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var hudColor = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}

// drawHUD writes the frame index and clock in the top-left corner.
func drawHUD(dst *image.RGBA, index int, elapsed float64) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(hudColor),
		Face: face,
		Dot:  fixed.P(8, 8+face.Ascent),
	}
	d.DrawString(fmt.Sprintf("frame %04d  t=%6.3fs", index, elapsed))
}

// renderStamp pre-renders a QR code for url sized to a sixth of the shorter
// frame side.
func renderStamp(url string, width, height int) (image.Image, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr stamp: %w", err)
	}
	q.DisableBorder = true
	q.ForegroundColor = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	q.BackgroundColor = color.White

	side := min(width, height) / 6
	if side < 21 {
		side = 21
	}
	return q.Image(side), nil
}

// drawStamp places the stamp in the bottom-right corner with a margin.
func drawStamp(dst *image.RGBA, stamp image.Image) {
	b := stamp.Bounds()
	margin := 8
	at := image.Pt(dst.Rect.Max.X-b.Dx()-margin, dst.Rect.Max.Y-b.Dy()-margin)
	if at.X < 0 || at.Y < 0 {
		return
	}
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, stamp, b.Min, draw.Src)
}
