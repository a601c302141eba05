package analyzer

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func frame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(color.RGBA{0x1a, 0x1a, 0x1a, 0xff}), image.Point{}, draw.Src)
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func TestBlankFrameIsEmpty(t *testing.T) {
	cov := NewContrastDetector().Detect(frame(64, 48))
	if !cov.Empty() {
		t.Fatalf("expected no blocks, got %v", cov.Blocks)
	}
	if cov.Fraction() != 0 {
		t.Errorf("expected zero coverage, got %f", cov.Fraction())
	}
}

func TestDetectsSquare(t *testing.T) {
	img := frame(64, 64)
	square := image.Rect(10, 10, 30, 30)
	fillRect(img, square, color.RGBA{0x3b, 0x82, 0xf6, 0xff})

	cov := NewContrastDetector().Detect(img)
	if len(cov.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d: %v", len(cov.Blocks), cov.Blocks)
	}
	got := cov.Blocks[0].Rect
	if !square.In(got) {
		t.Errorf("block %v should contain the square %v", got, square)
	}
	if !got.In(image.Rect(5, 5, 35, 35)) {
		t.Errorf("block %v is too loose", got)
	}
	if cov.Fraction() <= 0 || cov.Fraction() >= 1 {
		t.Errorf("unexpected coverage %f", cov.Fraction())
	}
}

func TestSeparateBlocks(t *testing.T) {
	img := frame(100, 40)
	fillRect(img, image.Rect(5, 5, 20, 20), color.RGBA{0xff, 0, 0, 0xff})
	fillRect(img, image.Rect(70, 10, 90, 30), color.RGBA{0, 0xff, 0, 0xff})

	cov := NewContrastDetector().Detect(img)
	if len(cov.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %v", len(cov.Blocks), cov.Blocks)
	}
	if !cov.Blocks[0].Rect.Union(cov.Blocks[1].Rect).Eq(cov.Bounds) {
		t.Errorf("bounds %v should be the union of the blocks", cov.Bounds)
	}
}

func TestTinyFrame(t *testing.T) {
	if cov := NewContrastDetector().Detect(frame(2, 2)); !cov.Empty() {
		t.Errorf("frames under 3px cannot have edges, got %v", cov.Blocks)
	}
}
