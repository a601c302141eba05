package analyzer

import (
	"image"
	"math"
)

// Block is one connected region of drawn content.
type Block struct {
	Rect image.Rectangle
	Area int // bounding box area in pixels
}

// Coverage describes where a frame has visible content.
type Coverage struct {
	Blocks []Block
	Bounds image.Rectangle // union of all blocks
	Frame  image.Rectangle
}

func (c Coverage) Empty() bool { return len(c.Blocks) == 0 }

// Fraction is the share of the frame covered by Bounds.
func (c Coverage) Fraction() float64 {
	total := c.Frame.Dx() * c.Frame.Dy()
	if total == 0 || c.Empty() {
		return 0
	}
	return float64(c.Bounds.Dx()*c.Bounds.Dy()) / float64(total)
}

// ContrastDetector finds content by Sobel edges, dilation and connected
// components. It works on any background color.
type ContrastDetector struct {
	EdgeThreshold   float64 // gradient magnitude threshold
	DilateRadius    int
	MinAreaFraction float64 // blocks smaller than this share of the frame are noise
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		EdgeThreshold:   30,
		DilateRadius:    2,
		MinAreaFraction: 0.0002,
	}
}

func (d *ContrastDetector) Detect(img *image.RGBA) Coverage {
	b := img.Bounds()
	cov := Coverage{Frame: b}
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return cov
	}

	edges := sobel(luma(img), w, h, d.EdgeThreshold)
	if d.DilateRadius > 0 {
		edges = dilate(edges, w, h, d.DilateRadius)
	}

	minArea := int(d.MinAreaFraction * float64(w*h))
	if minArea < 4 {
		minArea = 4
	}
	for _, r := range components(edges, w, h) {
		area := r.Dx() * r.Dy()
		if area < minArea {
			continue
		}
		r = r.Add(b.Min)
		cov.Blocks = append(cov.Blocks, Block{Rect: r, Area: area})
		cov.Bounds = cov.Bounds.Union(r)
	}
	return cov
}

func luma(img *image.RGBA) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			r, g, bl := int(row[x*4]), int(row[x*4+1]), int(row[x*4+2])
			out[y*w+x] = uint8((299*r + 587*g + 114*bl) / 1000)
		}
	}
	return out
}

func sobel(gray []uint8, w, h int, threshold float64) []bool {
	edges := make([]bool, w*h)
	at := func(x, y int) float64 { return float64(gray[y*w+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			edges[y*w+x] = math.Hypot(gx, gy) > threshold
		}
	}
	return edges
}

// dilate grows every set pixel into a (2r+1)^2 square. Two separable passes.
func dilate(in []bool, w, h, r int) []bool {
	tmp := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !in[y*w+x] {
				continue
			}
			for dx := max(0, x-r); dx <= min(w-1, x+r); dx++ {
				tmp[y*w+dx] = true
			}
		}
	}
	out := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !tmp[y*w+x] {
				continue
			}
			for dy := max(0, y-r); dy <= min(h-1, y+r); dy++ {
				out[dy*w+x] = true
			}
		}
	}
	return out
}

// components returns the bounding box of every 4-connected set region.
func components(set []bool, w, h int) []image.Rectangle {
	visited := make([]bool, w*h)
	var rects []image.Rectangle
	var stack []int

	for start := range set {
		if !set[start] || visited[start] {
			continue
		}
		minX, minY := start%w, start/w
		maxX, maxY := minX, minY

		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			push := func(j int) {
				if set[j] && !visited[j] {
					visited[j] = true
					stack = append(stack, j)
				}
			}
			if x > 0 {
				push(i - 1)
			}
			if x < w-1 {
				push(i + 1)
			}
			if y > 0 {
				push(i - w)
			}
			if y < h-1 {
				push(i + w)
			}
		}
		rects = append(rects, image.Rect(minX, minY, maxX+1, maxY+1))
	}
	return rects
}
