package instruction

import (
	"encoding/json"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Params maps parameter names to numbers, arrays or colors as decoded from
// JSON or YAML. Lookups never fail: a missing or unusable value yields the
// caller's default.
type Params map[string]any

var namedColors = map[string]uint32{
	"red":     0xff0000,
	"green":   0x00ff00,
	"blue":    0x0000ff,
	"white":   0xffffff,
	"black":   0x000000,
	"yellow":  0xffff00,
	"cyan":    0x00ffff,
	"magenta": 0xff00ff,
	"purple":  0x8b5cf6,
	"orange":  0xffa500,
	"gray":    0x888888,
	"grey":    0x888888,
}

// Float returns the named number or def.
func (p Params) Float(name string, def float64) float64 {
	v, ok := p[name]
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// Int returns the named number truncated to an int, or def. Values outside
// the int32 range saturate.
func (p Params) Int(name string, def int) int {
	f := p.Float(name, math.NaN())
	if math.IsNaN(f) {
		return def
	}
	return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, f)))
}

// Color accepts 0xRRGGBB integers, "#rrggbb" / "0xrrggbb" strings and a
// handful of names.
func (p Params) Color(name string, def uint32) color.RGBA {
	v, ok := p[name]
	if !ok {
		return RGB(def)
	}
	if hex, ok := toColor(v); ok {
		return RGB(hex)
	}
	return RGB(def)
}

// Points returns a list of 3-vectors. Two-component entries get z = 0. Any
// malformed entry makes the whole value fall back to def.
func (p Params) Points(name string, def [][3]float64) [][3]float64 {
	v, ok := p[name]
	if !ok {
		return clonePoints(def)
	}
	var items []any
	switch vv := v.(type) {
	case []any:
		items = vv
	case [][3]float64:
		return clonePoints(vv)
	case [][]float64:
		items = make([]any, len(vv))
		for i := range vv {
			items[i] = vv[i]
		}
	default:
		return clonePoints(def)
	}
	if len(items) == 0 {
		return clonePoints(def)
	}

	out := make([][3]float64, 0, len(items))
	for _, item := range items {
		pt, ok := toPoint(item)
		if !ok {
			return clonePoints(def)
		}
		out = append(out, pt)
	}
	return out
}

// Clone deep-copies nested slices and maps.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// RGB converts 0xRRGGBB into an opaque color.
func RGB(hex uint32) color.RGBA {
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

// ParseColor parses the string color forms accepted in parameters.
func ParseColor(s string) (uint32, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		return hex, true
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	if len(s) != 6 {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toColor(v any) (uint32, bool) {
	if s, ok := v.(string); ok {
		return ParseColor(s)
	}
	f, ok := toFloat(v)
	if !ok || f < 0 || f > 0xffffff {
		return 0, false
	}
	return uint32(f), true
}

func toPoint(v any) ([3]float64, bool) {
	var pt [3]float64
	var comps []any
	switch vv := v.(type) {
	case []any:
		comps = vv
	case []float64:
		comps = make([]any, len(vv))
		for i := range vv {
			comps[i] = vv[i]
		}
	case [3]float64:
		return vv, true
	default:
		return pt, false
	}
	if len(comps) < 2 || len(comps) > 3 {
		return pt, false
	}
	for i, c := range comps {
		f, ok := toFloat(c)
		if !ok {
			return pt, false
		}
		pt[i] = f
	}
	return pt, true
}

func clonePoints(pts [][3]float64) [][3]float64 {
	if pts == nil {
		return nil
	}
	out := make([][3]float64, len(pts))
	copy(out, pts)
	return out
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case []any:
		out := make([]any, len(vv))
		for i := range vv {
			out[i] = cloneValue(vv[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, x := range vv {
			out[k] = cloneValue(x)
		}
		return out
	case [][3]float64:
		return clonePoints(vv)
	case []float64:
		out := make([]float64, len(vv))
		copy(out, vv)
		return out
	default:
		return v
	}
}
