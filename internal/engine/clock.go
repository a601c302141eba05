package engine

import (
	"fmt"
	"math"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/instruction"
)

// tickEpsilon absorbs float noise such as 0.1*30 = 3.0000000000000004.
const tickEpsilon = 1e-9

// MaxTicks bounds one clip. An hour at 60 fps fits with room to spare.
const MaxTicks = 1 << 20

// Clock maps tick indices to time for one render.
type Clock struct {
	FPS   int
	Total float64 // seconds
}

func NewClock(fps int, total float64) (Clock, error) {
	if fps <= 0 {
		return Clock{}, fmt.Errorf("%w: fps must be positive, got %d", config.ErrInvalid, fps)
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return Clock{}, fmt.Errorf("%w: clip duration must be positive, got %v", config.ErrInvalid, total)
	}
	if n := total * float64(fps); math.IsInf(n, 0) || n > MaxTicks {
		return Clock{}, fmt.Errorf("%w: %vs at %d fps exceeds %d frames", config.ErrInvalid, total, fps, MaxTicks)
	}
	return Clock{FPS: fps, Total: total}, nil
}

// Ticks is ceil(Total * FPS), at least 1.
func (c Clock) Ticks() int {
	n := int(math.Ceil(c.Total*float64(c.FPS) - tickEpsilon))
	if n < 1 {
		return 1
	}
	return n
}

func (c Clock) Elapsed(i int) float64 {
	return float64(i) / float64(c.FPS)
}

// Normalized is Elapsed(i)/Total, clamped to 1 for the final partial tick.
func (c Clock) Normalized(i int) float64 {
	n := c.Elapsed(i) / c.Total
	if n > 1 {
		return 1
	}
	return n
}

// TotalDuration is the override when positive, otherwise the longest
// instruction.
func TotalDuration(list []instruction.Instruction, override float64) float64 {
	if override > 0 {
		return override
	}
	return instruction.MaxDuration(list)
}
