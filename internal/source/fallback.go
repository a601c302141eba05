package source

import (
	"math"
	"strings"

	"github.com/ivlev/math2video/internal/instruction"
)

const fallbackDuration = 5.0

// KeywordGroup is one row of the fallback table.
type KeywordGroup struct {
	Name     string
	Keywords []string
	build    func() []instruction.Instruction
}

// Instructions returns a fresh copy of the group's canned list.
func (g KeywordGroup) Instructions() []instruction.Instruction {
	return g.build()
}

// checked in order, first match wins
var keywordGroups = []KeywordGroup{
	{Name: "eigen", Keywords: []string{"eigen"}, build: eigenScene},
	{Name: "fourier", Keywords: []string{"fourier", "series"}, build: fourierScene},
	{Name: "matrix", Keywords: []string{"matrix", "transformation"}, build: matrixScene},
	{Name: "vector", Keywords: []string{"vector", "projection"}, build: vectorScene},
	{Name: "function", Keywords: []string{"function", "graph"}, build: functionScene},
}

var defaultGroup = KeywordGroup{Name: "default", build: defaultScene}

// Keywords lists the fallback table in priority order, default last.
func Keywords() []KeywordGroup {
	out := make([]KeywordGroup, 0, len(keywordGroups)+1)
	for _, g := range keywordGroups {
		g.Keywords = append([]string(nil), g.Keywords...)
		out = append(out, g)
	}
	return append(out, defaultGroup)
}

// Match returns the group selected for a prompt.
func Match(prompt string) KeywordGroup {
	lower := strings.ToLower(prompt)
	for _, g := range keywordGroups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g
			}
		}
	}
	return defaultGroup
}

// Fallback synthesizes an instruction list from the prompt alone. It is pure:
// the same prompt, in any letter case, always yields an equal list, and every
// call returns newly allocated instructions.
func Fallback(prompt string) []instruction.Instruction {
	return Match(prompt).build()
}

func item(t instruction.Type, params instruction.Params) instruction.Instruction {
	return instruction.Instruction{Type: t, Parameters: params, Duration: fallbackDuration}
}

func eigenScene() []instruction.Instruction {
	return []instruction.Instruction{
		item(instruction.Vector, instruction.Params{"x": 1.0, "y": 0.0, "z": 0.0, "length": 2.0, "color": 0xff0000}),
		item(instruction.Vector, instruction.Params{"x": 0.0, "y": 1.0, "z": 0.0, "length": 1.0, "color": 0x00ff00}),
		item(instruction.Matrix, instruction.Params{"size": 3.0, "divisions": 10}),
	}
}

func fourierScene() []instruction.Instruction {
	return []instruction.Instruction{
		item(instruction.Circle, instruction.Params{"radius": 1.0, "color": 0x3b82f6}),
		item(instruction.Circle, instruction.Params{"radius": 0.5, "color": 0x8b5cf6}),
	}
}

func matrixScene() []instruction.Instruction {
	return []instruction.Instruction{
		item(instruction.Matrix, instruction.Params{"size": 3.0, "divisions": 10, "color1": 0x888888, "color2": 0x444444}),
		item(instruction.Transform, instruction.Params{"scale": 2.0, "rotateX": math.Pi / 4, "rotateY": math.Pi / 4, "rotateZ": 0.0}),
	}
}

func vectorScene() []instruction.Instruction {
	return []instruction.Instruction{
		item(instruction.Vector, instruction.Params{"x": 1.0, "y": 1.0, "z": 0.0, "length": 2.0, "color": 0x3b82f6}),
		item(instruction.Vector, instruction.Params{"x": 1.0, "y": 0.0, "z": 0.0, "length": 1.0, "color": 0xff0000}),
	}
}

func functionScene() []instruction.Instruction {
	return []instruction.Instruction{
		item(instruction.Graph, instruction.Params{
			"points": []any{
				[]any{-1.0, -1.0, 0.0},
				[]any{0.0, 0.0, 0.0},
				[]any{1.0, 1.0, 0.0},
			},
			"color": 0xff00ff,
		}),
	}
}

func defaultScene() []instruction.Instruction {
	return []instruction.Instruction{
		item(instruction.Circle, instruction.Params{"radius": 1.5, "color": 0x3b82f6}),
		item(instruction.Vector, instruction.Params{"x": 1.0, "y": 1.0, "z": 0.0, "length": 2.0, "color": 0x8b5cf6}),
	}
}
