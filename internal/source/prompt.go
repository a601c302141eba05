package source

import (
	"fmt"
	"strings"
)

const requestTemplate = "Convert this mathematical concept into a sequence of animation instructions. " +
	"Format the response as a JSON array of animation objects with 'type', 'parameters', and 'duration' fields. " +
	"Only use these animation types: 'circle', 'vector', 'matrix', 'graph', 'transform'. Prompt: %s"

// PromptOptions tunes the request text. The zero value sends the bare
// instruction-format request.
type PromptOptions struct {
	Level  string // basic, intermediate, advanced
	Style  string // fun, serious, educational
	Enrich bool
}

type topic struct {
	name     string
	keywords []string
}

// ordered: first topic with a matching keyword wins
var topics = []topic{
	{"calculus", []string{"derivative", "integral", "limit", "differentiation", "integration"}},
	{"algebra", []string{"equation", "factor", "solve", "polynomial", "quadratic"}},
	{"geometry", []string{"circle", "triangle", "area", "pythagorean", "perimeter", "volume"}},
	{"linear algebra", []string{"matrix", "vector", "eigenvalue", "determinant", "transformation"}},
	{"statistics", []string{"probability", "distribution", "mean", "median", "standard deviation"}},
	{"trigonometry", []string{"sine", "cosine", "tangent", "angle", "trigonometric"}},
}

var contextNotes = []struct {
	key  string
	note string
}{
	{"pythagorean", "The Pythagorean theorem states that in a right-angled triangle, the square of the hypotenuse is equal to the sum of the squares of the other two sides."},
	{"derivative", "The derivative of a function represents the rate at which the function value changes as its input changes. Visualize it as the slope of a tangent line."},
	{"matrix multiplication", "Matrix multiplication involves taking the dot product of rows and columns. Animate using two matrices and their product step-by-step."},
	{"integration", "Integration is the process of finding the area under a curve. Show the Riemann sum approximation and its convergence to the actual area."},
	{"eigenvalue", "Eigenvalues represent the scaling factor of eigenvectors in a linear transformation. Visualize how vectors are scaled but maintain their direction."},
	{"probability", "Probability measures the likelihood of an event occurring. Show the sample space and how probabilities are calculated."},
}

var styleHints = map[string]string{
	"fun":         "Use playful colors and smooth transitions.",
	"serious":     "Focus on precise mathematical accuracy.",
	"educational": "Break the concept down into clear, digestible steps.",
}

var levelHints = map[string]string{
	"basic":        "Keep it simple and intuitive with few objects.",
	"intermediate": "Combine a few primitives to show the key relationship.",
	"advanced":     "Use several coordinated primitives to show deeper structure.",
}

// DetectTopic returns the first topic whose keyword occurs in the prompt, or
// "general".
func DetectTopic(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.name
			}
		}
	}
	return "general"
}

// Enrich appends a short context note for well-known concepts.
func Enrich(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, c := range contextNotes {
		if strings.Contains(lower, c.key) {
			return prompt + ". Context: " + c.note
		}
	}
	return prompt
}

// BuildRequest embeds the prompt in the instruction-format request.
func BuildRequest(prompt string, opts PromptOptions) string {
	if !opts.Enrich {
		return fmt.Sprintf(requestTemplate, prompt)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf(requestTemplate, Enrich(prompt)))
	fmt.Fprintf(&b, "\nTopic: %s.", DetectTopic(prompt))
	if hint := levelHints[strings.ToLower(opts.Level)]; hint != "" {
		fmt.Fprintf(&b, "\nAudience level: %s. %s", opts.Level, hint)
	}
	if hint := styleHints[strings.ToLower(opts.Style)]; hint != "" {
		fmt.Fprintf(&b, "\nStyle: %s. %s", opts.Style, hint)
	}
	return b.String()
}
