package instruction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoArray   = errors.New("response does not contain a JSON array")
	ErrEmptyList = errors.New("instruction array is empty")
)

// Extract returns the text between the first '[' and the last ']'.
func Extract(text string) (string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoArray
	}
	return text[start : end+1], nil
}

// Parse extracts and validates an instruction array from free text. A single
// invalid element rejects the whole batch.
func Parse(text string) ([]Instruction, error) {
	payload, err := Extract(text)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode instruction array: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyList
	}

	list := make([]Instruction, 0, len(raw))
	for i, el := range raw {
		in, err := decodeElement(el)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		list = append(list, in)
	}
	return list, nil
}

func decodeElement(data json.RawMessage) (Instruction, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Instruction{}, fmt.Errorf("element is not an object: %w", err)
	}

	var in Instruction

	var typ string
	if err := json.Unmarshal(fields["type"], &typ); err != nil {
		return in, fmt.Errorf("%w: type must be a string", ErrUnknownType)
	}
	t, ok := ParseType(typ)
	if !ok {
		return in, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	in.Type = t

	rawParams, ok := fields["parameters"]
	if !ok {
		return in, ErrMissingParams
	}
	dec := json.NewDecoder(bytes.NewReader(rawParams))
	dec.UseNumber()
	var params map[string]any
	if err := dec.Decode(&params); err != nil || params == nil {
		return in, ErrMissingParams
	}
	in.Parameters = normalizeNumbers(params).(map[string]any)

	rawDuration, ok := fields["duration"]
	if !ok {
		return in, fmt.Errorf("%w: missing", ErrInvalidDuration)
	}
	var d float64
	if err := json.Unmarshal(rawDuration, &d); err != nil {
		return in, fmt.Errorf("%w: not a number", ErrInvalidDuration)
	}
	in.Duration = d

	return in, in.Validate()
}

// normalizeNumbers turns json.Number leaves into float64 so Params never has
// to care which decoder produced it.
func normalizeNumbers(v any) any {
	switch vv := v.(type) {
	case json.Number:
		if f, err := vv.Float64(); err == nil {
			return f
		}
		return vv.String()
	case []any:
		for i := range vv {
			vv[i] = normalizeNumbers(vv[i])
		}
		return vv
	case map[string]any:
		for k := range vv {
			vv[k] = normalizeNumbers(vv[k])
		}
		return vv
	default:
		return v
	}
}

// Marshal renders a list as indented JSON.
func Marshal(list []Instruction) ([]byte, error) {
	return json.MarshalIndent(list, "", "  ")
}
