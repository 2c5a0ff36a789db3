package parser

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be located in a model response.
var ErrNoJSON = errors.New("no JSON object found in response")

// ExtractJSONObject locates the first '{' in a free-text model response and
// scans forward counting brace depth until the matching '}' is found. Braces
// inside string literals are ignored. Model responses are not guaranteed to
// be pure JSON, so surrounding prose and markdown fences are tolerated.
func ExtractJSONObject(response string) (string, error) {
	start := strings.IndexByte(response, '{')
	if start == -1 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSON
}

// ParseObject extracts the first JSON object from a model response and
// unmarshals it into out. Parse failure is reported as an error for the
// caller to degrade on, never a panic.
func ParseObject(response string, out any) error {
	cleaned := strings.TrimSpace(response)
	obj, err := ExtractJSONObject(cleaned)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return errors.New("failed to parse JSON response: " + err.Error())
	}
	return nil
}

// ParseCoordinates parses a vision-model response expected to contain one
// JSON object mapping part labels to {x,y} coordinate pairs. Non-numeric or
// missing coordinates for a label are simply absent from the result.
func ParseCoordinates(response string) (map[string][2]float64, error) {
	obj, err := ExtractJSONObject(strings.TrimSpace(response))
	if err != nil {
		return nil, err
	}

	var raw map[string]map[string]float64
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, errors.New("failed to parse coordinate response: " + err.Error())
	}

	coords := make(map[string][2]float64, len(raw))
	for label, pair := range raw {
		x, okX := pair["x"]
		y, okY := pair["y"]
		if !okX || !okY {
			continue
		}
		coords[label] = [2]float64{x, y}
	}
	return coords, nil
}
