package codec

import "fmt"

// CheckDepth rejects JSON nested deeper than maxDepth. Brackets inside strings
// are ignored; balance is left to the JSON parser.
func CheckDepth(data []byte, maxDepth int) error {
	depth := 0
	inString := false
	escaped := false

	for _, b := range data {
		if escaped {
			escaped = false
			continue
		}
		if b == '\\' && inString {
			escaped = true
			continue
		}
		if b == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch b {
		case '{', '[':
			depth++
			if depth > maxDepth {
				return fmt.Errorf("JSON nesting too deep: %d > %d", depth, maxDepth)
			}
		case '}', ']':
			depth--
		}
	}
	return nil
}
