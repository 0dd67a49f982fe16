package wave

import (
	"strconv"
)

// Expand expands a comma separated line name specification, turning a
// bus declaration into individual line names. For example:
//
//	Expand("rx[3], scl") // returns []string{"rx0", "rx1", "rx2", "scl"}
//
func Expand(names string) ([]string, error) {
	var out []string

	i := 0
	for i < len(names) {
		for i < len(names) && (names[i] == ' ' || names[i] == '\t' || names[i] == ',') {
			i++
		}
		if i >= len(names) {
			break
		}
		if !identStart(names[i]) {
			return nil, parseError(names, i, "expected line name")
		}
		start := i
		for i < len(names) && identRune(names[i]) {
			i++
		}
		name := names[start:i]
		if i < len(names) && names[i] == '[' {
			j := i + 1
			n := 0
			for ; j < len(names) && '0' <= names[j] && names[j] <= '9'; j++ {
				n = n*10 + int(names[j]-'0')
			}
			if j == i+1 {
				return nil, parseError(names, j, "missing bus size")
			}
			if j >= len(names) || names[j] != ']' {
				return nil, parseError(names, j, "missing close bracket")
			}
			if n == 0 {
				return nil, parseError(names, i+1, "bus size must be positive")
			}
			for k := 0; k < n; k++ {
				out = append(out, name+strconv.Itoa(k))
			}
			i = j + 1
		} else {
			out = append(out, name)
		}
		// after a name, expect comma or end of input
		for i < len(names) && (names[i] == ' ' || names[i] == '\t') {
			i++
		}
		if i < len(names) && names[i] != ',' {
			return nil, parseError(names, i, "expected comma or end of input")
		}
	}
	return out, nil
}

func identStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func identRune(c byte) bool {
	return identStart(c) || '0' <= c && c <= '9'
}
