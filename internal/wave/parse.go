// Package wave parses textual waveform patterns into per-tick level
// sequences, for driving simulated input lines from tests and scenario
// files.
//
// A pattern is a sequence of levels, each optionally followed by a
// repeat count in parentheses:
//
//	1(8)0(8)1.0
//
// drives eight ticks high, eight low, then high, high again (`.` holds
// the previous level) and low. Spaces are ignored.
//
package wave

import "github.com/pkg/errors"

// Parse expands a waveform pattern into one level per tick.
//
func Parse(s string) ([]bool, error) {
	var out []bool
	haveLevel := false
	level := false

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ', '\t':
			continue
		case '0', '1':
			level = c == '1'
			haveLevel = true
		case '.':
			if !haveLevel {
				return nil, parseError(s, i, "hold with no previous level")
			}
		case '(':
			return nil, parseError(s, i, "repeat count with no level")
		default:
			return nil, parseError(s, i, "expected 0, 1 or .")
		}

		n := 1
		if i+1 < len(s) && s[i+1] == '(' {
			j := i + 2
			n = 0
			for ; j < len(s) && '0' <= s[j] && s[j] <= '9'; j++ {
				n = n*10 + int(s[j]-'0')
			}
			if j == i+2 {
				return nil, parseError(s, j, "missing repeat count")
			}
			if j >= len(s) || s[j] != ')' {
				return nil, parseError(s, j, "missing close parenthesis")
			}
			if n == 0 {
				return nil, parseError(s, i+2, "repeat count must be positive")
			}
			i = j
		}
		for ; n > 0; n-- {
			out = append(out, level)
		}
	}
	return out, nil
}

// Square returns ticks levels of a square wave toggling every half ticks,
// starting high.
//
func Square(half, ticks int) []bool {
	out := make([]bool, ticks)
	level := true
	for i := 0; i < ticks; i++ {
		if i > 0 && i%half == 0 {
			level = !level
		}
		out[i] = level
	}
	return out
}

// At returns the level driven at tick i: the pattern level while the
// pattern lasts, then the last level held forever. Empty patterns hold
// low.
//
func At(p []bool, i int) bool {
	switch {
	case len(p) == 0:
		return false
	case i < len(p):
		return p[i]
	default:
		return p[len(p)-1]
	}
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
