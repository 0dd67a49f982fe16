// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package modeltest provides utility functions for testing glitch
// detector implementations against a naive reference model.
//
package modeltest

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/db47h/glitchmon"
)

// reference reimplements the detector contract the slow, obvious way:
// it keeps the whole raw sample history and recomputes the debounced
// levels from it each tick instead of maintaining a shift register.
type reference struct {
	maxWidth int

	raw   []bool
	pulse int
	count uint32
	width uint32
}

func (r *reference) step(raw, enable, clear bool) bool {
	r.raw = append(r.raw, raw)
	t := len(r.raw) - 1
	synced := t >= 2 && r.raw[t-2]
	prev := t >= 3 && r.raw[t-3]
	edge := synced != prev

	glitch := edge && r.pulse != 0 && enable
	w := r.pulse
	switch {
	case glitch:
		r.pulse = 0
	case r.pulse != 0 || edge:
		r.pulse++
		if r.pulse == r.maxWidth {
			r.pulse = 0
		}
	}
	switch {
	case clear:
		r.count, r.width = 0, 0
	case glitch:
		r.count++
		r.width = uint32(w)
	}
	return glitch
}

// CompareDetector drives a Detector with the given width threshold and
// the reference model with identical random stimulus, including enable
// and clear toggling, and fails on any divergence in event timing,
// counter or width.
//
func CompareDetector(t *testing.T, maxWidth int) {
	rapid.Check(t, func(rt *rapid.T) {
		d, err := glitchmon.NewDetector(maxWidth)
		if err != nil {
			rt.Fatal(err)
		}
		ref := &reference{maxWidth: maxWidth}

		ticks := rapid.IntRange(1, 256).Draw(rt, "ticks")
		for i := 0; i < ticks; i++ {
			raw := rapid.Bool().Draw(rt, "raw")
			enable := rapid.IntRange(0, 3).Draw(rt, "enable") != 0
			clear := rapid.IntRange(0, 15).Draw(rt, "clear") == 0

			got := d.Step(raw, enable, clear)
			want := ref.step(raw, enable, clear)
			if got != want {
				rt.Fatalf("tick %d (raw=%v enable=%v clear=%v): glitch event %v, reference %v",
					i, raw, enable, clear, got, want)
			}
			if d.Count() != ref.count || d.LastWidth() != ref.width {
				rt.Fatalf("tick %d: count/width (%d, %d), reference (%d, %d)",
					i, d.Count(), d.LastWidth(), ref.count, ref.width)
			}
		}
	})
}
