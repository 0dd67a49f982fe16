// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package glitchmon

import "github.com/pkg/errors"

// MaxPulseWidth is the largest pulse-width threshold a Detector can be
// instantiated with. The last-glitch width register is 3 bits wide, so
// thresholds above 7 could record widths that do not fit.
const MaxPulseWidth = 7

// A Detector watches a single binary line, one sample per tick, and flags
// transitions that occur before the previous transition's pulse has lasted
// its expected minimum width.
//
// The raw sample is first pushed through a 4-stage debounce window; edge
// detection runs on the level two stages deep, so the detector sees the
// line with a two tick delay and free of sub-tick noise. A pulse-width
// counter measures the spacing between edges in ticks: an edge arriving
// while the counter is mid-count is a glitch, while a counter that runs
// the full threshold resets silently (a clean half-period).
//
type Detector struct {
	maxWidth uint32

	window uint8 // last 4 raw samples, most recent in bit 0
	synced bool  // debounced level, window bit 2
	prev   bool  // synced one tick ago
	pulse  uint32
	count  uint32 // wraps at 2^32, never saturates
	width  uint32 // pulse counter captured at the last glitch
}

// NewDetector returns a Detector with the given pulse-width threshold.
// The threshold must be in the range 1 to MaxPulseWidth; spacings of
// maxWidth ticks or more between edges are considered clean.
//
func NewDetector(maxWidth int) (*Detector, error) {
	d := &Detector{}
	if err := d.init(maxWidth); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Detector) init(maxWidth int) error {
	if maxWidth < 1 || maxWidth > MaxPulseWidth {
		return errors.Errorf("pulse width threshold %d out of range 1..%d", maxWidth, MaxPulseWidth)
	}
	d.maxWidth = uint32(maxWidth)
	return nil
}

// Step advances the detector by one tick and reports whether a glitch
// fired on this tick.
//
// enable gates glitch detection only: with enable low, edges still drive
// the pulse counter so width tracking continues, but no glitch is flagged
// or counted. clear zeroes the glitch counter and last-glitch width on
// this tick and wins over a simultaneous glitch.
//
func (d *Detector) Step(raw, enable, clear bool) bool {
	d.window <<= 1
	if raw {
		d.window |= 1
	}
	d.window &= 0xf
	d.prev = d.synced
	d.synced = d.window&0x4 != 0

	edge := d.synced != d.prev
	glitch := edge && d.pulse != 0 && enable
	w := d.pulse

	switch {
	case glitch:
		d.pulse = 0
	case d.pulse != 0 || edge:
		d.pulse++
		if d.pulse == d.maxWidth {
			d.pulse = 0
		}
	}

	switch {
	case clear:
		d.count = 0
		d.width = 0
	case glitch:
		d.count++
		d.width = w
	}
	return glitch
}

// Count returns the number of glitches seen since the last clear,
// modulo 2^32.
//
func (d *Detector) Count() uint32 { return d.count }

// LastWidth returns the pulse counter value captured at the most recent
// glitch, zero if none fired since the last clear.
//
func (d *Detector) LastWidth() uint32 { return d.width }

// Level returns the debounced level of the monitored line.
//
func (d *Detector) Level() bool { return d.synced }
