// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package glitchmon

import "github.com/pkg/errors"

// Array capacity and channel count limits. The hardware always carries
// Capacity detector slots; the configured channel count only selects how
// many of them are wired to real lines.
const (
	Capacity    = 14
	MinChannels = 3
)

// Per-channel pulse-width thresholds. The first two channels monitor a
// clock/data pair with the full 7-tick threshold; the remaining channels
// are general-purpose lines with a tighter one.
const (
	pairWidth = 7
	auxWidth  = 3
)

// An Array is the fixed bank of channel detectors.
//
// Channel 0 monitors a clock-like line and is always enabled. Channel 1
// monitors the companion data-like line and detects only while channel
// 0's debounced level is high. Channels 2 and up are independent.
// Slots at or beyond the configured channel count stay at zero whatever
// is driven on the corresponding physical lines.
//
type Array struct {
	n   int
	det [Capacity]Detector
}

// NewArray returns an Array with channels active detectors.
//
func NewArray(channels int) (*Array, error) {
	if channels < MinChannels || channels > Capacity {
		return nil, errors.Errorf("channel count %d out of range %d..%d", channels, MinChannels, Capacity)
	}
	a := &Array{n: channels}
	for i := range a.det {
		w := auxWidth
		if i < 2 {
			w = pairWidth
		}
		if err := a.det[i].init(w); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Channels returns the configured active channel count.
//
func (a *Array) Channels() int { return a.n }

// Step advances every active channel by one tick. lines carries the raw
// samples in channel order; missing entries are tied low. clear is
// broadcast to all channels.
//
// The gating level for channel 1 is sampled before any channel advances,
// so every detector steps from previous-tick state only and the update
// order is free.
//
func (a *Array) Step(lines []bool, clear bool) {
	gate := a.det[0].Level()
	for i := 0; i < a.n; i++ {
		a.step(i, line(lines, i), gate, clear)
	}
}

// step advances channel i alone. gate must be channel 0's debounced
// level sampled before this tick's updates.
//
func (a *Array) step(i int, raw, gate, clear bool) {
	enable := true
	if i == 1 {
		enable = gate
	}
	a.det[i].Step(raw, enable, clear)
}

func line(lines []bool, i int) bool {
	if i < len(lines) {
		return lines[i]
	}
	return false
}

// Count returns the glitch counter of channel i, zero for any slot at or
// beyond the configured channel count.
//
func (a *Array) Count(i int) uint32 {
	if i < 0 || i >= a.n {
		return 0
	}
	return a.det[i].Count()
}

// Width returns the last-glitch width of channel i, zero-extended, zero
// for any slot at or beyond the configured channel count.
//
func (a *Array) Width(i int) uint32 {
	if i < 0 || i >= a.n {
		return 0
	}
	return a.det[i].LastWidth()
}

// Level returns the debounced level of channel i.
//
func (a *Array) Level(i int) bool {
	if i < 0 || i >= a.n {
		return false
	}
	return a.det[i].Level()
}
