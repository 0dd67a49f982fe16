// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package glitchmon

// Register map. The core decodes a flat 5-bit index: one control
// register, three scratch registers reserved for future use, then a
// (count, width) register pair per channel slot.
const (
	RegControl  = 0 // control, bit 0 clears all counters (self-clearing)
	RegScratch1 = 1
	RegScratch2 = 2
	RegScratch3 = 3

	regChanBase = 4
	NumRegs     = 32
	addrMask    = NumRegs - 1
)

// CtlClear is the self-clearing clear-all bit of the control register.
const CtlClear uint32 = 1 << 0

// StrobeAll enables all four byte lanes of a write.
const StrobeAll uint8 = 0xf

// CountReg returns the register index of channel i's glitch counter.
//
func CountReg(i int) uint8 { return uint8(regChanBase + 2*i) }

// WidthReg returns the register index of channel i's last-glitch width.
//
func WidthReg(i int) uint8 { return uint8(regChanBase + 2*i + 1) }

// A RegFile holds the writable registers of the core and decodes bus
// accesses. Channel counters are served read-only straight from the
// detector array; writes outside the control and scratch registers are
// accepted and silently discarded, mirroring an address decode with no
// error path.
//
type RegFile struct {
	control uint32
	scratch [3]uint32
	clear   bool // one-tick clear pulse raised by a control write
	drop    bool // self-clear CtlClear at the start of the next tick
}

// BeginTick applies the scheduled self-clear of the control clear bit.
// Must run once at the start of every tick, before reads are served.
//
func (r *RegFile) BeginTick() {
	if r.drop {
		r.control &^= CtlClear
		r.drop = false
	}
}

// Write applies a byte-strobed write to the addressed register.
//
func (r *RegFile) Write(addr uint8, data uint32, strobe uint8) {
	switch addr & addrMask {
	case RegControl:
		r.control = mergeBytes(r.control, data, strobe)
		if r.control&CtlClear != 0 {
			r.clear = true
			r.drop = true
		}
	case RegScratch1, RegScratch2, RegScratch3:
		i := addr&addrMask - RegScratch1
		r.scratch[i] = mergeBytes(r.scratch[i], data, strobe)
	}
}

// TakeClear consumes the pending clear pulse. The pulse is an explicit
// one-tick event so unrelated control writes cannot re-trigger a clear.
//
func (r *RegFile) TakeClear() bool {
	c := r.clear
	r.clear = false
	return c
}

// Read decodes the addressed register against the given detector array.
//
func (r *RegFile) Read(a *Array, addr uint8) uint32 {
	addr &= addrMask
	switch {
	case addr == RegControl:
		return r.control
	case addr <= RegScratch3:
		return r.scratch[addr-RegScratch1]
	default:
		i := int(addr-regChanBase) / 2
		if addr&1 == 0 {
			return a.Count(i)
		}
		return a.Width(i)
	}
}

func mergeBytes(old, data uint32, strobe uint8) uint32 {
	for i := uint(0); i < 4; i++ {
		if strobe&(1<<i) != 0 {
			mask := uint32(0xff) << (8 * i)
			old = old&^mask | data&mask
		}
	}
	return old
}
