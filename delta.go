package glitchmon

// Channel assignment of the monitored lines on the S9 wiring: the I2C
// clock/data pair on the gated channels, then one UART RX line per
// hashboard connector.
const (
	ChanI2CSCL = 0
	ChanI2CSDA = 1
	ChanJ6RX   = 2
	ChanJ7RX   = 3
	ChanJ8RX   = 4
)

// A Snapshot is one reading of every channel's glitch counter.
//
type Snapshot struct {
	Chan [Capacity]uint32
}

// Sub returns the per-channel difference s - prev with uint32 wraparound,
// the number of glitches accumulated between the two snapshots.
//
func (s Snapshot) Sub(prev Snapshot) Snapshot {
	var out Snapshot
	for i := range out.Chan {
		out.Chan[i] = s.Chan[i] - prev.Chan[i]
	}
	return out
}

// Glitches is a Snapshot reduced to the lines relevant to one hashboard.
//
type Glitches struct {
	I2CSCL uint32
	I2CSDA uint32
	UARTRx uint32
}

// Board returns the glitch figures for the hashboard in the given
// connector slot (6 to 8). The I2C lines are shared across boards.
//
func (s Snapshot) Board(slot int) Glitches {
	g := Glitches{
		I2CSCL: s.Chan[ChanI2CSCL],
		I2CSDA: s.Chan[ChanI2CSDA],
	}
	switch slot {
	case 6:
		g.UARTRx = s.Chan[ChanJ6RX]
	case 7:
		g.UARTRx = s.Chan[ChanJ7RX]
	case 8:
		g.UARTRx = s.Chan[ChanJ8RX]
	default:
		panic("BUG: unsupported board slot")
	}
	return g
}

// A DeltaReader keeps tabs on the hardware counters and computes the
// difference to its previous reading, so callers see new glitches per
// polling interval instead of lifetime totals.
//
type DeltaReader struct {
	c    *Core
	last Snapshot
}

// NewDeltaReader returns a DeltaReader seeded with the core's current
// counters, read over the bus.
//
func NewDeltaReader(c *Core) *DeltaReader {
	return &DeltaReader{c: c, last: ReadSnapshot(c)}
}

// Fetch reads the counters over the bus, returns the difference since the
// previous reading and advances the baseline.
//
func (r *DeltaReader) Fetch() Snapshot {
	cur := ReadSnapshot(r.c)
	diff := cur.Sub(r.last)
	r.last = cur
	return diff
}

// ReadSnapshot reads every channel's glitch counter through the register
// bus. Inactive slots read zero.
//
func ReadSnapshot(c *Core) Snapshot {
	var s Snapshot
	for i := range s.Chan {
		s.Chan[i], _ = c.Read(CountReg(i))
	}
	return s
}
