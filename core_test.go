package glitchmon_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/db47h/glitchmon"
	"github.com/db47h/glitchmon/internal/wave"
)

func newCore(t *testing.T, channels int) *glitchmon.Core {
	t.Helper()
	c, err := glitchmon.New(channels, glitchmon.WithWorkers(2))
	require.NoError(t, err)
	t.Cleanup(c.Dispose)
	return c
}

func TestNew_badConfig(t *testing.T) {
	_, err := glitchmon.New(2)
	require.Error(t, err)
	_, err = glitchmon.New(glitchmon.Capacity + 1)
	require.Error(t, err)
}

func TestCore_scratchRoundTrip(t *testing.T) {
	c := newCore(t, 3)
	for i, v := range []uint32{0x01020304, 0xcafebabe, 0xffffffff} {
		addr := uint8(glitchmon.RegScratch1 + i)
		require.Equal(t, glitchmon.StatusOK, c.Write(addr, v, glitchmon.StrobeAll))
		got, st := c.Read(addr)
		require.Equal(t, glitchmon.StatusOK, st)
		require.Equal(t, v, got, "reg %d", addr)
	}

	// control bits other than the clear bit are plain storage
	c.Write(glitchmon.RegControl, 0xa0, glitchmon.StrobeAll)
	got, _ := c.Read(glitchmon.RegControl)
	require.Equal(t, uint32(0xa0), got)
}

func TestCore_singleOutstandingWrite(t *testing.T) {
	c := newCore(t, 3)
	require.True(t, c.WriteAddr(glitchmon.RegScratch1))
	require.False(t, c.WriteAddr(glitchmon.RegScratch2), "second address must stall")
	require.True(t, c.WriteData(1, glitchmon.StrobeAll))
	require.False(t, c.WriteData(2, glitchmon.StrobeAll), "second data must stall")

	c.Step()

	// committed, response pending: still single-outstanding
	require.False(t, c.WriteAddr(glitchmon.RegScratch2))
	require.False(t, c.WriteData(2, glitchmon.StrobeAll))

	st, ok := c.WriteResp()
	require.True(t, ok)
	require.Equal(t, glitchmon.StatusOK, st)
	_, ok = c.WriteResp()
	require.False(t, ok, "response must be consumed exactly once")

	require.True(t, c.WriteAddr(glitchmon.RegScratch2))
}

// Address and data may arrive in either order; the write commits on the
// first tick with both captured.
func TestCore_writeDataBeforeAddress(t *testing.T) {
	c := newCore(t, 3)
	require.True(t, c.WriteData(0x55, glitchmon.StrobeAll))
	c.Step()
	_, ok := c.WriteResp()
	require.False(t, ok, "data alone must not commit")

	require.True(t, c.WriteAddr(glitchmon.RegScratch1))
	c.Step()
	st, ok := c.WriteResp()
	require.True(t, ok)
	require.Equal(t, glitchmon.StatusOK, st)

	got, _ := c.Read(glitchmon.RegScratch1)
	require.Equal(t, uint32(0x55), got)
}

func TestCore_readLatency(t *testing.T) {
	c := newCore(t, 3)
	require.True(t, c.ReadAddr(glitchmon.RegScratch1))
	_, _, ok := c.ReadData()
	require.False(t, ok, "no read data on the acceptance tick")
	require.False(t, c.ReadAddr(glitchmon.RegScratch2), "single outstanding read")

	c.Step()
	v, st, ok := c.ReadData()
	require.True(t, ok)
	require.Equal(t, glitchmon.StatusOK, st)
	require.Zero(t, v)
}

func TestCore_unmappedWriteSilent(t *testing.T) {
	c := newCore(t, 3)
	require.Equal(t, glitchmon.StatusOK, c.Write(glitchmon.CountReg(0), 0x1234, glitchmon.StrobeAll))
	got, st := c.Read(glitchmon.CountReg(0))
	require.Equal(t, glitchmon.StatusOK, st)
	require.Zero(t, got, "channel counters are read-only")
}

// End to end: a 2-tick pulse on the clock channel, read back over the bus.
func TestCore_singlePulseOverBus(t *testing.T) {
	c := newCore(t, 3)
	for _, lv := range mustParse(t, "0(4)1(2)0(10)") {
		c.Drive(lv)
		c.Step()
	}
	count, _ := c.Read(glitchmon.CountReg(0))
	width, _ := c.Read(glitchmon.WidthReg(0))
	require.EqualValues(t, 1, count)
	require.EqualValues(t, 2, width)
}

// End to end: pile up glitches on all channels, pulse the clear-all bit,
// and check that every counter pair and the bit itself read back zero.
func TestCore_clearAll(t *testing.T) {
	c := newCore(t, glitchmon.Capacity)
	lines := make([]bool, glitchmon.Capacity)
	for _, lv := range wave.Square(2, 64) {
		for j := range lines {
			lines[j] = lv
		}
		c.Drive(lines...)
		c.Step()
	}
	c.Drive() // all lines low
	c.Run(16) // settle: flush the trailing edge through the debounce
	require.NotZero(t, c.GlitchCount(0))
	require.NotZero(t, c.GlitchCount(2))
	require.NotZero(t, c.GlitchWidth(0))

	require.Equal(t, glitchmon.StatusOK,
		c.Write(glitchmon.RegControl, glitchmon.CtlClear, glitchmon.StrobeAll))

	for i := 0; i < glitchmon.Capacity; i++ {
		v, _ := c.Read(glitchmon.CountReg(i))
		require.Zero(t, v, "count %d", i)
		v, _ = c.Read(glitchmon.WidthReg(i))
		require.Zero(t, v, "width %d", i)
	}
	ctl, _ := c.Read(glitchmon.RegControl)
	require.Zero(t, ctl, "clear bit must self-clear without further writes")
}

func TestCore_driveTiesMissingLinesLow(t *testing.T) {
	c := newCore(t, 3)
	// drive only channel 0; channel 2 stays low and quiet
	for _, lv := range wave.Square(2, 32) {
		c.Drive(lv)
		c.Step()
	}
	require.NotZero(t, c.GlitchCount(0))
	require.Zero(t, c.GlitchCount(2))
}
