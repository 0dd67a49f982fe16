// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package glitchmon

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// An Option configures a Core.
//
type Option func(*Core)

// WithWorkers sets the number of goroutines updating the detector array
// each tick. If less or equal to 0, the value of GOMAXPROCS will be used.
//
func WithWorkers(n int) Option {
	return func(c *Core) { c.workers = n }
}

// A Core is the runnable glitch monitor: the detector array behind its
// register file and bus slave, advanced one tick at a time.
//
// Each tick the bus side runs first (read response sampling, then write
// commit), and the whole detector array then advances in parallel from
// previous-tick state. All outputs of a tick are visible at the start of
// the next.
//
// Callers must make sure to call Dispose() once the core is no longer
// needed in order to release allocated resources.
//
type Core struct {
	arr *Array
	rf  RegFile
	bus busPort

	lines [Capacity]bool
	gate  bool // channel 0 level sampled at the start of the tick
	clear bool
	tick  uint64

	workers int
	wc      []chan struct{}
	wg      sync.WaitGroup
}

// New builds a Core monitoring the given number of channels.
//
func New(channels int, opts ...Option) (*Core, error) {
	arr, err := NewArray(channels)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create detector array")
	}
	c := &Core{arr: arr}
	for _, o := range opts {
		o(c)
	}

	workers := c.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > channels {
		workers = channels
	}
	for lo, left := 0, workers; left > 0; left-- {
		size := (channels - lo + left - 1) / left
		wc := make(chan struct{}, 1)
		c.wc = append(c.wc, wc)
		go c.worker(lo, lo+size, wc)
		lo += size
	}
	return c, nil
}

// Dispose releases all resources allocated for the core and stops
// worker goroutines.
//
func (c *Core) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func (c *Core) worker(lo, hi int, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for i := lo; i < hi; i++ {
			c.arr.step(i, c.lines[i], c.gate, c.clear)
		}
		c.wg.Done()
	}
}

// Drive latches the raw input vector for subsequent ticks. Missing lines
// are tied low; lines beyond the configured channel count are ignored.
//
func (c *Core) Drive(lines ...bool) {
	for i := range c.lines {
		c.lines[i] = line(lines, i)
	}
}

// Step advances the simulation by one tick.
//
func (c *Core) Step() {
	c.rf.BeginTick()
	c.bus.step(&c.rf, c.arr)
	c.clear = c.rf.TakeClear()
	c.gate = c.arr.Level(0)

	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}
	c.wg.Wait()
	c.tick++
}

// Run advances the simulation by n ticks.
//
func (c *Core) Run(n int) {
	for ; n > 0; n-- {
		c.Step()
	}
}

// Ticks returns the value of the tick counter.
//
func (c *Core) Ticks() uint64 { return c.tick }

// Channels returns the configured channel count.
//
func (c *Core) Channels() int { return c.arr.Channels() }

// WriteAddr presents a write address this tick and reports whether the
// slave accepted it.
//
func (c *Core) WriteAddr(addr uint8) bool { return c.bus.postWriteAddr(addr) }

// WriteData presents write data and byte strobes this tick and reports
// whether the slave accepted them.
//
func (c *Core) WriteData(data uint32, strobe uint8) bool {
	return c.bus.postWriteData(data, strobe)
}

// WriteResp consumes the pending write response, if any.
//
func (c *Core) WriteResp() (Status, bool) { return c.bus.takeWriteResp() }

// ReadAddr presents a read address this tick and reports whether the
// slave accepted it.
//
func (c *Core) ReadAddr(addr uint8) bool { return c.bus.postRead(addr) }

// ReadData consumes the pending read response, if any.
//
func (c *Core) ReadData() (uint32, Status, bool) { return c.bus.takeReadData() }

// Write runs a complete write transaction, stepping the core until the
// slave responds. The latched input vector keeps driving the lines while
// the transaction is in flight.
//
func (c *Core) Write(addr uint8, data uint32, strobe uint8) Status {
	for !c.WriteAddr(addr) {
		c.Step()
	}
	for !c.WriteData(data, strobe) {
		c.Step()
	}
	for {
		c.Step()
		if st, ok := c.WriteResp(); ok {
			return st
		}
	}
}

// Read runs a complete read transaction, stepping the core until the
// response data is available.
//
func (c *Core) Read(addr uint8) (uint32, Status) {
	for !c.ReadAddr(addr) {
		c.Step()
	}
	for {
		c.Step()
		if v, st, ok := c.ReadData(); ok {
			return v, st
		}
	}
}

// GlitchCount returns channel i's glitch counter without a bus access.
//
func (c *Core) GlitchCount(i int) uint32 { return c.arr.Count(i) }

// GlitchWidth returns channel i's last-glitch width without a bus access.
//
func (c *Core) GlitchWidth(i int) uint32 { return c.arr.Width(i) }
