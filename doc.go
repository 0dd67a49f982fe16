/*
Package glitchmon is a cycle-stepped model of a synchronous digital-signal
glitch monitor: a bank of binary input lines is sampled once per tick,
transient pulses narrower than a configured width are counted per channel,
and the counters are exposed through a register-mapped bus slave with a
valid/ready handshake.

The model is bit-compatible with the monitored hardware's behavioral
contract: wrapping 32-bit counters, a self-clearing clear-all control bit,
byte-strobed partial writes, silent no-op writes to unmapped or read-only
registers, and a data-line channel gated by its companion clock-line
channel.
*/
package glitchmon
