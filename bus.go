package glitchmon

import "strconv"

// Status is a bus response status code. The register bus completes every
// accepted request with OK; there is no error signaling path.
type Status uint8

// StatusOK is the only status the core ever returns.
const StatusOK Status = 0

func (s Status) String() string {
	if s == StatusOK {
		return "OK"
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// busPort holds the in-flight transaction state of the slave interface:
// separate write-address, write-data, write-response, read-address and
// read-data channels, each a valid/ready pair collapsed into accept and
// consume calls against the current state.
//
// The write side is single-outstanding: while a response is held
// unconsumed, further write address or data postings are rejected and the
// master must keep presenting them. That back-pressure is the only flow
// control; nothing is queued and nothing times out.
type busPort struct {
	waddr    uint8
	wdata    uint32
	wstrobe  uint8
	haveAddr bool
	haveData bool
	wResp    bool // OK response held until consumed

	raddr    uint8
	rPending bool // accepted, response due next tick
	rValid   bool // response held until consumed
	rData    uint32
}

func (b *busPort) postWriteAddr(addr uint8) bool {
	if b.haveAddr || b.wResp {
		return false
	}
	b.waddr = addr & addrMask
	b.haveAddr = true
	return true
}

func (b *busPort) postWriteData(data uint32, strobe uint8) bool {
	if b.haveData || b.wResp {
		return false
	}
	b.wdata = data
	b.wstrobe = strobe
	b.haveData = true
	return true
}

func (b *busPort) takeWriteResp() (Status, bool) {
	if !b.wResp {
		return 0, false
	}
	b.wResp = false
	return StatusOK, true
}

func (b *busPort) postRead(addr uint8) bool {
	if b.rPending || b.rValid {
		return false
	}
	b.raddr = addr & addrMask
	b.rPending = true
	return true
}

func (b *busPort) takeReadData() (uint32, Status, bool) {
	if !b.rValid {
		return 0, 0, false
	}
	b.rValid = false
	return b.rData, StatusOK, true
}

// step advances the port by one tick: the pending read samples its
// response first, then a write with both address and data captured
// commits, so a read coincident with a write to the same register
// returns the pre-write value.
//
func (b *busPort) step(rf *RegFile, a *Array) {
	if b.rPending {
		b.rData = rf.Read(a, b.raddr)
		b.rValid = true
		b.rPending = false
	}
	if b.haveAddr && b.haveData {
		rf.Write(b.waddr, b.wdata, b.wstrobe)
		b.haveAddr = false
		b.haveData = false
		b.wResp = true
	}
}
