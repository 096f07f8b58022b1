// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

package twi

import (
	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

type slaveSubState int

const (
	slaveIdle slaveSubState = iota
	slaveReceiving
	slaveTransmitting
)

// Slave is a TWI slave responding at a fixed 7-bit address. Poll must
// be called from the main loop as fast as possible; it drives the
// entire receive/transmit/re-arm state machine and fires OnReceive and
// OnRequest from the caller's own stack, never from an interrupt.
type Slave struct {
	mckHz uint32
	addr  byte

	state slaveSubState

	rxBuf [bufCapacity]byte
	rxLen int
	rxIdx int

	txBuf [bufCapacity]byte
	txLen int
	txIdx int

	inOnRequest bool

	OnReceive func(count int)
	OnRequest func()
}

// NewSlave constructs a Slave for a core whose master clock runs at
// mckHz. Begin must be called before Poll.
func NewSlave(mckHz uint32) *Slave {
	return &Slave{mckHz: mckHz}
}

// Begin brings up pins, clocks and the peripheral reset as Master.Begin
// does (without enabling master mode or programming the bit clock),
// then programs the slave address and enables slave mode.
func (s *Slave) Begin(addr byte) {
	s.addr = addr

	initPinsAndClock()

	reg.Write(base+regs.TWICR, regs.TWICRSWRST)
	reg.Read(base + regs.TWIRHR)
	reg.Busyloop(100)

	reg.Write(base+regs.TWICR, regs.TWICRSVDIS|regs.TWICRMSDIS)

	smr := (uint32(addr) & regs.TWISMRSADRMask) << regs.TWISMRSADRPos
	reg.Write(base+regs.TWISMR, smr)

	reg.Write(base+regs.TWICR, regs.TWICRSVEN)
	reg.Busyloop(100)

	reg.Read(base + regs.TWISR)
	reg.Read(base + regs.TWIRHR)

	s.resetBuffers()
	s.state = slaveIdle
}

func (s *Slave) resetBuffers() {
	s.rxLen, s.rxIdx = 0, 0
	s.txLen, s.txIdx = 0, 0
}

// rearm disables then re-enables slave mode and clears stale status,
// required by this silicon to reliably accept the next repeated START.
func (s *Slave) rearm() {
	reg.Write(base+regs.TWICR, regs.TWICRSVDIS)
	reg.Write(base+regs.TWICR, regs.TWICRSVEN)
	reg.Read(base + regs.TWISR)
	reg.Read(base + regs.TWIRHR)
	s.resetBuffers()
	s.state = slaveIdle
}

func (s *Slave) beginSlaveTransmit() {
	s.txLen, s.txIdx = 0, 0
	s.inOnRequest = true
	if s.OnRequest != nil {
		s.OnRequest()
	}
	s.inOnRequest = false

	if s.txLen == 0 {
		s.txBuf[0] = 0
		s.txLen = 1
	}
}

// Write appends a byte to the slave TX buffer. Only legal while called
// from inside an OnRequest callback; otherwise it is dropped (returns
// 0, matching the master Write's "buffer full" return convention, used
// here for "not currently allowed to write").
func (s *Slave) Write(b byte) int {
	if !s.inOnRequest || s.txLen >= bufCapacity {
		return 0
	}
	s.txBuf[s.txLen] = b
	s.txLen++
	return 1
}

// Available returns the number of unread bytes from the master write
// that triggered the most recent OnReceive. The read cursor is reset to
// the start of rxBuf just before OnReceive fires, so this and Read are
// meant to be called from inside that callback.
func (s *Slave) Available() int {
	return s.rxLen - s.rxIdx
}

// Read returns the next unread byte from the master write that
// triggered the most recent OnReceive, and whether one was available.
func (s *Slave) Read() (byte, bool) {
	if s.rxIdx >= s.rxLen {
		return 0, false
	}
	b := s.rxBuf[s.rxIdx]
	s.rxIdx++
	return b, true
}

// Poll drives the slave state machine one step. Call repeatedly from
// the main loop.
func (s *Slave) Poll() {
	sr := reg.Read(base + regs.TWISR)

	if sr&regs.TWISRSVACC == 0 {
		return
	}

	if sr&regs.TWISRSVREAD != 0 {
		s.pollTransmit(sr)
	} else {
		s.pollReceive(sr)
	}
}

func (s *Slave) pollTransmit(sr uint32) {
	if s.state != slaveTransmitting {
		if s.state == slaveReceiving && s.rxLen > 0 {
			s.rxIdx = 0
			if s.OnReceive != nil {
				s.OnReceive(s.rxLen)
			}
		}
		s.state = slaveTransmitting
		s.beginSlaveTransmit()
	}

	for reg.Read(base+regs.TWISR)&regs.TWISRTXRDY != 0 {
		var b byte
		if s.txIdx < s.txLen {
			b = s.txBuf[s.txIdx]
			s.txIdx++
		}
		reg.Write(base+regs.TWITHR, uint32(b))

		sr = reg.Read(base + regs.TWISR)
		if sr&regs.TWISREOSACC != 0 || sr&regs.TWISRNACK != 0 {
			s.rearm()
			return
		}
	}
}

func (s *Slave) pollReceive(sr uint32) {
	if s.state != slaveReceiving {
		s.rxLen, s.rxIdx = 0, 0
		s.state = slaveReceiving
	}

	if sr&regs.TWISROVRE != 0 {
		reg.Read(base + regs.TWIRHR)
	}

	for reg.Read(base+regs.TWISR)&regs.TWISRRXRDY != 0 {
		b := byte(reg.Read(base+regs.TWIRHR) & 0xFF)
		if s.rxLen < bufCapacity {
			s.rxBuf[s.rxLen] = b
			s.rxLen++
		}
	}

	sr = reg.Read(base + regs.TWISR)
	if sr&regs.TWISREOSACC != 0 {
		if s.rxLen > 0 {
			s.rxIdx = 0
			if s.OnReceive != nil {
				s.OnReceive(s.rxLen)
			}
		}
		s.rearm()
	}
}
