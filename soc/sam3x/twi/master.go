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
	"log"

	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// timeoutIters20ms is a spin-count budget loosely calibrated against a
// 20 ms wall-clock bound at the clock rates this driver targets, per
// the master write/read timeouts specified for TWI.
const timeoutIters20ms = 2000000

// Master is a TWI bus master. No poll is required and no callbacks
// fire in this mode.
type Master struct {
	mckHz uint32

	addr  byte
	txBuf [bufCapacity]byte
	txLen int

	rxBuf [bufCapacity]byte
	rxLen int
	rxIdx int
}

// NewMaster constructs a Master for a core whose master clock runs at
// mckHz. Begin must be called before use.
func NewMaster(mckHz uint32) *Master {
	return &Master{mckHz: mckHz}
}

// Begin brings up PB12/PB13 under TWI control, resets the peripheral,
// and enables master mode at the default 100 kHz.
func (m *Master) Begin() {
	initPinsAndClock()

	reg.Write(base+regs.TWICR, regs.TWICRSWRST)
	reg.Read(base + regs.TWIRHR)
	reg.Busyloop(100)

	reg.Write(base+regs.TWICR, regs.TWICRSVDIS|regs.TWICRMSDIS)
	reg.Write(base+regs.TWICR, regs.TWICRMSEN)

	setClock(m.mckHz, 100000)
}

// BeginTransmission stores the target 7-bit address and resets the TX
// buffer length.
func (m *Master) BeginTransmission(addr byte) {
	m.addr = addr
	m.txLen = 0
}

// Write appends b to the TX buffer. Returns 1 on success, 0 if the
// buffer (capacity 32) is full.
func (m *Master) Write(b byte) int {
	if m.txLen >= bufCapacity {
		return 0
	}
	m.txBuf[m.txLen] = b
	m.txLen++
	return 1
}

func (m *Master) srNACK() bool {
	return reg.Read(base+regs.TWISR)&regs.TWISRNACK != 0
}

// EndTransmission drives the buffered write, returning an Arduino-style
// error code.
func (m *Master) EndTransmission(sendStop bool) byte {
	mmr := regs.TWIMMRIADRSZNone | (uint32(m.addr)&regs.TWIMMRDADRMask)<<regs.TWIMMRDADRPos
	reg.Write(base+regs.TWIMMR, mmr)

	if m.txLen == 0 {
		if sendStop {
			reg.Write(base+regs.TWICR, regs.TWICRSTOP)
			if !reg.WaitBitSet(base+regs.TWISR, regs.TWISRTXCOMP, timeoutIters20ms) {
				return ErrOther
			}
		}
		return ErrNone
	}

	reg.Write(base+regs.TWITHR, uint32(m.txBuf[0]))

	if !waitTXRDYOrNACK(timeoutIters20ms) {
		log.Printf("twi: timeout waiting for TXRDY on address byte to 0x%02x", m.addr)
		return ErrOther
	}
	if m.srNACK() {
		log.Printf("twi: address NACK from 0x%02x", m.addr)
		return ErrAddrNACK
	}

	for i := 1; i < m.txLen; i++ {
		reg.Write(base+regs.TWITHR, uint32(m.txBuf[i]))

		if !waitTXRDYOrNACK(timeoutIters20ms) {
			log.Printf("twi: timeout waiting for TXRDY on data byte %d to 0x%02x", i, m.addr)
			return ErrOther
		}
		if m.srNACK() {
			log.Printf("twi: data NACK from 0x%02x at byte %d", m.addr, i)
			return ErrDataNACK
		}
	}

	if sendStop {
		reg.Write(base+regs.TWICR, regs.TWICRSTOP)
		if !reg.WaitBitSet(base+regs.TWISR, regs.TWISRTXCOMP, timeoutIters20ms) {
			return ErrOther
		}
	}

	return ErrNone
}

func waitTXRDYOrNACK(timeoutIters int) bool {
	return reg.WaitUntil(timeoutIters, func() bool {
		sr := reg.Read(base + regs.TWISR)
		return sr&regs.TWISRTXRDY != 0 || sr&regs.TWISRNACK != 0
	})
}

// RequestFrom reads q bytes (capped at buffer capacity) from addr. On
// success it returns the capped q and resets the read cursor; on a NACK
// or timeout it returns 0 and leaves the previous RX length and cursor
// in place.
func (m *Master) RequestFrom(addr byte, q int, sendStop bool) int {
	if q > bufCapacity {
		q = bufCapacity
	}
	if q <= 0 {
		return 0
	}

	mmr := regs.TWIMMRMREAD | regs.TWIMMRIADRSZNone | (uint32(addr)&regs.TWIMMRDADRMask)<<regs.TWIMMRDADRPos
	reg.Write(base+regs.TWIMMR, mmr)

	if q == 1 && sendStop {
		reg.Write(base+regs.TWICR, regs.TWICRSTART|regs.TWICRSTOP)
	} else {
		reg.Write(base+regs.TWICR, regs.TWICRSTART)
	}

	for i := 0; i < q; i++ {
		if sendStop && i == q-1 && q > 1 {
			reg.Write(base+regs.TWICR, regs.TWICRSTOP)
		}

		ok := reg.WaitUntil(timeoutIters20ms, func() bool {
			sr := reg.Read(base + regs.TWISR)
			return sr&regs.TWISRRXRDY != 0 || sr&regs.TWISRNACK != 0
		})
		if !ok || m.srNACK() {
			return 0
		}

		m.rxBuf[i] = byte(reg.Read(base+regs.TWIRHR) & 0xFF)
	}

	if sendStop {
		if !reg.WaitBitSet(base+regs.TWISR, regs.TWISRTXCOMP, timeoutIters20ms) {
			return 0
		}
	}

	m.rxLen = q
	m.rxIdx = 0

	return q
}

// Available returns the number of unread bytes from the most recent
// RequestFrom.
func (m *Master) Available() int {
	return m.rxLen - m.rxIdx
}

// Read returns the next unread byte and whether one was available.
func (m *Master) Read() (byte, bool) {
	if m.rxIdx >= m.rxLen {
		return 0, false
	}
	b := m.rxBuf[m.rxIdx]
	m.rxIdx++
	return b, true
}
