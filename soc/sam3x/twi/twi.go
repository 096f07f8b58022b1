// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package twi drives TWI1, the SAM3X8E Two-Wire (I²C) peripheral wired
// to the Due's primary Wire header (SDA on PB12, SCL on PB13). Master
// and Slave are separate handles over the same bus; constructing both
// against the same peripheral is a documented misuse this driver does
// not guard against (ownership is enforced by the board facade being
// the sole constructor, per the rest of this firmware's driver model).
package twi

import (
	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// Arduino-compatible wire error codes.
const (
	ErrNone           = 0
	ErrBufferOverflow = 1
	ErrAddrNACK       = 2
	ErrDataNACK       = 3
	ErrOther          = 4
)

const bufCapacity = 32

const base = regs.TWI1Base

func initPinsAndClock() {
	reg.Set(regs.PMCPCER0, regs.IDPIOB)

	// Select Peripheral A (TWCK1/TWD1) on PB12/PB13 explicitly; the
	// reset default already selects A, but ABSR is left-at-reset is not
	// an invariant this driver should lean on.
	reg.Clear(regs.PIOBBase+regs.PIOABSR, 12)
	reg.Clear(regs.PIOBBase+regs.PIOABSR, 13)

	reg.Write(regs.PIOBBase+regs.PIOPDR, (1<<12)|(1<<13))
	reg.Write(regs.PIOBBase+regs.PIOPUER, (1<<12)|(1<<13))

	reg.Set(regs.PMCPCER0, regs.IDTWI1)
}

// cwgrDivider finds the smallest ckdiv in [0,7] such that
// cldiv = ⌊(mckHz/(2·hz) − 4) / 2^ckdiv⌋ fits in 8 bits, returning
// (ckdiv, cldiv). chdiv is always programmed equal to cldiv.
func cwgrDivider(mckHz, hz uint32) (ckdiv, cldiv uint32) {
	for ckdiv = 0; ckdiv <= 7; ckdiv++ {
		num := mckHz/(2*hz) - 4
		cldiv = num / (1 << ckdiv)
		if cldiv <= 255 {
			return
		}
	}
	cldiv = 255
	return
}

// setClock programs CWGR for the requested bus frequency. hz==0 is a
// no-op, matching the spec's "set_clock never faults" contract.
func setClock(mckHz, hz uint32) {
	if hz == 0 {
		return
	}

	ckdiv, cldiv := cwgrDivider(mckHz, hz)

	cwgr := (ckdiv << regs.TWICWGRCKDIVPos) | (cldiv << regs.TWICWGRCHDIVPos) | (cldiv << regs.TWICWGRCLDIVPos)
	reg.Write(base+regs.TWICWGR, cwgr)
}

// SetClock reprograms the bus bit-clock while the bus is otherwise idle.
// Exposed so applications are not pinned to the board facade's default
// 100 kHz.
func SetClock(mckHz, hz uint32) {
	setClock(mckHz, hz)
}
