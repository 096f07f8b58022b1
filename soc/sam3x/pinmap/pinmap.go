// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package pinmap is the static Arduino-digital-pin-number to silicon-pin
// lookup table for the Arduino Due. It produces Descriptor values; GPIO
// (soc/sam3x/gpio) is the only consumer.
package pinmap

import "github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"

// SiliconPin names one PIO controller bit.
type SiliconPin struct {
	Base    uint32
	PID     int
	BitMask uint32
}

// Descriptor is an immutable record naming the one or two silicon pins a
// board-level Arduino digital pin number is wired to. D4 and D10 on the
// Due are wired to two PIO pins simultaneously; every write mirrors to
// both, every read is the logical OR of both.
type Descriptor struct {
	Primary   SiliconPin
	Secondary *SiliconPin
}

func p(base uint32, pid int, bit uint) SiliconPin {
	return SiliconPin{Base: base, PID: pid, BitMask: 1 << bit}
}

// table is keyed by Arduino digital pin number; pin numbers with no
// entry in the map are reported as unknown by Lookup.
var table = map[int]Descriptor{
	0:  {Primary: p(regs.PIOABase, regs.IDPIOA, 8)},
	1:  {Primary: p(regs.PIOABase, regs.IDPIOA, 9)},
	2:  {Primary: p(regs.PIOBBase, regs.IDPIOB, 25)},
	3:  {Primary: p(regs.PIOCBase, regs.IDPIOC, 28)},
	4: {
		Primary:   p(regs.PIOABase, regs.IDPIOA, 29),
		Secondary: ref(p(regs.PIOCBase, regs.IDPIOC, 26)),
	},
	5:  {Primary: p(regs.PIOCBase, regs.IDPIOC, 25)},
	6:  {Primary: p(regs.PIOCBase, regs.IDPIOC, 24)},
	7:  {Primary: p(regs.PIOCBase, regs.IDPIOC, 23)},
	8:  {Primary: p(regs.PIOCBase, regs.IDPIOC, 22)},
	9:  {Primary: p(regs.PIOCBase, regs.IDPIOC, 21)},
	10: {
		Primary:   p(regs.PIOCBase, regs.IDPIOC, 29),
		Secondary: ref(p(regs.PIOABase, regs.IDPIOA, 28)),
	},
	11: {Primary: p(regs.PIODBase, regs.IDPIOD, 7)},
	12: {Primary: p(regs.PIODBase, regs.IDPIOD, 8)},
	13: {Primary: p(regs.PIOBBase, regs.IDPIOB, 27)},

	// Wire (I²C) header, also usable as GPIO.
	20: {Primary: p(regs.PIOBBase, regs.IDPIOB, 12)}, // SDA1 / Wire SDA
	21: {Primary: p(regs.PIOBBase, regs.IDPIOB, 13)}, // SCL1 / Wire SCL

	54: {Primary: p(regs.PIOABase, regs.IDPIOA, 16)}, // A0
	55: {Primary: p(regs.PIOABase, regs.IDPIOA, 24)}, // A1
	56: {Primary: p(regs.PIOABase, regs.IDPIOA, 23)}, // A2
	57: {Primary: p(regs.PIOABase, regs.IDPIOA, 22)}, // A3
	58: {Primary: p(regs.PIOABase, regs.IDPIOA, 6)},  // A4
	59: {Primary: p(regs.PIOABase, regs.IDPIOA, 4)},  // A5
}

func ref(s SiliconPin) *SiliconPin {
	return &s
}

// Lookup returns the Descriptor for an Arduino digital pin number and
// whether it was found.
func Lookup(pin int) (Descriptor, bool) {
	d, ok := table[pin]
	return d, ok
}
