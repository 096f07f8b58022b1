// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package gpio drives the SAM3X8E PIO controllers as Arduino-style
// digital pin handles. Pins wired to two silicon pins (Due D4, D10)
// mirror every write and OR every read across both.
package gpio

import (
	"github.com/due-baremetal/tamago-sam3x/arm"
	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/pinmap"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// Pin is a handle over one Arduino digital pin number. Construction
// establishes the invariant that the owning PIO controller's peripheral
// clock is enabled and the pin is under PIO (not peripheral) control.
type Pin struct {
	desc pinmap.Descriptor
}

// pcer selects the correct PMC peripheral clock enable register for a
// peripheral ID — PCER0 for IDs below 32, PCER1 above.
func pcer(pid int) (addr uint32, bit int) {
	if pid >= 32 {
		return regs.PMCPCER1, pid - 32
	}
	return regs.PMCPCER0, pid
}

func initSilicon(sp pinmap.SiliconPin) {
	addr, bit := pcer(sp.PID)
	reg.Set(addr, bit)

	reg.Or(sp.Base+regs.PIOPER, sp.BitMask)
	reg.Write(sp.Base+regs.PIOIDR, sp.BitMask)
	reg.Or(sp.Base+regs.PIOPUDR, sp.BitMask)
	reg.Or(sp.Base+regs.PIOMDDR, sp.BitMask)
	reg.Or(sp.Base+regs.PIOIFDR, sp.BitMask)
}

// New constructs a Pin for an Arduino digital pin number. An unknown
// pin number is a boot-time misconfiguration with no safe recovery: the
// core is parked in arm.Trap rather than returning an error, matching
// every other unrecoverable-construction-error path in this firmware.
func New(pin int) *Pin {
	desc, ok := pinmap.Lookup(pin)
	if !ok {
		arm.Trap()
	}

	initSilicon(desc.Primary)
	if desc.Secondary != nil {
		initSilicon(*desc.Secondary)
	}

	return &Pin{desc: desc}
}

func (p *Pin) each(f func(pinmap.SiliconPin)) {
	f(p.desc.Primary)
	if p.desc.Secondary != nil {
		f(*p.desc.Secondary)
	}
}

// Output configures the pin as output, first driving the requested
// initial level, then enabling the output driver (OER) so there is no
// glitch between enabling output and reaching the intended level.
func (p *Pin) Output(initial bool) {
	p.Write(initial)
	p.each(func(sp pinmap.SiliconPin) {
		reg.Write(sp.Base+regs.PIOOER, sp.BitMask)
	})
}

// Input configures the pin as input (ODR).
func (p *Pin) Input() {
	p.each(func(sp pinmap.SiliconPin) {
		reg.Write(sp.Base+regs.PIOODR, sp.BitMask)
	})
}

// PullUp enables or disables the internal pull-up.
func (p *Pin) PullUp(on bool) {
	p.each(func(sp pinmap.SiliconPin) {
		if on {
			reg.Write(sp.Base+regs.PIOPUER, sp.BitMask)
		} else {
			reg.Write(sp.Base+regs.PIOPUDR, sp.BitMask)
		}
	})
}

// InputPullup configures the pin as input with the pull-up enabled.
func (p *Pin) InputPullup() {
	p.Input()
	p.PullUp(true)
}

// OpenDrain enables or disables multi-driver (open-drain) mode.
func (p *Pin) OpenDrain(on bool) {
	p.each(func(sp pinmap.SiliconPin) {
		if on {
			reg.Write(sp.Base+regs.PIOMDER, sp.BitMask)
		} else {
			reg.Write(sp.Base+regs.PIOMDDR, sp.BitMask)
		}
	})
}

// InputFilter enables or disables the glitch filter on the input path.
func (p *Pin) InputFilter(on bool) {
	p.each(func(sp pinmap.SiliconPin) {
		if on {
			reg.Write(sp.Base+regs.PIOIFER, sp.BitMask)
		} else {
			reg.Write(sp.Base+regs.PIOIFDR, sp.BitMask)
		}
	})
}

// Write drives the pin high or low via the write-one-to-act SODR/CODR
// registers.
func (p *Pin) Write(high bool) {
	p.each(func(sp pinmap.SiliconPin) {
		if high {
			reg.Write(sp.Base+regs.PIOSODR, sp.BitMask)
		} else {
			reg.Write(sp.Base+regs.PIOCODR, sp.BitMask)
		}
	})
}

// On drives the pin high.
func (p *Pin) On() {
	p.Write(true)
}

// Off drives the pin low.
func (p *Pin) Off() {
	p.Write(false)
}

// Read returns the logical OR of PDSR across every silicon pin in the
// descriptor.
func (p *Pin) Read() bool {
	high := false
	p.each(func(sp pinmap.SiliconPin) {
		if reg.Read(sp.Base+regs.PIOPDSR)&sp.BitMask != 0 {
			high = true
		}
	})
	return high
}

// ReadOutputLatch returns the logical OR of ODSR across every silicon
// pin — the pin's own idea of what it last drove, as opposed to Read's
// view of the line.
func (p *Pin) ReadOutputLatch() bool {
	high := false
	p.each(func(sp pinmap.SiliconPin) {
		if reg.Read(sp.Base+regs.PIOODSR)&sp.BitMask != 0 {
			high = true
		}
	})
	return high
}

// Toggle flips the pin's output latch.
func (p *Pin) Toggle() {
	p.Write(!p.ReadOutputLatch())
}
