// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package analog drives the SAM3X8E 12-bit ADC and DAC. Both
// peripherals are initialized lazily, on first use, keyed by the clock
// parameters in effect at that time.
package analog

import (
	"errors"

	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// ErrValueOutOfRange is returned by DAC.Write12 for values or channel
// numbers outside the 12-bit, 2-channel DAC range.
var ErrValueOutOfRange = errors.New("analog: value out of range")

// ErrTimeout is returned by DAC.Write12 if TXRDY never asserts.
var ErrTimeout = errors.New("analog: dac txrdy timeout")

const readTimeoutIters = 400000

// ADC lazily brings up the analog-to-digital converter on first Read12,
// keyed by (mckHz, adcClockHz).
type ADC struct {
	mckHz      uint32
	adcClockHz uint32

	initialized   bool
	activeChannel int
	haveActive    bool
}

// NewADC returns an ADC driver for a core whose master clock runs at
// mckHz, sampling at adcClockHz.
func NewADC(mckHz, adcClockHz uint32) *ADC {
	return &ADC{mckHz: mckHz, adcClockHz: adcClockHz}
}

func (a *ADC) init() {
	reg.Set(regs.PMCPCER1, regs.IDADC-32)
	reg.Write(regs.ADCBase+regs.ADCCR, regs.ADCCRSWRST)

	prescal := (a.mckHz+2*a.adcClockHz-1)/(2*a.adcClockHz) - 1

	mr := (prescal & regs.ADCMRPRESCALMask) << regs.ADCMRPRESCALPos
	mr |= uint32(8&regs.ADCMRSTARTUPMask) << regs.ADCMRSTARTUPPos
	mr |= uint32(3&regs.ADCMRTRACKTIMMask) << regs.ADCMRTRACKTIMPos
	mr |= uint32(1&regs.ADCMRTRANSFERMask) << regs.ADCMRTRANSFERPos
	reg.Write(regs.ADCBase+regs.ADCMR, mr)

	reg.Write(regs.ADCBase+regs.ADCCHDR, 0xFFFF)

	a.initialized = true
}

// Read12 samples the given channel, returning a 12-bit value widened to
// 16 bits, or 0xFFFF on timeout.
func (a *ADC) Read12(channel int) uint16 {
	if !a.initialized {
		a.init()
	}

	if !a.haveActive || a.activeChannel != channel {
		if a.haveActive {
			reg.Write(regs.ADCBase+regs.ADCCHDR, 1<<uint(a.activeChannel))
		}
		reg.Write(regs.ADCBase+regs.ADCCHER, 1<<uint(channel))
		a.activeChannel = channel
		a.haveActive = true
	}

	reg.Write(regs.ADCBase+regs.ADCCR, regs.ADCCRSTART)

	if !reg.WaitBitSet(regs.ADCBase+regs.ADCSR, regs.ADCISRDRDY, readTimeoutIters) {
		return 0xFFFF
	}

	return uint16(reg.Read(regs.ADCBase+regs.ADCLCDR) & regs.ADCLCDRDATAMask)
}

// DAC lazily brings up the digital-to-analog converter on first
// Write12.
type DAC struct {
	initialized bool
}

// NewDAC returns a DAC driver.
func NewDAC() *DAC {
	return &DAC{}
}

func (d *DAC) init() {
	reg.Set(regs.PMCPCER1, regs.IDDACC-32)
	reg.Write(regs.DACCBase+regs.DACCCR, regs.DACCCRSWRST)

	mr := uint32(regs.DACCMRTRGENDis | regs.DACCMRWORDHalf | regs.DACCMRTAGEN)
	reg.Write(regs.DACCBase+regs.DACCMR, mr)

	reg.Write(regs.DACCBase+regs.DACCCHER, (1<<0)|(1<<1))

	d.initialized = true
}

// Write12 writes a 12-bit value to the given DAC channel (0 or 1).
func (d *DAC) Write12(channel int, value uint16) error {
	if channel < 0 || channel > 1 {
		return ErrValueOutOfRange
	}
	if value > 0xFFF {
		return ErrValueOutOfRange
	}

	if !d.initialized {
		d.init()
	}

	if !reg.WaitBitSet(regs.DACCBase+regs.DACCISR, regs.DACCISRTXRDY, readTimeoutIters) {
		return ErrTimeout
	}

	cdr := (uint32(channel) << regs.DACCCDRCHPos) | uint32(value&0xFFF)
	reg.Write(regs.DACCBase+regs.DACCCDR, cdr)

	return nil
}
