// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package due is the board facade for the Arduino Due. Init performs
// the one-shot bring-up sequence — watchdog disable, clock bring-up,
// console UART, SysTick, global IRQ enable, and (optionally) the TWI
// master — and hands back a Context owning the resulting peripheral
// instances, mirroring the composition shape of the teacher's
// `board/usbarmory/mk2.Init`, adapted from an automatic `runtime.hwinit`
// hook to an explicit call returning its result: this board has no
// fixed console destination chosen ahead of time for the caller, so the
// options/Context contract is the right shape instead.
package due

import (
	"log"

	"github.com/due-baremetal/tamago-sam3x/arm"
	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/clock"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/systick"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/twi"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/uart"
)

// Clock rates selected by Init depending on whether PLLA lock succeeded.
const (
	CPUHz84MHz = 84000000
	CPUHz4MHz  = 4000000
)

// Options configures board bring-up. The zero value is not valid; use
// DefaultOptions.
type Options struct {
	// Baud is the Programming Port UART rate.
	Baud uint32

	// PrintBootBanner, if true, writes "BOOT\r\nclock_ok={0|1}\r\n" to
	// the console UART once bring-up completes.
	PrintBootBanner bool

	// EnableTWI, if true, constructs and starts the TWI master at
	// I2CClockHz.
	EnableTWI bool

	// I2CClockHz is the TWI master's bus speed, used only if EnableTWI.
	I2CClockHz uint32
}

// DefaultOptions matches §6's documented defaults.
func DefaultOptions() Options {
	return Options{
		Baud:            115200,
		PrintBootBanner: true,
		EnableTWI:       true,
		I2CClockHz:      100000,
	}
}

// Context owns the peripheral instances Init constructed. Fields left
// nil (I2C when EnableTWI is false) were not requested by Options.
type Context struct {
	ClockOK bool
	MCKHz   uint32
	CPUHz   uint32

	Serial *uart.UART
	Timer  *systick.Timer
	I2C    *twi.Master
}

// Init disables the watchdog, brings up the clock tree, constructs the
// console UART and SysTick timer, enables global interrupts, and
// optionally starts the TWI master — in that order, per §6's board
// facade contract.
func Init(opts Options) *Context {
	reg.Write(regs.WDTBase+regs.WDTMR, regs.WDTMRWDDIS)

	clockOK := clock.Init84MHz()

	mckHz := uint32(CPUHz4MHz)
	if clockOK {
		mckHz = CPUHz84MHz
	}

	ctx := &Context{
		ClockOK: clockOK,
		MCKHz:   mckHz,
		CPUHz:   mckHz,
	}

	ctx.Serial = uart.New(mckHz)
	ctx.Serial.Begin(opts.Baud)
	log.SetOutput(ctx.Serial)

	if opts.PrintBootBanner {
		ctx.Serial.WriteString("BOOT\n")
		if clockOK {
			ctx.Serial.WriteString("clock_ok=1\n")
		} else {
			ctx.Serial.WriteString("clock_ok=0\n")
		}
	}

	ctx.Timer = systick.New(mckHz)
	ctx.Timer.StartTick1ms()

	cpu := arm.CPU{}
	cpu.EnableInterrupts()

	if opts.EnableTWI {
		ctx.I2C = twi.NewMaster(mckHz)
		ctx.I2C.Begin()
		twi.SetClock(mckHz, opts.I2CClockHz)
	}

	return ctx
}
