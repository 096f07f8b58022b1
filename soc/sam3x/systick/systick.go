// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package systick drives the Cortex-M3 SysTick timer as a 1 ms
// monotonic tick source, the only interrupt-driven peripheral this
// firmware uses. Everything else is polled from the main loop.
package systick

import (
	"github.com/due-baremetal/tamago-sam3x/arm"
	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// tick is the process-wide monotonic millisecond counter. Its only
// writer is Handler, called from the SysTick vector; all other access
// goes through Millis, which takes a one-instruction snapshot under an
// IRQ-masking critical section.
var tick uint32

// Timer owns cpuHz, fixed at construction, and the three SysTick
// registers it programs once in StartTick1ms.
type Timer struct {
	cpuHz uint32
}

// New returns a Timer for a core running at cpuHz.
func New(cpuHz uint32) *Timer {
	return &Timer{cpuHz: cpuHz}
}

// StartTick1ms programs the reload value for a 1 ms period at cpuHz,
// clears the current value, and enables the timer with its interrupt.
// Called once; behavior of calling it twice is undefined (re-arming a
// running SysTick is not a supported operation by this driver).
func (t *Timer) StartTick1ms() {
	reload := t.cpuHz/1000 - 1
	if reload > regs.SysTickMaxReload {
		reload = regs.SysTickMaxReload
	}

	reg.Write(regs.SysTickBase+regs.SysTickRVR, reload)
	reg.Write(regs.SysTickBase+regs.SysTickCVR, 0)
	reg.Write(regs.SysTickBase+regs.SysTickCSR, regs.SysTickCSRENABLE|regs.SysTickCSRTICKINT|regs.SysTickCSRCLKSRC)

	reg.Dsb()
	reg.Isb()
}

// Handler increments the global tick counter. It is the body of the
// SysTick_Handler vector entry and must do nothing else.
func Handler() {
	tick++
}

// Millis returns the global tick counter, wrap-safe modulo 2³², taken as
// an atomic snapshot under an IRQ mask.
func Millis() (now uint32) {
	arm.WithIRQLocked(func() {
		now = tick
	})
	return
}

// Elapsed reports now−deadline with wrap-safe modular arithmetic.
func Elapsed(now, deadline uint32) int32 {
	return int32(now - deadline)
}

// Sleep busy-waits until at least ms milliseconds have elapsed.
func Sleep(ms uint32) {
	start := Millis()
	for Elapsed(Millis(), start) < int32(ms) {
	}
}

// SleepUntil busy-waits while now is still "before" deadline in
// wrap-safe ordering, i.e. while (now−deadline) has its high bit set.
func SleepUntil(deadline uint32) {
	for Elapsed(Millis(), deadline) < 0 {
	}
}

// SleepFor computes a deadline ms milliseconds from now, delegates to
// SleepUntil, and returns that deadline. Because each call starts from
// the current tick, repeated SleepFor calls accumulate the loop body's
// time as drift; drift-free periodic scheduling keeps a running `next`
// and calls SleepUntil(next); next += period.
func SleepFor(ms uint32) uint32 {
	deadline := Millis() + ms
	SleepUntil(deadline)
	return deadline
}
