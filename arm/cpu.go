// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package arm provides Cortex-M3 processor primitives: interrupt
// masking, a busy-loop delay, and the boot-time unrecoverable-error
// trap. It does not name or install exception vectors. It sits directly
// above internal/reg, mirroring the teacher
// framework's layering of a CPU-facing "arm" package over the raw MMIO
// substrate, ported from Cortex-A IRQ/FIQ and GIC semantics to Cortex-M3
// PRIMASK and NVIC semantics.
package arm

import (
	"github.com/due-baremetal/tamago-sam3x/internal/reg"
)

// CPU represents the Cortex-M3 core.
type CPU struct{}

// EnableInterrupts unmasks interrupts (clears PRIMASK).
func (cpu *CPU) EnableInterrupts() {
	reg.EnableIRQ()
}

// DisableInterrupts masks interrupts (sets PRIMASK).
func (cpu *CPU) DisableInterrupts() {
	reg.DisableIRQ()
}

// WithIRQLocked disables interrupts, runs f, then restores the prior
// enable state — including when f panics (§4.1). The runtime uses this
// only around the global tick-counter read; nesting is not required.
func WithIRQLocked(f func()) {
	reg.WithIRQLocked(f)
}

// Busyloop spins for the given number of iterations, touching no
// register. Used for short calibration-insensitive delays.
func Busyloop(iterations int32) {
	reg.Busyloop(iterations)
}
