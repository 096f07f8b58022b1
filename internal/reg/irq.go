// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

package reg

// defined in irq_arm.s
func primaskRead() uint32
func cpsid()
func cpsie()

// EnableIRQ unmasks interrupts (clears Cortex-M PRIMASK).
func EnableIRQ() {
	cpsie()
}

// DisableIRQ masks interrupts (sets Cortex-M PRIMASK) and returns whether
// interrupts were previously enabled, so the caller can restore the prior
// state.
func DisableIRQ() (wasEnabled bool) {
	wasEnabled = primaskRead() == 0
	cpsid()
	return
}

// RestoreIRQ restores interrupts to the enabled/disabled state captured by
// a prior DisableIRQ call.
func RestoreIRQ(wasEnabled bool) {
	if wasEnabled {
		cpsie()
	} else {
		cpsid()
	}
}

// WithIRQLocked disables interrupts, runs f, then restores the prior
// enable state — including when f panics. Nesting is not required by any
// caller in this module; the runtime uses it only around the global tick
// counter read (§3, §4.1).
func WithIRQLocked(f func()) {
	wasEnabled := DisableIRQ()
	defer RestoreIRQ(wasEnabled)

	f()
}
