// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

package arm

// Trap parks the core in an infinite NOP loop. Constructors that detect
// a precondition violation with no safe recovery call it — currently
// gpio.New, for an unknown pin number — per the
// unrecoverable-construction-error contract (§7). It never returns.
func Trap() {
	for {
		Busyloop(1 << 20)
	}
}
