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

// defined in barrier_arm.s
func dsb()
func isb()

// Dsb issues a data synchronization barrier. Required after programming
// VTOR, after enabling a peripheral clock that gates subsequent register
// writes, and after flash wait-state updates (§4.1, §4.2).
func Dsb() {
	dsb()
}

// Isb issues an instruction synchronization barrier.
func Isb() {
	isb()
}
