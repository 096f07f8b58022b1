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

// Busyloop spins for the given number of iterations without touching any
// register. Used for the short, calibration-insensitive delays I²C and
// USB bring-up need between a register write and the point where its
// effect is safe to observe (§4.6), grounded on the teacher's
// arm.Busyloop(int32) (arm/timer_arm.s).
//
// defined in busyloop_arm.s
func Busyloop(iterations int32)
