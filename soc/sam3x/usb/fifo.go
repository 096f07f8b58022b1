// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

package usb

import (
	"unsafe"

	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// fifoWrite stores buf into endpoint ep's DPRAM window, one byte at a
// time — the window is not word-addressable for partial-word lengths.
func fifoWrite(ep int, buf []byte) {
	base := regs.EndpointFIFO(ep)
	for i, b := range buf {
		p := (*byte)(unsafe.Pointer(uintptr(base) + uintptr(i)))
		*p = b
	}
}

// fifoRead loads n bytes from endpoint ep's DPRAM window.
func fifoRead(ep int, n int) []byte {
	base := regs.EndpointFIFO(ep)
	buf := make([]byte, n)
	for i := range buf {
		p := (*byte)(unsafe.Pointer(uintptr(base) + uintptr(i)))
		buf[i] = *p
	}
	return buf
}
