// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reg

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

// fakeReg allocates a word-aligned uint32 and returns its address, so the
// bit helpers can be exercised against ordinary heap memory instead of a
// real peripheral register.
func fakeReg(t *testing.T) uint32 {
	t.Helper()

	v := new(uint32)
	return uint32(uintptr(unsafe.Pointer(v)))
}

func TestSetClearGet(t *testing.T) {
	addr := fakeReg(t)

	Set(addr, 3)
	assert.Equal(t, uint32(1), Get(addr, 3, 1))

	Clear(addr, 3)
	assert.Equal(t, uint32(0), Get(addr, 3, 1))
}

func TestSetNClearN(t *testing.T) {
	addr := fakeReg(t)

	SetN(addr, 8, 0xff, 0x3c)
	assert.Equal(t, uint32(0x3c), Get(addr, 8, 0xff))

	ClearN(addr, 8, 0xff)
	assert.Equal(t, uint32(0), Get(addr, 8, 0xff))
}

func TestReadWriteOr(t *testing.T) {
	addr := fakeReg(t)

	Write(addr, 0x10)
	assert.Equal(t, uint32(0x10), Read(addr))

	Or(addr, 0x01)
	assert.Equal(t, uint32(0x11), Read(addr))
}

func TestWaitUntil(t *testing.T) {
	addr := fakeReg(t)

	ok := WaitUntil(5, func() bool {
		return Read(addr) == 0
	})
	assert.True(t, ok)

	calls := 0
	ok = WaitUntil(3, func() bool {
		calls++
		Write(addr, 1)
		return Read(addr) == 2
	})
	assert.False(t, ok)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestWaitBitSetClear(t *testing.T) {
	addr := fakeReg(t)

	Write(addr, 0)
	assert.False(t, WaitBitSet(addr, 0x1, 2))

	Write(addr, 0x1)
	assert.True(t, WaitBitSet(addr, 0x1, 2))
	assert.False(t, WaitBitClear(addr, 0x1, 2))

	Write(addr, 0)
	assert.True(t, WaitBitClear(addr, 0x1, 2))
}
