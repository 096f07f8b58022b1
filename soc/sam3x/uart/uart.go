// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package uart drives the SAM3X8E Programming Port UART: polling
// transmit and receive only, no flow control, LF expanded to CRLF on
// output for human-readable telemetry.
package uart

import (
	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

const hexDigits = "0123456789abcdef"

// UART owns mckHz, the master clock rate Begin's baud divisor is
// computed against. Begin is idempotent: calling it again with a new
// baud reprograms the divisor in place.
type UART struct {
	mckHz uint32
}

// New returns a UART driver for a core whose master clock runs at
// mckHz. It does not touch hardware; call Begin to bring the peripheral
// up.
func New(mckHz uint32) *UART {
	return &UART{mckHz: mckHz}
}

// Begin enables the UART peripheral clock, hands PA8/PA9 to Peripheral
// A, resets and disables TX/RX, programs 8-N-1 mode, programs the baud
// divisor, then re-enables TX and RX.
func (u *UART) Begin(baud uint32) {
	reg.Set(regs.PMCPCER0, regs.IDUART)

	// Select Peripheral A (URXD/UTXD) on PA8/PA9 explicitly; reset
	// default is already A, but this driver should not depend on that.
	reg.Clear(regs.PIOABase+regs.PIOABSR, 8)
	reg.Clear(regs.PIOABase+regs.PIOABSR, 9)

	reg.Write(regs.PIOABase+regs.PIOPDR, (1<<8)|(1<<9))
	reg.Write(regs.PIOABase+regs.PIOPUER, 1<<8) // pull-up on URXD (PA8)

	reg.Write(regs.UARTBase+regs.UARTCR, regs.UARTCRRSTRX|regs.UARTCRRSTTX|regs.UARTCRRXDIS|regs.UARTCRTXDIS)
	reg.Write(regs.UARTBase+regs.UARTMR, uint32(regs.UARTMRPARN)<<regs.UARTMRPARPos)

	cd := (u.mckHz + 8*baud) / (16 * baud)
	reg.Write(regs.UARTBase+regs.UARTBRGR, cd)

	reg.Write(regs.UARTBase+regs.UARTCR, regs.UARTCRRXEN|regs.UARTCRTXEN)
}

func (u *UART) txReady() bool {
	return reg.Read(regs.UARTBase+regs.UARTSR)&regs.UARTSRTXRDY != 0
}

func (u *UART) rxReady() bool {
	return reg.Read(regs.UARTBase+regs.UARTSR)&regs.UARTSRRXRDY != 0
}

// WriteByte spins on TXRDY, then stores b to THR.
func (u *UART) WriteByte(b byte) {
	for !u.txReady() {
	}
	reg.Write(regs.UARTBase+regs.UARTTHR, uint32(b))
}

// WriteString emits s, expanding every '\n' to "\r\n".
func (u *UART) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' {
			u.WriteByte('\r')
		}
		u.WriteByte(c)
	}
}

// Write implements io.Writer so the UART can be handed to log.SetOutput.
func (u *UART) Write(p []byte) (n int, err error) {
	for _, c := range p {
		if c == '\n' {
			u.WriteByte('\r')
		}
		u.WriteByte(c)
	}
	return len(p), nil
}

// WriteHex32 writes v as 8 lowercase hex digits, shift-and-lookup with
// no division, with an optional "0x" prefix.
func (u *UART) WriteHex32(v uint32, prefix bool) {
	if prefix {
		u.WriteString("0x")
	}
	for shift := 28; shift >= 0; shift -= 4 {
		u.WriteByte(hexDigits[(v>>uint(shift))&0xF])
	}
}

// ReadByteNonblocking returns the next received byte and true if RXRDY
// is set, else (0, false).
func (u *UART) ReadByteNonblocking() (byte, bool) {
	if !u.rxReady() {
		return 0, false
	}
	return byte(reg.Read(regs.UARTBase+regs.UARTRHR) & 0xFF), true
}
