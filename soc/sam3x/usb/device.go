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
	"log"

	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// Lifecycle state, USB 2.0 §9.1.1.
type State int

const (
	Detached State = iota
	Powered
	DefaultState
	Addressed
	Configured
)

const (
	epControl  = 0
	epNotifyIn = 1
	epBulkOut  = 2
	epBulkIn   = 3

	maxPacketEP0 = 64
	maxPacketBulk = 64

	bringUpTimeoutIters = 5000000
	cdcRXQueueCapacity   = 256
)

// Device is the UOTGHS device-mode controller. It owns the descriptor
// table, the host-driven lifecycle state, and the CDC RX byte queue —
// a fixed-capacity ring of cdcRXQueueCapacity bytes that drops bytes
// silently once full.
type Device struct {
	Descriptors *Descriptors

	state        State
	address      uint8
	pendingAddr  *uint8
	configValue  uint8

	lineCoding LineCoding

	cdcRX      [cdcRXQueueCapacity]byte
	cdcRXHead  int
	cdcRXTail  int
	cdcRXCount int

	ep0InFlight bool
}

// NewDevice constructs a Device bound to desc. Begin brings up the
// hardware; construction alone does not touch any register.
func NewDevice(desc *Descriptors) *Device {
	return &Device{Descriptors: desc, lineCoding: DefaultLineCoding()}
}

// State returns the current lifecycle state.
func (d *Device) State() State {
	return d.state
}

// IsConfigured reports whether the host has selected a non-zero
// configuration.
func (d *Device) IsConfigured() bool {
	return d.state == Configured
}

// Begin enables the UPLL, selects it as the USB clock, brings up the
// UOTGHS controller in device mode, and forces a re-enumeration by
// pulsing DETACH.
func (d *Device) Begin() bool {
	reg.Write(regs.CKGRUCKR, regs.CKGRUCKRUPLLEN|regs.CKGRUCKRCOUNT)
	if !reg.WaitBitSet(regs.PMCSR, regs.PMCSRLOCKU, bringUpTimeoutIters) {
		return false
	}

	log.Printf("usb: UPLL locked")

	usbr := uint32(regs.PMCUSBUSBS)
	reg.Write(regs.PMCUSBBase, usbr)

	reg.Or(regs.PMCSCER, regs.SCERUOTGCLK)

	ctrl := uint32(regs.UOTGHSCTRLUSBE | regs.UOTGHSCTRLUIMOD | regs.UOTGHSCTRLOTGPADE)
	reg.Write(regs.UOTGHSCTRL, ctrl)
	reg.Clear(regs.UOTGHSCTRL, 14) // FRZCLK

	reg.Write(regs.UOTGHSDEVIER, regs.UOTGHSDEVISREORST)
	reg.Write(regs.UOTGHSDEVCTRL, 0)

	reg.Dsb()
	reg.Isb()

	reg.Write(regs.UOTGHSDEVCTRL, regs.UOTGHSDEVCTRLDETACH)
	reg.Busyloop(1000)
	reg.Write(regs.UOTGHSDEVCTRL, 0)

	d.state = Powered

	return true
}

// configureEndpoint programs DEVEPTCFGn and allocates the endpoint
// bank.
func configureEndpoint(ep int, eptype uint32, dirIn bool, size uint32) {
	cfg := (eptype & regs.UOTGHSDEVEPTCFGEPTYPEMask) << regs.UOTGHSDEVEPTCFGEPTYPEPos
	if dirIn {
		cfg |= regs.UOTGHSDEVEPTCFGEPDIRIN
	}
	cfg |= sizeCode(size) << regs.UOTGHSDEVEPTCFGEPSIZEPos
	cfg |= 1 << regs.UOTGHSDEVEPTCFGEPBKPos
	cfg |= regs.UOTGHSDEVEPTCFGALLOC

	reg.Write(regs.EndpointConfigAddr(ep), cfg)
	reg.Set(regs.UOTGHSDEVEPT, ep)
}

// sizeCode encodes a byte count into UOTGHS's EPSIZE field (8 << n).
func sizeCode(size uint32) uint32 {
	var n uint32
	for (8 << n) < size {
		n++
	}
	return n
}

// resetEndpoints (re)configures EP0 control plus the three CDC
// endpoints, called on every bus reset.
func (d *Device) resetEndpoints() {
	configureEndpoint(epControl, regs.UOTGHSDEVEPTCFGEPTYPECTRL, false, maxPacketEP0)
	reg.Write(regs.EndpointICRAddr(epControl), ^uint32(0))
	reg.Write(regs.EndpointIERAddr(epControl), regs.UOTGHSDEVEPTISRRXSTPI)

	configureEndpoint(epNotifyIn, regs.UOTGHSDEVEPTCFGEPTYPEINT, true, 8)
	configureEndpoint(epBulkOut, regs.UOTGHSDEVEPTCFGEPTYPEBULK, false, maxPacketBulk)
	reg.Write(regs.EndpointIERAddr(epBulkOut), regs.UOTGHSDEVEPTISRRXOUTI)
	configureEndpoint(epBulkIn, regs.UOTGHSDEVEPTCFGEPTYPEBULK, true, maxPacketBulk)
}

func (d *Device) handleBusReset() {
	reg.Write(regs.UOTGHSDEVICR, regs.UOTGHSDEVISREORST)

	log.Printf("usb: bus reset")

	d.address = 0
	d.pendingAddr = nil
	d.configValue = 0
	d.resetEndpoints()
	d.state = DefaultState
}

// Poll services the controller once. Call it as fast as possible from
// the main loop.
func (d *Device) Poll() {
	if reg.Read(regs.UOTGHSDEVISR)&regs.UOTGHSDEVISREORST != 0 {
		d.handleBusReset()
	}

	if d.state == Powered || d.state == Detached {
		return
	}

	d.serviceEP0()

	if d.state == Configured {
		d.serviceBulkOut()
	}

	if d.pendingAddr != nil && !d.ep0InFlight {
		addr := *d.pendingAddr
		d.pendingAddr = nil
		d.address = addr
		ctrl := regs.UOTGHSDEVCTRLADDEN | (uint32(addr) & regs.UOTGHSDEVCTRLUADDMask)
		reg.Write(regs.UOTGHSDEVCTRL, ctrl)
		if addr != 0 {
			d.state = Addressed
		}
	}
}

func (d *Device) serviceBulkOut() {
	isr := reg.Read(regs.EndpointISRAddr(epBulkOut))
	if isr&regs.UOTGHSDEVEPTISRRXOUTI == 0 {
		return
	}

	count := int((isr >> regs.UOTGHSDEVEPTISRBYCTPos) & regs.UOTGHSDEVEPTISRBYCTMask)
	buf := fifoRead(epBulkOut, count)
	reg.Write(regs.EndpointICRAddr(epBulkOut), regs.UOTGHSDEVEPTISRRXOUTI)

	for _, b := range buf {
		d.pushRX(b)
	}
}

func (d *Device) pushRX(b byte) {
	if d.cdcRXCount >= cdcRXQueueCapacity {
		return
	}
	d.cdcRX[d.cdcRXTail] = b
	d.cdcRXTail = (d.cdcRXTail + 1) % cdcRXQueueCapacity
	d.cdcRXCount++
}

// CDCAvailable returns the number of unread bytes queued from the host.
func (d *Device) CDCAvailable() int {
	return d.cdcRXCount
}

// CDCRead pops the next byte of host-sent data, if any.
func (d *Device) CDCRead() (byte, bool) {
	if d.cdcRXCount == 0 {
		return 0, false
	}
	b := d.cdcRX[d.cdcRXHead]
	d.cdcRXHead = (d.cdcRXHead + 1) % cdcRXQueueCapacity
	d.cdcRXCount--
	return b, true
}

// CDCWrite transmits buf on the bulk-IN endpoint in ≤64-byte chunks.
// Only legal once the host has configured the device.
func (d *Device) CDCWrite(buf []byte) {
	if d.state != Configured {
		return
	}

	for len(buf) > 0 {
		n := len(buf)
		if n > maxPacketBulk {
			n = maxPacketBulk
		}

		d.txChunk(epBulkIn, buf[:n])
		buf = buf[n:]
	}
}

// CDCWriteString transmits s's UTF-8 bytes verbatim via CDCWrite.
func (d *Device) CDCWriteString(s string) {
	d.CDCWrite([]byte(s))
}

func (d *Device) txChunk(ep int, buf []byte) {
	for !reg.WaitBitSet(regs.EndpointISRAddr(ep), regs.UOTGHSDEVEPTISRTXINI, bringUpTimeoutIters) {
	}
	fifoWrite(ep, buf)
	reg.Write(regs.EndpointICRAddr(ep), regs.UOTGHSDEVEPTISRTXINI)
}

// SetSerial installs a factory-unique serial number string, encoded as
// uppercase hex, as string index 3.
func (d *Device) SetSerial(uniqueID []byte) {
	const hexDigits = "0123456789ABCDEF"
	s := make([]byte, 0, len(uniqueID)*2)
	for _, b := range uniqueID {
		s = append(s, hexDigits[b>>4], hexDigits[b&0xF])
	}
	d.Descriptors.Device.SerialNumber = d.Descriptors.AddString(string(s))
}
