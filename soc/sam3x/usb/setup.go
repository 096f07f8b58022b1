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
	"encoding/binary"
	"log"

	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// Standard request codes, USB 2.0 Table 9-4.
const (
	GetStatus        = 0
	ClearFeature     = 1
	SetFeature       = 3
	SetAddress       = 5
	GetDescriptor    = 6
	SetDescriptor    = 7
	GetConfiguration = 8
	SetConfiguration = 9
	GetInterface     = 10
	SetInterface     = 11
)

// SetupData implements USB 2.0 Table 9-2.
type SetupData struct {
	RequestType uint8
	Request     uint8
	Value       uint16
	Index       uint16
	Length      uint16
}

func decodeSetup(buf []byte) SetupData {
	return SetupData{
		RequestType: buf[0],
		Request:     buf[1],
		Value:       binary.LittleEndian.Uint16(buf[2:4]),
		Index:       binary.LittleEndian.Uint16(buf[4:6]),
		Length:      binary.LittleEndian.Uint16(buf[6:8]),
	}
}

// stallEP0 sets the EP0 STALL bit; the next SETUP clears it, matching
// the stricter implementation the specification's open question
// recommends over the originally-specified no-op.
func (d *Device) stallEP0() {
	reg.Set(regs.EndpointIERAddr(epControl), 19) // STALLRQS
}

// ackEP0 sends the zero-length status-stage packet.
func (d *Device) ackEP0() {
	d.ep0InFlight = true
	d.txChunk(epControl, nil)
	d.ep0InFlight = false
}

// txEP0 transmits buf on EP0 IN in ≤64-byte chunks followed by a
// zero-length status-stage packet.
func (d *Device) txEP0(buf []byte) {
	d.ep0InFlight = true

	for len(buf) > 0 {
		n := len(buf)
		if n > maxPacketEP0 {
			n = maxPacketEP0
		}

		d.txChunk(epControl, buf[:n])
		buf = buf[n:]
	}

	d.txChunk(epControl, nil)
	d.ep0InFlight = false
}

func (d *Device) serviceEP0() {
	isr := reg.Read(regs.EndpointISRAddr(epControl))
	if isr&regs.UOTGHSDEVEPTISRRXSTPI == 0 {
		return
	}

	raw := fifoRead(epControl, 8)
	reg.Write(regs.EndpointICRAddr(epControl), regs.UOTGHSDEVEPTISRRXSTPI)

	setup := decodeSetup(raw)
	d.dispatch(setup)
}

func (d *Device) dispatch(setup SetupData) {
	switch setup.Request {
	case GetStatus:
		d.txEP0([]byte{0x00, 0x00})

	case SetAddress:
		addr := uint8(setup.Value & 0x7F)
		d.ackEP0()
		d.pendingAddr = &addr

	case GetDescriptor:
		d.doGetDescriptor(setup)

	case SetConfiguration:
		value := uint8(setup.Value)
		d.configValue = value
		d.ackEP0()
		if value != 0 {
			d.state = Configured
			log.Printf("usb: configured, value=%d", value)
		} else if d.address != 0 {
			d.state = Addressed
		}

	case GetConfiguration:
		d.txEP0([]byte{d.configValue})

	case SetLineCoding:
		if setup.Length == 7 {
			buf := fifoRead(epControl, 7)
			d.lineCoding = DecodeLineCoding(buf)
		}
		d.ackEP0()

	case GetLineCoding:
		d.txEP0(d.lineCoding.Bytes())

	case SetControlLineState:
		d.ackEP0()

	default:
		log.Printf("usb: stalling unsupported request 0x%02x", setup.Request)
		d.stallEP0()
	}
}

func (d *Device) doGetDescriptor(setup SetupData) {
	// USB 2.0 Table 9-3: wValue = (descriptor type << 8) | descriptor
	// index; wIndex carries the string table's language ID instead, and
	// is otherwise unused (this device exposes a single language).
	descType := setup.Value >> 8
	index := setup.Value & 0xFF

	switch descType {
	case DescTypeDevice:
		d.txEP0(trim(d.Descriptors.Device.Bytes(), setup.Length))

	case DescTypeConfiguration:
		buf, err := d.Descriptors.ConfigurationBytes(index)
		if err != nil {
			log.Printf("usb: get_descriptor configuration index=%d: %v", index, err)
			d.stallEP0()
			return
		}
		d.txEP0(trim(buf, setup.Length))

	case DescTypeString:
		buf, err := d.Descriptors.StringBytes(index)
		if err != nil {
			log.Printf("usb: get_descriptor string index=%d: %v", index, err)
			d.stallEP0()
			return
		}
		d.txEP0(trim(buf, setup.Length))

	case DescTypeDeviceQualifier:
		d.txEP0(trim(d.Descriptors.Qualifier.Bytes(), setup.Length))

	default:
		log.Printf("usb: get_descriptor unsupported type=%d index=%d", descType, index)
		d.stallEP0()
	}
}
