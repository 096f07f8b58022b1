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
	"bytes"
	"encoding/binary"
)

// CDC class-specific descriptor constants (USB Class Definitions for
// Communication Devices 1.1).
const (
	CSInterface = 0x24

	cdcHeaderLength         = 5
	cdcCallManagementLength = 5
	cdcACMLength            = 4
	cdcUnionLength          = 5

	cdcHeader         = 0
	cdcCallManagement = 1
	cdcACM            = 2
	cdcUnion          = 6
)

// CDC class-specific request codes (USB CDC 1.1 §6.2).
const (
	SetLineCoding        = 0x20
	GetLineCoding        = 0x21
	SetControlLineState  = 0x22
)

// CDCHeaderDescriptor implements CDC 1.1 Table 26.
type CDCHeaderDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubType uint8
	BcdCDC            uint16
}

// SetDefaults fills in CDC 1.10.
func (d *CDCHeaderDescriptor) SetDefaults() {
	d.Length = cdcHeaderLength
	d.DescriptorType = CSInterface
	d.DescriptorSubType = cdcHeader
	d.BcdCDC = 0x0110
}

// Bytes serializes the descriptor.
func (d *CDCHeaderDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// CDCCallManagementDescriptor implements CDC 1.1 Table 27.
type CDCCallManagementDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubType uint8
	Capabilities      uint8
	DataInterface     uint8
}

// SetDefaults fills in "no call management" capabilities — this device
// is a plain serial pipe.
func (d *CDCCallManagementDescriptor) SetDefaults() {
	d.Length = cdcCallManagementLength
	d.DescriptorType = CSInterface
	d.DescriptorSubType = cdcCallManagement
}

// Bytes serializes the descriptor.
func (d *CDCCallManagementDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// CDCACMDescriptor implements CDC 1.1 Table 28.
type CDCACMDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubType uint8
	Capabilities      uint8
}

// SetDefaults fills in support for Set/Get Line Coding and Set Control
// Line State, the only ACM requests this driver implements.
func (d *CDCACMDescriptor) SetDefaults() {
	d.Length = cdcACMLength
	d.DescriptorType = CSInterface
	d.DescriptorSubType = cdcACM
	d.Capabilities = 0x02
}

// Bytes serializes the descriptor.
func (d *CDCACMDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// CDCUnionDescriptor implements CDC 1.1 Table 33.
type CDCUnionDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	DescriptorSubType uint8
	MasterInterface   uint8
	SlaveInterface0   uint8
}

// SetDefaults fills in the union descriptor header; MasterInterface and
// SlaveInterface0 are assigned once interface numbers are known.
func (d *CDCUnionDescriptor) SetDefaults() {
	d.Length = cdcUnionLength
	d.DescriptorType = CSInterface
	d.DescriptorSubType = cdcUnion
}

// Bytes serializes the descriptor.
func (d *CDCUnionDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// LineCoding is the CDC line coding structure exchanged by
// Set/GetLineCoding (CDC 1.1 Table 17).
type LineCoding struct {
	DTERate    uint32
	CharFormat uint8
	ParityType uint8
	DataBits   uint8
}

// DefaultLineCoding is the line coding in effect before the host sets
// one explicitly.
func DefaultLineCoding() LineCoding {
	return LineCoding{DTERate: 115200, CharFormat: 1, ParityType: 0, DataBits: 8}
}

// Bytes serializes the 7-byte wire representation.
func (l LineCoding) Bytes() []byte {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint32(buf[0:4], l.DTERate)
	buf[4] = l.CharFormat
	buf[5] = l.ParityType
	buf[6] = l.DataBits
	return buf
}

// DecodeLineCoding parses the 7-byte wire representation written by
// SetLineCoding.
func DecodeLineCoding(buf []byte) LineCoding {
	return LineCoding{
		DTERate:    binary.LittleEndian.Uint32(buf[0:4]),
		CharFormat: buf[4],
		ParityType: buf[5],
		DataBits:   buf[6],
	}
}
