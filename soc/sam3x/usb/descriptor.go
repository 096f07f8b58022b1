// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package usb drives the SAM3X8E UOTGHS controller in full-speed device
// mode, implementing the minimal USB 2.0 Chapter 9 control-transfer
// state machine and a single CDC-ACM serial function, descriptor
// assembly grounded on the teacher's builder-struct pattern
// (SetDefaults/Bytes pairs assembled by encoding/binary).
package usb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
)

// Standard USB descriptor sizes.
const (
	DeviceLength               = 18
	ConfigurationLength        = 9
	InterfaceAssociationLength = 8
	InterfaceLength            = 9
	EndpointLength             = 7
	DeviceQualifierLength      = 10
)

// Standard descriptor types (USB 2.0 Table 9-5).
const (
	DescTypeDevice                  = 1
	DescTypeConfiguration           = 2
	DescTypeString                  = 3
	DescTypeInterface               = 4
	DescTypeEndpoint                = 5
	DescTypeDeviceQualifier         = 6
	DescTypeOtherSpeedConfiguration = 7
	DescTypeInterfacePower          = 8
	DescTypeInterfaceAssociation    = 11
)

// DeviceDescriptor implements USB 2.0 Table 9-8.
type DeviceDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	BcdUSB            uint16
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize     uint8
	VendorID          uint16
	ProductID         uint16
	BcdDevice         uint16
	Manufacturer      uint8
	Product           uint8
	SerialNumber      uint8
	NumConfigurations uint8
}

// SetDefaults fills in the fields this firmware never varies: USB 2.0,
// full-speed EP0 max packet size 64, and the Arduino VID/PID pair the
// host-side driver matching expects (open question: projects shipping a
// custom driver bundle should override VendorID/ProductID).
func (d *DeviceDescriptor) SetDefaults() {
	d.Length = DeviceLength
	d.DescriptorType = DescTypeDevice
	d.BcdUSB = 0x0200
	d.DeviceClass = 0x02 // CDC
	d.MaxPacketSize = 64
	d.VendorID = 0x2341
	d.ProductID = 0x003E
	d.NumConfigurations = 1
}

// Bytes serializes the descriptor.
func (d *DeviceDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// ConfigurationDescriptor implements USB 2.0 Table 9-10.
type ConfigurationDescriptor struct {
	Length             uint8
	DescriptorType     uint8
	TotalLength        uint16
	NumInterfaces      uint8
	ConfigurationValue uint8
	ConfigurationStr   uint8
	Attributes         uint8
	MaxPower           uint8

	Interfaces []*InterfaceDescriptor
}

// SetDefaults fills in bus-powered, 500 mA defaults.
func (d *ConfigurationDescriptor) SetDefaults() {
	d.Length = ConfigurationLength
	d.DescriptorType = DescTypeConfiguration
	d.ConfigurationValue = 1
	d.Attributes = 0x80
	d.MaxPower = 250
}

// AddInterface appends an interface, assigning its interface number.
func (d *ConfigurationDescriptor) AddInterface(iface *InterfaceDescriptor) {
	iface.InterfaceNumber = d.NumInterfaces
	d.NumInterfaces++
	d.Interfaces = append(d.Interfaces, iface)
}

// Bytes serializes only the configuration descriptor header; interfaces
// and endpoints are serialized separately by Descriptors.ConfigurationBytes
// so wTotalLength can be patched after assembly.
func (d *ConfigurationDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.TotalLength)
	binary.Write(buf, binary.LittleEndian, d.NumInterfaces)
	binary.Write(buf, binary.LittleEndian, d.ConfigurationValue)
	binary.Write(buf, binary.LittleEndian, d.ConfigurationStr)
	binary.Write(buf, binary.LittleEndian, d.Attributes)
	binary.Write(buf, binary.LittleEndian, d.MaxPower)
	return buf.Bytes()
}

// InterfaceAssociationDescriptor groups the CDC COMM and DATA interfaces
// under one function, per the USB 2.0 ECN.
type InterfaceAssociationDescriptor struct {
	Length           uint8
	DescriptorType   uint8
	FirstInterface   uint8
	InterfaceCount   uint8
	FunctionClass    uint8
	FunctionSubClass uint8
	FunctionProtocol uint8
	Function         uint8
}

// SetDefaults fills in the CDC-ACM function class triple (0x02/0x02/0x01).
func (d *InterfaceAssociationDescriptor) SetDefaults() {
	d.Length = InterfaceAssociationLength
	d.DescriptorType = DescTypeInterfaceAssociation
	d.InterfaceCount = 2
	d.FunctionClass = 0x02
	d.FunctionSubClass = 0x02
	d.FunctionProtocol = 0x01
}

// Bytes serializes the descriptor.
func (d *InterfaceAssociationDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// InterfaceDescriptor implements USB 2.0 Table 9-12.
type InterfaceDescriptor struct {
	IAD *InterfaceAssociationDescriptor

	Length            uint8
	DescriptorType    uint8
	InterfaceNumber   uint8
	AlternateSetting  uint8
	NumEndpoints      uint8
	InterfaceClass    uint8
	InterfaceSubClass uint8
	InterfaceProtocol uint8
	InterfaceStr      uint8

	Endpoints        []*EndpointDescriptor
	ClassDescriptors [][]byte
}

// SetDefaults fills in the standard interface descriptor length/type.
func (d *InterfaceDescriptor) SetDefaults() {
	d.Length = InterfaceLength
	d.DescriptorType = DescTypeInterface
}

// Bytes serializes the IAD (if present), the interface header, and any
// class-specific (CDC functional) descriptors, but not its endpoints —
// those are appended by the caller so ordering matches the wire layout
// interface / class descriptors / endpoints.
func (d *InterfaceDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)

	if d.IAD != nil {
		buf.Write(d.IAD.Bytes())
	}

	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.InterfaceNumber)
	binary.Write(buf, binary.LittleEndian, d.AlternateSetting)
	binary.Write(buf, binary.LittleEndian, d.NumEndpoints)
	binary.Write(buf, binary.LittleEndian, d.InterfaceClass)
	binary.Write(buf, binary.LittleEndian, d.InterfaceSubClass)
	binary.Write(buf, binary.LittleEndian, d.InterfaceProtocol)
	binary.Write(buf, binary.LittleEndian, d.InterfaceStr)

	for _, cd := range d.ClassDescriptors {
		buf.Write(cd)
	}

	return buf.Bytes()
}

// EndpointDescriptor implements USB 2.0 Table 9-13.
type EndpointDescriptor struct {
	Length          uint8
	DescriptorType  uint8
	EndpointAddress uint8
	Attributes      uint8
	MaxPacketSize   uint16
	Interval        uint8
}

// SetDefaults fills in the standard endpoint descriptor length/type.
func (d *EndpointDescriptor) SetDefaults() {
	d.Length = EndpointLength
	d.DescriptorType = DescTypeEndpoint
}

// Number returns the endpoint number, stripping the direction bit.
func (d *EndpointDescriptor) Number() int {
	return int(d.EndpointAddress & 0x0F)
}

// IsIN reports whether the endpoint is host-IN (device transmits).
func (d *EndpointDescriptor) IsIN() bool {
	return d.EndpointAddress&0x80 != 0
}

// Bytes serializes the descriptor.
func (d *EndpointDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.EndpointAddress)
	binary.Write(buf, binary.LittleEndian, d.Attributes)
	binary.Write(buf, binary.LittleEndian, d.MaxPacketSize)
	binary.Write(buf, binary.LittleEndian, d.Interval)
	return buf.Bytes()
}

// StringDescriptor implements USB 2.0 §9.6.7.
type StringDescriptor struct {
	Length         uint8
	DescriptorType uint8
}

// SetDefaults fills in the standard string descriptor type.
func (d *StringDescriptor) SetDefaults() {
	d.Length = 2
	d.DescriptorType = DescTypeString
}

// Bytes serializes the descriptor header only; callers append payload.
func (d *StringDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	return buf.Bytes()
}

// DeviceQualifierDescriptor implements USB 2.0 §9.6.2. Full-speed-only
// devices still report one so a host that queries it gets a coherent
// answer rather than a stall.
type DeviceQualifierDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	BcdUSB            uint16
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize     uint8
	NumConfigurations uint8
	Reserved          uint8
}

// SetDefaults fills in the standard device qualifier fields.
func (d *DeviceQualifierDescriptor) SetDefaults() {
	d.Length = DeviceQualifierLength
	d.DescriptorType = DescTypeDeviceQualifier
	d.BcdUSB = 0x0200
	d.MaxPacketSize = 64
	d.NumConfigurations = 1
}

// Bytes serializes the descriptor.
func (d *DeviceQualifierDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// Descriptors is the full static descriptor table for this device: one
// device descriptor, one configuration (with its interfaces/endpoints),
// and the string table. Index 0 of Strings is always the language-code
// tuple.
type Descriptors struct {
	Device        *DeviceDescriptor
	Qualifier     *DeviceQualifierDescriptor
	Configuration *ConfigurationDescriptor
	Strings       [][]byte
}

func (d *Descriptors) setStringDescriptor(payload []byte, isLangIDs bool) uint8 {
	sd := &StringDescriptor{}
	sd.SetDefaults()
	sd.Length += uint8(len(payload))

	buf := append(sd.Bytes(), payload...)

	if isLangIDs && len(d.Strings) >= 1 {
		d.Strings[0] = buf
		return 0
	}

	d.Strings = append(d.Strings, buf)
	return uint8(len(d.Strings) - 1)
}

// SetLanguageCodes installs string descriptor zero, the USB 2.0
// "Specifying Languages Supported by the Device" tuple.
func (d *Descriptors) SetLanguageCodes(codes []uint16) {
	var buf []byte
	for _, c := range codes {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, c)
		buf = append(buf, b...)
	}
	d.setStringDescriptor(buf, true)
}

// AddString encodes s as UTF-16LE and appends it to the string table,
// returning its index.
func (d *Descriptors) AddString(s string) uint8 {
	var buf []byte
	for _, u := range utf16.Encode([]rune(s)) {
		buf = append(buf, byte(u&0xFF), byte(u>>8))
	}
	return d.setStringDescriptor(buf, false)
}

// ConfigurationBytes assembles the configuration descriptor, its
// interfaces, class descriptors, and endpoints in wire order, then
// patches wTotalLength to the assembled size.
func (d *Descriptors) ConfigurationBytes(configIndex uint16) ([]byte, error) {
	if configIndex != 0 {
		return nil, fmt.Errorf("usb: invalid configuration index %d", configIndex)
	}

	conf := d.Configuration
	var body []byte

	for _, iface := range conf.Interfaces {
		body = append(body, iface.Bytes()...)
		for _, ep := range iface.Endpoints {
			body = append(body, ep.Bytes()...)
		}
	}

	conf.TotalLength = uint16(int(conf.Length) + len(body))

	return append(conf.Bytes(), body...), nil
}

// ErrInvalidStringIndex is returned by StringBytes for an out-of-range
// index.
var ErrInvalidStringIndex = errors.New("usb: invalid string descriptor index")

// StringBytes returns the serialized string descriptor at index.
func (d *Descriptors) StringBytes(index uint16) ([]byte, error) {
	if int(index) >= len(d.Strings) {
		return nil, ErrInvalidStringIndex
	}
	return d.Strings[index], nil
}

// trim truncates buf to wLength if the host asked for fewer bytes than
// the descriptor contains.
func trim(buf []byte, wLength uint16) []byte {
	if int(wLength) < len(buf) {
		return buf[:wLength]
	}
	return buf
}
