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

// NewCDCDescriptors assembles the static descriptor table for a single
// CDC-ACM function: an IAD grouping a one-endpoint COMM interface
// (notification IN, EP1) with a two-endpoint DATA interface (bulk OUT
// EP2, bulk IN EP3), matching the byte layout a Linux or macOS host's
// built-in CDC-ACM driver expects with no custom driver.
func NewCDCDescriptors(manufacturer, product string) *Descriptors {
	d := &Descriptors{
		Device:    &DeviceDescriptor{},
		Qualifier: &DeviceQualifierDescriptor{},
	}
	d.Device.SetDefaults()
	d.Qualifier.SetDefaults()

	d.SetLanguageCodes([]uint16{0x0409})
	d.Device.Manufacturer = d.AddString(manufacturer)
	d.Device.Product = d.AddString(product)

	conf := &ConfigurationDescriptor{}
	conf.SetDefaults()

	comm := &InterfaceDescriptor{}
	comm.SetDefaults()
	comm.InterfaceClass = 0x02 // CDC
	comm.InterfaceSubClass = 0x02
	comm.InterfaceProtocol = 0x01

	header := &CDCHeaderDescriptor{}
	header.SetDefaults()
	callMgmt := &CDCCallManagementDescriptor{}
	callMgmt.SetDefaults()
	acm := &CDCACMDescriptor{}
	acm.SetDefaults()
	union := &CDCUnionDescriptor{}
	union.SetDefaults()

	notify := &EndpointDescriptor{}
	notify.SetDefaults()
	notify.EndpointAddress = 0x80 | epNotifyIn
	notify.Attributes = 0x03 // interrupt
	notify.MaxPacketSize = 8
	notify.Interval = 16
	comm.Endpoints = append(comm.Endpoints, notify)
	comm.NumEndpoints = 1

	iad := &InterfaceAssociationDescriptor{}
	iad.SetDefaults()
	comm.IAD = iad

	data := &InterfaceDescriptor{}
	data.SetDefaults()
	data.InterfaceClass = 0x0A // CDC Data

	out := &EndpointDescriptor{}
	out.SetDefaults()
	out.EndpointAddress = epBulkOut
	out.Attributes = 0x02 // bulk
	out.MaxPacketSize = maxPacketBulk

	in := &EndpointDescriptor{}
	in.SetDefaults()
	in.EndpointAddress = 0x80 | epBulkIn
	in.Attributes = 0x02
	in.MaxPacketSize = maxPacketBulk

	data.Endpoints = append(data.Endpoints, out, in)
	data.NumEndpoints = 2

	conf.AddInterface(comm)
	conf.AddInterface(data)

	union.MasterInterface = comm.InterfaceNumber
	union.SlaveInterface0 = data.InterfaceNumber
	callMgmt.DataInterface = data.InterfaceNumber
	iad.FirstInterface = comm.InterfaceNumber

	comm.ClassDescriptors = [][]byte{
		header.Bytes(),
		callMgmt.Bytes(),
		acm.Bytes(),
		union.Bytes(),
	}

	d.Configuration = conf
	d.Device.SerialNumber = 0

	return d
}
