package gusb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pkgerr "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var ErrDeviceNotFound = errors.New("Device not found")

// PathInfo locates a device on the host: its bus/device number pair (the
// usbfs node under /dev/bus/usb) and its sysfs directory.
type PathInfo struct {
	Bus     int
	Dev     int
	SysPath string
}

// DeviceDescriptor is a parsed USB device descriptor plus the full
// configuration tree read from the same descriptor blob.
type DeviceDescriptor struct {
	PathInfo PathInfo

	USBVersion     uint16
	Class          uint8
	SubClass       uint8
	Protocol       uint8
	MaxPacketSize0 uint8
	Vendor         uint16
	Product        uint16
	Release        uint16
	NumConfigs     uint8

	Configs []ConfigDescriptor
}

type ConfigDescriptor struct {
	Value         uint8
	NumInterfaces uint8
	SelfPowered   bool
	RemoteWakeup  bool
	MaxPower      uint8 // in 2mA units

	// Interfaces holds one entry per (interface, alternate setting) pair,
	// in descriptor order.
	Interfaces []InterfaceDescriptor
}

type InterfaceDescriptor struct {
	InterfaceNumber uint8
	SettingNumber   uint8
	Class           uint8
	SubClass        uint8
	Protocol        uint8

	Endpoints []EndpointDescriptor
}

type EndpointDescriptor struct {
	Address       uint8
	Attributes    uint8
	MaxPacketSize uint16
	Interval      uint8
}

// TransferType is the endpoint transfer kind from bmAttributes bits 1..0.
type TransferType uint8

const (
	TransferTypeControl TransferType = iota
	TransferTypeIsochronous
	TransferTypeBulk
	TransferTypeInterrupt
)

func (t TransferType) String() string {
	switch t {
	case TransferTypeControl:
		return "control"
	case TransferTypeIsochronous:
		return "isochronous"
	case TransferTypeBulk:
		return "bulk"
	case TransferTypeInterrupt:
		return "interrupt"
	}
	return "invalid"
}

// Direction is the endpoint direction from bit 7 of the address.
type Direction uint8

const (
	DirectionOut Direction = 0x00
	DirectionIn  Direction = 0x80
)

func (e EndpointDescriptor) TransferType() TransferType {
	return TransferType(e.Attributes & 0x03)
}

func (e EndpointDescriptor) Direction() Direction {
	return Direction(e.Address & 0x80)
}

// Walk enumerates attached devices through sysfs, calling fn with each
// parsed descriptor. Devices whose descriptors cannot be read are skipped.
// fn may be nil to collect everything; returning filepath.SkipDir from fn
// stops the walk early. The descriptors seen so far are returned either way.
func Walk(fn func(dd *DeviceDescriptor) error) ([]DeviceDescriptor, error) {
	names, err := sysfsDeviceDirs()
	if err != nil {
		return nil, err
	}

	var dds []DeviceDescriptor
	for _, name := range names {
		dd, err := sysfsDescriptor(name)
		if err != nil {
			lg.WithError(err).WithField("dev", name).Debug("skipping unreadable device")
			continue
		}
		dds = append(dds, *dd)
		if fn != nil {
			if err := fn(dd); err == filepath.SkipDir {
				break
			} else if err != nil {
				return dds, err
			}
		}
	}
	return dds, nil
}

// List returns descriptors for every attached device.
func List() ([]DeviceDescriptor, error) {
	return Walk(nil)
}

// Handle is an open usbfs device node.
type Handle struct {
	f *os.File
}

// Open opens the usbfs node for this device.
func (dd DeviceDescriptor) Open() (*Handle, error) {
	path := fmt.Sprintf("/dev/bus/usb/%03d/%03d", dd.PathInfo.Bus, dd.PathInfo.Dev)
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_CLOEXEC, 0)
	if os.IsNotExist(err) {
		return nil, ErrDeviceNotFound
	} else if err != nil {
		return nil, pkgerr.Wrapf(err, "opening %s", path)
	}
	lg.WithField("path", path).Debug("opened device")
	return &Handle{f: f}, nil
}

func (h *Handle) Close() error {
	if h == nil || h.f == nil {
		return nil
	}
	err := h.f.Close()
	h.f = nil
	return err
}
