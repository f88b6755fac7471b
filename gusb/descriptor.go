package gusb

import (
	"encoding/binary"
	"errors"
)

// Descriptor type codes from the USB spec, section 9.4.
const (
	dtDevice    = 0x01
	dtConfig    = 0x02
	dtInterface = 0x04
	dtEndpoint  = 0x05
)

const (
	deviceDescLen    = 18
	configDescLen    = 9
	interfaceDescLen = 9
	endpointDescLen  = 7
)

var (
	ErrShortDescriptor = errors.New("descriptor data truncated")
	ErrBadDescriptor   = errors.New("malformed descriptor data")
)

// ParseDescriptors parses a raw descriptor blob as exposed by the sysfs
// "descriptors" attribute: one device descriptor followed by the complete
// descriptor set of each configuration. Multi-byte fields are
// little-endian per the USB spec. Unknown descriptor types (HID, class
// specific, companions) are skipped by their declared length.
func ParseDescriptors(raw []byte) (*DeviceDescriptor, error) {
	if len(raw) < deviceDescLen {
		return nil, ErrShortDescriptor
	}
	if raw[0] < deviceDescLen || raw[1] != dtDevice {
		return nil, ErrBadDescriptor
	}

	dd := &DeviceDescriptor{
		USBVersion:     binary.LittleEndian.Uint16(raw[2:4]),
		Class:          raw[4],
		SubClass:       raw[5],
		Protocol:       raw[6],
		MaxPacketSize0: raw[7],
		Vendor:         binary.LittleEndian.Uint16(raw[8:10]),
		Product:        binary.LittleEndian.Uint16(raw[10:12]),
		Release:        binary.LittleEndian.Uint16(raw[12:14]),
		NumConfigs:     raw[17],
	}

	pos := int(raw[0])
	for pos+2 <= len(raw) {
		length := int(raw[pos])
		if length < 2 || pos+length > len(raw) {
			return nil, ErrBadDescriptor
		}

		switch raw[pos+1] {
		case dtConfig:
			if length < configDescLen {
				return nil, ErrBadDescriptor
			}
			dd.Configs = append(dd.Configs, ConfigDescriptor{
				Value:         raw[pos+5],
				NumInterfaces: raw[pos+4],
				SelfPowered:   raw[pos+7]&0x40 != 0,
				RemoteWakeup:  raw[pos+7]&0x20 != 0,
				MaxPower:      raw[pos+8],
			})

		case dtInterface:
			if length < interfaceDescLen {
				return nil, ErrBadDescriptor
			}
			if len(dd.Configs) == 0 {
				return nil, ErrBadDescriptor
			}
			cfg := &dd.Configs[len(dd.Configs)-1]
			cfg.Interfaces = append(cfg.Interfaces, InterfaceDescriptor{
				InterfaceNumber: raw[pos+2],
				SettingNumber:   raw[pos+3],
				Class:           raw[pos+5],
				SubClass:        raw[pos+6],
				Protocol:        raw[pos+7],
			})

		case dtEndpoint:
			if length < endpointDescLen {
				return nil, ErrBadDescriptor
			}
			if len(dd.Configs) == 0 {
				return nil, ErrBadDescriptor
			}
			cfg := &dd.Configs[len(dd.Configs)-1]
			if len(cfg.Interfaces) == 0 {
				return nil, ErrBadDescriptor
			}
			intf := &cfg.Interfaces[len(cfg.Interfaces)-1]
			intf.Endpoints = append(intf.Endpoints, EndpointDescriptor{
				Address:       raw[pos+2],
				Attributes:    raw[pos+3],
				MaxPacketSize: binary.LittleEndian.Uint16(raw[pos+4 : pos+6]),
				Interval:      raw[pos+6],
			})
		}

		pos += length
	}

	return dd, nil
}
