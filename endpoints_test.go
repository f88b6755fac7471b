package usb2snes

import (
	"testing"

	"github.com/pzl/usb2snes/gusb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bulkEp(addr uint8) gusb.EndpointDescriptor {
	return gusb.EndpointDescriptor{Address: addr, Attributes: 0x02, MaxPacketSize: 512}
}

func interruptEp(addr uint8) gusb.EndpointDescriptor {
	return gusb.EndpointDescriptor{Address: addr, Attributes: 0x03, MaxPacketSize: 64}
}

func deviceWith(configs ...gusb.ConfigDescriptor) *gusb.DeviceDescriptor {
	return &gusb.DeviceDescriptor{
		Vendor:     0x1209,
		Product:    0x5a22,
		NumConfigs: uint8(len(configs)),
		Configs:    configs,
	}
}

func TestFindEndpointsPair(t *testing.T) {
	dd := deviceWith(gusb.ConfigDescriptor{
		Value: 1,
		Interfaces: []gusb.InterfaceDescriptor{{
			InterfaceNumber: 0,
			Endpoints:       []gusb.EndpointDescriptor{bulkEp(0x81), bulkEp(0x02)},
		}},
	})

	in, out, ok := findEndpoints(dd, gusb.TransferTypeBulk)
	require.True(t, ok)
	assert.Equal(t, Endpoint{Config: 1, Iface: 0, Setting: 0, Address: 0x81}, in)
	assert.Equal(t, Endpoint{Config: 1, Iface: 0, Setting: 0, Address: 0x02}, out)
}

func TestFindEndpointsMissingDirection(t *testing.T) {
	onlyIn := deviceWith(gusb.ConfigDescriptor{
		Value: 1,
		Interfaces: []gusb.InterfaceDescriptor{{
			Endpoints: []gusb.EndpointDescriptor{bulkEp(0x81)},
		}},
	})
	_, _, ok := findEndpoints(onlyIn, gusb.TransferTypeBulk)
	assert.False(t, ok)

	onlyOut := deviceWith(gusb.ConfigDescriptor{
		Value: 1,
		Interfaces: []gusb.InterfaceDescriptor{{
			Endpoints: []gusb.EndpointDescriptor{bulkEp(0x02)},
		}},
	})
	_, _, ok = findEndpoints(onlyOut, gusb.TransferTypeBulk)
	assert.False(t, ok)

	_, _, ok = findEndpoints(deviceWith(), gusb.TransferTypeBulk)
	assert.False(t, ok)
}

func TestFindEndpointsKindFilter(t *testing.T) {
	// interrupt endpoints only; a bulk query must come up empty
	dd := deviceWith(gusb.ConfigDescriptor{
		Value: 1,
		Interfaces: []gusb.InterfaceDescriptor{{
			Endpoints: []gusb.EndpointDescriptor{interruptEp(0x83), interruptEp(0x04)},
		}},
	})

	_, _, ok := findEndpoints(dd, gusb.TransferTypeBulk)
	assert.False(t, ok)

	in, out, ok := findEndpoints(dd, gusb.TransferTypeInterrupt)
	require.True(t, ok)
	assert.Equal(t, uint8(0x83), in.Address)
	assert.Equal(t, uint8(0x04), out.Address)
}

// When several endpoints of a direction match, the last one enumerated
// wins, across alternate settings and configurations.
func TestFindEndpointsLastWins(t *testing.T) {
	dd := deviceWith(
		gusb.ConfigDescriptor{
			Value: 1,
			Interfaces: []gusb.InterfaceDescriptor{{
				InterfaceNumber: 0,
				SettingNumber:   0,
				Endpoints:       []gusb.EndpointDescriptor{bulkEp(0x81), bulkEp(0x02)},
			}, {
				InterfaceNumber: 0,
				SettingNumber:   1,
				Endpoints:       []gusb.EndpointDescriptor{bulkEp(0x83)},
			}},
		},
		gusb.ConfigDescriptor{
			Value: 2,
			Interfaces: []gusb.InterfaceDescriptor{{
				InterfaceNumber: 1,
				Endpoints:       []gusb.EndpointDescriptor{bulkEp(0x04)},
			}},
		},
	)

	in, out, ok := findEndpoints(dd, gusb.TransferTypeBulk)
	require.True(t, ok)
	assert.Equal(t, Endpoint{Config: 1, Iface: 0, Setting: 1, Address: 0x83}, in)
	assert.Equal(t, Endpoint{Config: 2, Iface: 1, Setting: 0, Address: 0x04}, out)
}

func TestMatchDevice(t *testing.T) {
	devs := []gusb.DeviceDescriptor{
		{Vendor: 0x1d50, Product: 0x6018, PathInfo: gusb.PathInfo{Bus: 1, Dev: 4}},
		{Vendor: 0x1209, Product: 0x5a22, PathInfo: gusb.PathInfo{Bus: 1, Dev: 7}},
		{Vendor: 0x1209, Product: 0x5a22, PathInfo: gusb.PathInfo{Bus: 2, Dev: 3}},
	}

	got := matchDevice(devs, 0x1209, 0x5a22)
	require.NotNil(t, got)
	// first matching device in enumeration order, later duplicates ignored
	assert.Equal(t, 7, got.PathInfo.Dev)

	assert.Nil(t, matchDevice(devs, 0x046d, 0xc077))
	assert.Nil(t, matchDevice(nil, 0x1209, 0x5a22))
}
