package usb2snes

import "github.com/pzl/usb2snes/gusb"

// Endpoint identifies one direction of one transfer kind on a device,
// together with the configuration/interface/alt-setting it belongs to.
type Endpoint struct {
	Config  uint8
	Iface   uint8
	Setting uint8
	Address uint8
}

// endpointLeaf is one endpoint descriptor annotated with its ancestry in
// the configuration tree.
type endpointLeaf struct {
	config  uint8
	iface   uint8
	setting uint8
	ep      gusb.EndpointDescriptor
}

// endpointLeaves flattens the nested descriptor tree into its endpoint
// leaves, in enumeration order.
func endpointLeaves(dd *gusb.DeviceDescriptor) []endpointLeaf {
	var leaves []endpointLeaf
	for _, cfg := range dd.Configs {
		for _, intf := range cfg.Interfaces {
			for _, ep := range intf.Endpoints {
				leaves = append(leaves, endpointLeaf{
					config:  cfg.Value,
					iface:   intf.InterfaceNumber,
					setting: intf.SettingNumber,
					ep:      ep,
				})
			}
		}
	}
	return leaves
}

// findEndpoints selects an (in, out) endpoint pair of the requested
// transfer kind. When several endpoints share a direction, the last one
// enumerated wins. Both directions must be present for a usable pair.
func findEndpoints(dd *gusb.DeviceDescriptor, tt gusb.TransferType) (in, out Endpoint, ok bool) {
	var haveIn, haveOut bool
	for _, leaf := range endpointLeaves(dd) {
		if leaf.ep.TransferType() != tt {
			continue
		}
		e := Endpoint{
			Config:  leaf.config,
			Iface:   leaf.iface,
			Setting: leaf.setting,
			Address: leaf.ep.Address,
		}
		if leaf.ep.Direction() == gusb.DirectionIn {
			in, haveIn = e, true
		} else {
			out, haveOut = e, true
		}
	}
	if !haveIn || !haveOut {
		return Endpoint{}, Endpoint{}, false
	}
	return in, out, true
}
