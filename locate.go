package usb2snes

import (
	"fmt"

	"github.com/apex/log"
	"github.com/pzl/usb2snes/gusb"
)

// matchDevice picks the first descriptor in enumeration order whose
// vendor/product pair matches. Enumeration order is whatever the
// transport provides; ties go to the first device seen.
func matchDevice(devs []gusb.DeviceDescriptor, vid, pid uint16) *gusb.DeviceDescriptor {
	for i := range devs {
		if devs[i].Vendor == vid && devs[i].Product == pid {
			return &devs[i]
		}
	}
	return nil
}

// openDevice scans attached devices for vid:pid and opens the first match.
func openDevice(vid, pid uint16) (*gusb.Handle, *gusb.DeviceDescriptor, error) {
	devs, err := gusb.List()
	if err != nil {
		return nil, nil, err
	}

	dd := matchDevice(devs, vid, pid)
	if dd == nil {
		return nil, nil, fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, vid, pid)
	}
	log.WithFields(log.Fields{
		"vid": fmt.Sprintf("%04x", vid),
		"pid": fmt.Sprintf("%04x", pid),
		"bus": dd.PathInfo.Bus,
		"dev": dd.PathInfo.Dev,
	}).Debug("found device")

	h, err := dd.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDeviceNotFound, err)
	}
	return h, dd, nil
}

// ifaceClaim holds exclusive access to one interface for the life of a
// session: the kernel driver is detached (if one was bound) and the
// interface claimed, then the reverse on release. Release is safe on a nil
// receiver and on partially acquired state, so every construction error
// path can release unconditionally.
type ifaceClaim struct {
	h        *gusb.Handle
	ifno     uint8
	claimed  bool
	detached bool
}

func claimInterface(h *gusb.Handle, ep Endpoint) (*ifaceClaim, error) {
	c := &ifaceClaim{h: h, ifno: ep.Iface}

	drv, err := h.GetDriver(ep.Iface)
	if err != nil {
		return nil, err
	}
	if drv != "" && drv != "usbfs" {
		log.WithField("driver", drv).Debug("detaching kernel driver")
		if err := h.DetachKernelDriver(ep.Iface); err != nil {
			return nil, err
		}
		c.detached = true
	}

	if err := h.ClaimInterface(ep.Iface); err != nil {
		c.release()
		return nil, err
	}
	c.claimed = true
	return c, nil
}

func (c *ifaceClaim) release() {
	if c == nil {
		return
	}
	if c.claimed {
		if err := c.h.ReleaseInterface(c.ifno); err != nil {
			log.WithError(err).Warn("releasing interface")
		}
		c.claimed = false
	}
	if c.detached {
		if err := c.h.AttachKernelDriver(c.ifno); err != nil {
			log.WithError(err).Warn("reattaching kernel driver")
		}
		c.detached = false
	}
}
