package gusb

import (
	"time"
	"unsafe"

	pkgerr "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// usbfs ioctl request codes (64-bit Linux).
const (
	USBDEVFS_CONTROL          = 0xc0185500
	USBDEVFS_BULK             = 0xc0185502
	USBDEVFS_SETINTERFACE     = 0x80085504
	USBDEVFS_SETCONFIGURATION = 0x80045505
	USBDEVFS_GETDRIVER        = 0x41045508
	USBDEVFS_CLAIMINTERFACE   = 0x8004550f
	USBDEVFS_RELEASEINTERFACE = 0x80045510
	USBDEVFS_IOCTL            = 0xc0105512
	USBDEVFS_DISCONNECT       = 0x00005516
	USBDEVFS_CONNECT          = 0x00005517
)

// kernel struct usbdevfs_bulktransfer
type bulkTransfer struct {
	Endpoint uint32
	Length   uint32
	Timeout  uint32 // milliseconds
	Data     unsafe.Pointer
}

// kernel struct usbdevfs_getdriver
type getDriver struct {
	Interface uint32
	Driver    [256]byte
}

// kernel struct usbdevfs_ioctl, used to address an ioctl at one interface
// (kernel driver connect/disconnect go through this wrapper).
type ifaceIoctl struct {
	Ifno      int32
	IoctlCode int32
	Data      unsafe.Pointer
}

func (h *Handle) ioctl(req uintptr, arg unsafe.Pointer) (int, error) {
	r1, _, errno := unix.Syscall(unix.SYS_IOCTL, h.f.Fd(), req, uintptr(arg))
	if errno != 0 {
		return 0, errno
	}
	return int(r1), nil
}

// BulkTransfer performs one synchronous bulk transfer on the given
// endpoint address. For IN endpoints (bit 7 set) the buffer is filled and
// the number of bytes received is returned; for OUT endpoints the buffer
// is sent and the number of bytes written is returned.
func (h *Handle) BulkTransfer(ep uint8, buf []byte, timeout time.Duration) (int, error) {
	bt := bulkTransfer{
		Endpoint: uint32(ep),
		Length:   uint32(len(buf)),
		Timeout:  uint32(timeout.Milliseconds()),
	}
	if len(buf) > 0 {
		bt.Data = unsafe.Pointer(&buf[0])
	}

	n, err := h.ioctl(USBDEVFS_BULK, unsafe.Pointer(&bt))
	if err != nil {
		return 0, pkgerr.Wrapf(err, "bulk transfer on ep %02x", ep)
	}
	return n, nil
}

// InterruptTransfer performs one synchronous interrupt transfer. usbfs
// services interrupt endpoints through the same bulk ioctl.
func (h *Handle) InterruptTransfer(ep uint8, buf []byte, timeout time.Duration) (int, error) {
	return h.BulkTransfer(ep, buf, timeout)
}

func (h *Handle) ClaimInterface(ifno uint8) error {
	n := uint32(ifno)
	if _, err := h.ioctl(USBDEVFS_CLAIMINTERFACE, unsafe.Pointer(&n)); err != nil {
		return pkgerr.Wrapf(err, "claiming interface %d", ifno)
	}
	return nil
}

func (h *Handle) ReleaseInterface(ifno uint8) error {
	n := uint32(ifno)
	if _, err := h.ioctl(USBDEVFS_RELEASEINTERFACE, unsafe.Pointer(&n)); err != nil {
		return pkgerr.Wrapf(err, "releasing interface %d", ifno)
	}
	return nil
}

func (h *Handle) SetConfiguration(cfg uint8) error {
	n := uint32(cfg)
	if _, err := h.ioctl(USBDEVFS_SETCONFIGURATION, unsafe.Pointer(&n)); err != nil {
		return pkgerr.Wrapf(err, "setting configuration %d", cfg)
	}
	return nil
}

func (h *Handle) SetAltSetting(ifno uint8, alt uint8) error {
	si := struct {
		Interface  uint32
		AltSetting uint32
	}{uint32(ifno), uint32(alt)}
	if _, err := h.ioctl(USBDEVFS_SETINTERFACE, unsafe.Pointer(&si)); err != nil {
		return pkgerr.Wrapf(err, "setting interface %d alt %d", ifno, alt)
	}
	return nil
}

// GetDriver returns the name of the kernel driver bound to an interface,
// or "" if none is bound.
func (h *Handle) GetDriver(ifno uint8) (string, error) {
	gd := getDriver{Interface: uint32(ifno)}
	if _, err := h.ioctl(USBDEVFS_GETDRIVER, unsafe.Pointer(&gd)); err != nil {
		if err == unix.ENODATA {
			return "", nil
		}
		return "", pkgerr.Wrapf(err, "querying driver for interface %d", ifno)
	}
	return unix.ByteSliceToString(gd.Driver[:]), nil
}

// DetachKernelDriver unbinds whatever kernel driver currently holds the
// interface. No driver bound is not an error.
func (h *Handle) DetachKernelDriver(ifno uint8) error {
	cmd := ifaceIoctl{Ifno: int32(ifno), IoctlCode: USBDEVFS_DISCONNECT}
	if _, err := h.ioctl(USBDEVFS_IOCTL, unsafe.Pointer(&cmd)); err != nil {
		if err == unix.ENODATA || err == unix.ENOENT {
			return nil
		}
		return pkgerr.Wrapf(err, "detaching kernel driver from interface %d", ifno)
	}
	lg.WithField("iface", ifno).Debug("detached kernel driver")
	return nil
}

// AttachKernelDriver asks the kernel to rebind a driver to the interface.
// Nothing to rebind, or an already-bound driver, are not errors.
func (h *Handle) AttachKernelDriver(ifno uint8) error {
	cmd := ifaceIoctl{Ifno: int32(ifno), IoctlCode: USBDEVFS_CONNECT}
	if _, err := h.ioctl(USBDEVFS_IOCTL, unsafe.Pointer(&cmd)); err != nil {
		if err == unix.ENODATA || err == unix.EBUSY {
			return nil
		}
		return pkgerr.Wrapf(err, "reattaching kernel driver to interface %d", ifno)
	}
	lg.WithField("iface", ifno).Debug("reattached kernel driver")
	return nil
}
