// Package gusb talks to the Linux usbfs and sysfs interfaces directly:
// device enumeration and descriptor parsing via /sys/bus/usb/devices, and
// transfers, interface claiming, and kernel driver handoff via ioctls on
// the /dev/bus/usb device node.
package gusb

import (
	"github.com/apex/log"
)

var lg log.Interface = log.Log

// SetLogger routes this package's logging through the given logger.
func SetLogger(l *log.Logger) {
	lg = l
}
