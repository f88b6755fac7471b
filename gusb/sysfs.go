package gusb

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerr "github.com/pkg/errors"
)

const sysfsRoot = "/sys/bus/usb/devices"

// sysfsDeviceDirs lists the sysfs entries that are devices: root hubs
// ("usb1") and attached devices ("1-4", "1-4.2"). Interface entries
// ("1-4:1.0") are skipped.
func sysfsDeviceDirs() ([]string, error) {
	entries, err := os.ReadDir(sysfsRoot)
	if err != nil {
		return nil, pkgerr.Wrap(err, "reading sysfs usb directory")
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.Contains(name, ":") {
			continue
		}
		if !strings.Contains(name, "-") && !strings.HasPrefix(name, "usb") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// sysfsDescriptor reads one device out of sysfs: bus/device numbers from
// the busnum/devnum attributes and the full descriptor tree from the raw
// "descriptors" attribute, which holds the device descriptor followed by
// every configuration descriptor.
func sysfsDescriptor(name string) (*DeviceDescriptor, error) {
	dir := filepath.Join(sysfsRoot, name)

	bus, err := readAttrInt(filepath.Join(dir, "busnum"))
	if err != nil {
		return nil, err
	}
	dev, err := readAttrInt(filepath.Join(dir, "devnum"))
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(dir, "descriptors"))
	if err != nil {
		return nil, pkgerr.Wrap(err, "reading descriptors")
	}

	dd, err := ParseDescriptors(raw)
	if err != nil {
		return nil, err
	}
	dd.PathInfo = PathInfo{Bus: bus, Dev: dev, SysPath: dir}
	return dd, nil
}

func readAttrInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
