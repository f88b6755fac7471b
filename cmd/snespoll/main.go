// snespoll opens the first attached sd2snes and polls a window of console
// memory in a loop, printing it as a hex dump.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pzl/usb2snes"
)

var (
	vid      = flag.String("vid", "0x1209", "vendor id of the device")
	pid      = flag.String("pid", "0x5a22", "product id of the device")
	addr     = flag.String("addr", "0xF50000", "memory offset to read")
	size     = flag.Uint("size", 2048, "bytes to read per poll")
	interval = flag.Duration("interval", 500*time.Millisecond, "delay between polls")
)

func parseHex(s string, bits int) uint64 {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, bits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad hex value %q: %v\n", s, err)
		os.Exit(1)
	}
	return v
}

func main() {
	flag.Parse()

	snes, err := usb2snes.NewVidPid(uint16(parseHex(*vid, 16)), uint16(parseHex(*pid, 16)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer snes.Close()

	offset := uint32(parseHex(*addr, 32))
	for {
		mem, err := snes.GetMemory(offset, uint32(*size))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Print(hex.Dump(mem[:*size]))
		}
		time.Sleep(*interval)
	}
}
