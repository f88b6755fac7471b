// Package usb2snes reads console memory from sd2snes / FX Pak Pro
// hardware over its USB command interface. It locates the device, frames
// USBA commands, and collects chunked responses over a bulk or interrupt
// pipe.
package usb2snes

import (
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/pzl/usb2snes/gusb"
)

func init() {
	log.SetHandler(text.Default)
	log.SetLevel(log.InfoLevel)
	gusb.SetLogger(log.Log.(*log.Logger))
}

// Default identification for the sd2snes USB connection.
const (
	DefaultVendorID  uint16 = 0x1209 // InterBiometrics
	DefaultProductID uint16 = 0x5a22 // ikari_01 sd2snes
)

var (
	ErrDeviceNotFound = errors.New("Device not found")
	ErrNoTransport    = errors.New("no usable endpoint pair on device")
	ErrEndpointConfig = errors.New("endpoint configuration failed")
	ErrWriteFailed    = errors.New("command write failed")
	ErrReadExhausted  = errors.New("read retries exhausted")
)

// Client is an open session to one console. It owns the device handle and
// an in/out endpoint pair for its whole lifetime; endpoints are never
// re-resolved mid-session. A Client supports one request at a time;
// callers polling memory must serialize their calls.
type Client struct {
	handle *gusb.Handle
	in     Endpoint
	out    Endpoint
	p      pipe
	claim  *ifaceClaim
}

// New opens a session to the first console found under the default
// vendor/product identification.
func New() (*Client, error) {
	return NewVidPid(DefaultVendorID, DefaultProductID)
}

// NewVidPid opens a session to the first device matching vid:pid. An
// interrupt endpoint pair is preferred; bulk is the fallback, in which
// case the output endpoint's interface is taken over from any bound
// kernel driver for the life of the session.
func NewVidPid(vid, pid uint16) (*Client, error) {
	h, dd, err := openDevice(vid, pid)
	if err != nil {
		return nil, err
	}

	if in, out, ok := findEndpoints(dd, gusb.TransferTypeInterrupt); ok {
		log.Debug("using interrupt transport")
		return &Client{
			handle: h,
			in:     in,
			out:    out,
			p:      devicePipe{h: h, tt: gusb.TransferTypeInterrupt},
		}, nil
	}

	if in, out, ok := findEndpoints(dd, gusb.TransferTypeBulk); ok {
		claim, err := claimInterface(h, out)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("%w: %v", ErrEndpointConfig, err)
		}
		log.Debug("using bulk transport")
		return &Client{
			handle: h,
			in:     in,
			out:    out,
			p:      devicePipe{h: h, tt: gusb.TransferTypeBulk},
			claim:  claim,
		}, nil
	}

	h.Close()
	return nil, ErrNoTransport
}

// Close releases the interface claim (reattaching the kernel driver if one
// was detached) and closes the device.
func (c *Client) Close() error {
	c.claim.release()
	return c.handle.Close()
}

// GetMemory reads size bytes of console memory starting at offset. The
// returned slice holds at least size bytes in arrival order; the trailing
// transfer chunk may carry it slightly past size.
func (c *Client) GetMemory(offset uint32, size uint32) ([]byte, error) {
	cmd := Command(OpGet, SpaceSNES, FlagNoResp, offset, size)
	return exchange(c.p, c.in.Address, c.out.Address, cmd, size)
}
