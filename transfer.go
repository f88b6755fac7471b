package usb2snes

import (
	"fmt"
	"time"

	"github.com/pzl/usb2snes/gusb"
)

const (
	// chunkSize is the fixed transfer length of every response read.
	chunkSize = FrameSize

	drainBufSize = 64
	drainTimeout = 50 * time.Millisecond
	xferTimeout  = 500 * time.Millisecond

	// maxReadFailures bounds the read loop: once this many reads have
	// failed without the response completing, the exchange is abandoned.
	maxReadFailures = 1000
)

// pipe is the transfer surface the engine drives: timeout-bounded reads
// and writes addressed by endpoint address.
type pipe interface {
	Read(ep uint8, p []byte, timeout time.Duration) (int, error)
	Write(ep uint8, p []byte, timeout time.Duration) (int, error)
}

// devicePipe adapts an open usbfs handle to the pipe interface, routing
// through the interrupt or bulk transfer path.
type devicePipe struct {
	h  *gusb.Handle
	tt gusb.TransferType
}

func (d devicePipe) Read(ep uint8, p []byte, timeout time.Duration) (int, error) {
	if d.tt == gusb.TransferTypeInterrupt {
		return d.h.InterruptTransfer(ep, p, timeout)
	}
	return d.h.BulkTransfer(ep, p, timeout)
}

func (d devicePipe) Write(ep uint8, p []byte, timeout time.Duration) (int, error) {
	if d.tt == gusb.TransferTypeInterrupt {
		return d.h.InterruptTransfer(ep, p, timeout)
	}
	return d.h.BulkTransfer(ep, p, timeout)
}

// drain discards stale buffered response bytes on the input endpoint,
// reading with a short timeout until the endpoint reports nothing left.
// A failed read means the same thing as an empty one here.
func drain(p pipe, in uint8) {
	var buf [drainBufSize]byte
	for {
		n, err := p.Read(in, buf[:], drainTimeout)
		if err != nil || n == 0 {
			return
		}
	}
}

// exchange performs one request/response cycle: drain stale input, write
// the command frame, then collect fixed-size chunks until size bytes have
// arrived. The final chunk may carry the running total past size; those
// extra bytes are returned as received.
func exchange(p pipe, in, out uint8, cmd []byte, size uint32) ([]byte, error) {
	drain(p, in)

	if _, err := p.Write(out, cmd, xferTimeout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	var (
		buf       [chunkSize]byte
		fails     int
		remaining = int64(size)
		result    = make([]byte, 0, size)
	)
	for remaining > 0 {
		n, err := p.Read(in, buf[:], xferTimeout)
		if err != nil {
			fails++
			if fails == maxReadFailures {
				return nil, fmt.Errorf("%w after %d failed reads", ErrReadExhausted, fails)
			}
			continue
		}
		result = append(result, buf[:n]...)
		remaining -= int64(n)
	}
	return result, nil
}
