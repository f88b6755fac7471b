package usb2snes

import "encoding/binary"

// FrameSize is the fixed length of every command frame. Commands always
// occupy the full frame regardless of how much payload they describe.
const FrameSize = 512

const frameMagic = "USBA"

// Field offsets within a command frame. Everything not listed is zero.
const (
	offOpcode = 4
	offSpace  = 5
	offFlags  = 6
	offSize   = 252
	offAddr   = 256
)

// Command builds a 512-byte USBA command frame. Size and address are
// big-endian u32s; all reserved bytes are zero.
func Command(op Opcode, space Space, flags Flags, addr uint32, size uint32) []byte {
	buf := make([]byte, FrameSize)
	copy(buf, frameMagic)
	buf[offOpcode] = byte(op)
	buf[offSpace] = byte(space)
	buf[offFlags] = byte(flags)
	binary.BigEndian.PutUint32(buf[offSize:], size)
	binary.BigEndian.PutUint32(buf[offAddr:], addr)
	return buf
}
