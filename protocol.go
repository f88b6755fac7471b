package usb2snes

// Opcode selects the operation requested by a command frame. Only OpGet is
// driven by this package; the rest are protocol constants for the other
// firmware operations, kept for callers building their own frames.
type Opcode uint8

const (
	OpGet Opcode = iota
	OpPut
	OpVGet
	OpVPut

	// file system operations
	OpList
	OpMakeDir
	OpRemove
	OpMove

	// special operations
	OpReset
	OpBoot
	OpPowerCycle
	OpInfo
	OpMenuReset
	OpStream
	OpTime

	OpResponse
)

// Space selects the namespace an operation targets.
type Space uint8

const (
	SpaceFile Space = iota
	SpaceSNES
	SpaceMSU
	SpaceCmd
	SpaceConfig
)

// Flags modify how the firmware executes a command.
type Flags uint8

const FlagNone Flags = 0

const (
	FlagSkipReset Flags = 1 << iota
	FlagOnlyReset
	FlagClrX
	FlagSetX
	FlagStreamBurst
	_
	FlagNoResp
	FlagData64B
)
