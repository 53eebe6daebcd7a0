package soc

import (
	"errors"
	"fmt"
)

// ErrInvalidOption indicates a device/variant/toolchain combination the
// external builder rejected. The resolver propagates it without interpreting.
var ErrInvalidOption = errors.New("soc: invalid option")

// RootFS selects where the root filesystem lives on the target.
type RootFS string

const (
	// RootFSRAM boots from an initrd loaded into RAM.
	RootFSRAM RootFS = "ram0"
	// RootFSMMC boots from the second SD card partition.
	RootFSMMC RootFS = "mmcblk0p2"
)

// Valid reports whether the value is one of the supported root filesystems.
func (r RootFS) Valid() bool {
	return r == RootFSRAM || r == RootFSMMC
}

// Options holds the user-facing build parameters for one invocation.
// The resolver writes back to WithWishboneMemory and WithCoherentDMA as part
// of its documented precedence steps; everything else is read-only after CLI
// parsing.
type Options struct {
	Device    string
	Variant   string
	Toolchain string

	UARTBaudrate int

	LocalIP  string
	RemoteIP string // TFTP server address, encoded into REMOTEIP1..4

	SPIDataWidth int
	SPIClkFreq   int

	Overlays []string // device-tree overlays, order-significant
	RootFS   RootFS

	WithWishboneMemory bool
	WithCoherentDMA    bool
	CPUCount           int

	// Requested actions.
	Build bool
	Load  bool
	Flash bool
	Doc   bool
}

// Validate checks the option values the CLI cannot reject via flag choices.
func (o *Options) Validate() error {
	if !o.RootFS.Valid() {
		return fmt.Errorf("%w: rootfs %q (want %s or %s)", ErrInvalidOption, o.RootFS, RootFSRAM, RootFSMMC)
	}
	if o.UARTBaudrate <= 0 {
		return fmt.Errorf("%w: uart baudrate %d", ErrInvalidOption, o.UARTBaudrate)
	}
	return nil
}

// DefaultOptions returns the option set matching the CLI defaults.
func DefaultOptions() Options {
	return Options{
		UARTBaudrate: 115200,
		LocalIP:      "192.168.1.50",
		RemoteIP:     "192.168.1.100",
		SPIDataWidth: 8,
		SPIClkFreq:   1_000_000,
		RootFS:       RootFSMMC,
		CPUCount:     1,
	}
}
