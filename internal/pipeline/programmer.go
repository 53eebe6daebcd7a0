package pipeline

import (
	"context"
	"fmt"

	"github.com/socforge/socforge/internal/toolrun"
)

// OpenFPGALoader programs bitstreams via the openFPGALoader utility. Every
// operation re-acquires the device; load and flash in the same run each open
// it independently.
type OpenFPGALoader struct {
	Runner toolrun.Runner
	Path   string // binary, defaults to "openFPGALoader"
	Board  string // openFPGALoader board identifier (e.g. "tangnano20k")
}

func (p OpenFPGALoader) binary() string {
	if p.Path != "" {
		return p.Path
	}
	return "openFPGALoader"
}

// Load writes the bitstream to the FPGA's volatile configuration memory.
func (p OpenFPGALoader) Load(ctx context.Context, bitstream string) error {
	args := []string{"-b", p.Board, bitstream}
	if err := p.Runner.Run(ctx, toolrun.Tool{Name: "openFPGALoader", Path: p.binary(), Args: args}); err != nil {
		return &ProgrammerError{Op: "load", Err: err}
	}
	return nil
}

// Flash writes the bitstream to persistent storage at the given offset.
func (p OpenFPGALoader) Flash(ctx context.Context, offset uint32, bitstream string) error {
	args := []string{"-b", p.Board, "-f", "-o", fmt.Sprintf("0x%x", offset), bitstream}
	if err := p.Runner.Run(ctx, toolrun.Tool{Name: "openFPGALoader", Path: p.binary(), Args: args}); err != nil {
		return &ProgrammerError{Op: "flash", Err: err}
	}
	return nil
}
