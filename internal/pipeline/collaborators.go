package pipeline

import (
	"context"
	"fmt"

	"github.com/socforge/socforge/internal/buildfs"
	"github.com/socforge/socforge/internal/history"
	"github.com/socforge/socforge/internal/soc"
)

// Artifacts are the file-system outputs of a builder invocation.
type Artifacts struct {
	BitstreamSRAM  string
	BitstreamFlash string
	CSRJSON        string
}

// Builder is the external SoC build system. It consumes the resolved
// configuration and produces the bitstream and register-map artifacts.
type Builder interface {
	Build(ctx context.Context, cfg soc.Config, peripherals []soc.Peripheral, paths buildfs.Paths, run bool) (Artifacts, error)
}

// Programmer loads or flashes a bitstream onto the physical board.
type Programmer interface {
	Load(ctx context.Context, bitstream string) error
	Flash(ctx context.Context, offset uint32, bitstream string) error
}

// DriverGenerator emits host driver sources for PCIe-capable boards.
type DriverGenerator interface {
	Generate(ctx context.Context, csrPath, outDir string) error
}

// DocGenerator renders the SoC documentation tree.
type DocGenerator interface {
	Generate(ctx context.Context, paths buildfs.Paths) error
}

// Recorder persists run outcomes; *history.Store implements it. A nil
// recorder disables the ledger.
type Recorder interface {
	Begin(ctx context.Context, run history.Run) error
	Finish(ctx context.Context, id, bitstream string) error
	Fail(ctx context.Context, id, stage, message string) error
}

// ProgrammerError reports a failed load or flash operation.
type ProgrammerError struct {
	Op  string // "load" or "flash"
	Err error
}

func (e *ProgrammerError) Error() string {
	return fmt.Sprintf("pipeline: programmer %s: %v", e.Op, e.Err)
}

func (e *ProgrammerError) Unwrap() error {
	return e.Err
}
