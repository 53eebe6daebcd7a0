// Package pipeline sequences the build: configuration resolution, constant
// emission, the external builder, device-tree synthesis and compilation,
// overlay combination, and board programming. Stages run strictly one after
// another; the first failure aborts the remainder.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/socforge/socforge/internal/board"
	"github.com/socforge/socforge/internal/buildfs"
	"github.com/socforge/socforge/internal/dts"
	"github.com/socforge/socforge/internal/eventbus"
	"github.com/socforge/socforge/internal/history"
	"github.com/socforge/socforge/internal/soc"
)

// Stage names, in execution order. They are user-visible: failure messages,
// bus events, and ledger rows all carry them.
const (
	StageResolve   = "resolve"
	StageConstants = "constants"
	StageBuilder   = "builder"
	StageDTS       = "dts"
	StageDTC       = "dtc"
	StageOverlays  = "overlays"
	StageDriver    = "driver"
	StageLoad      = "load"
	StageFlash     = "flash"
	StageDoc       = "doc"
)

// TreeCompiler compiles device-tree source to binary form.
type TreeCompiler interface {
	Compile(ctx context.Context, dtsPath, dtbPath string, symbols bool) error
}

// TreeCombiner merges overlays onto a compiled base tree.
type TreeCombiner interface {
	Combine(ctx context.Context, baseDTB, outPath string, overlays []string) error
}

// Pipeline wires the collaborators for one or more runs. The zero value is
// not usable; construct it with the collaborators the requested actions
// need. Builder, Generator, Compiler, and Combiner are always required;
// Programmer, Drivers, and Docs only when their stages are reachable.
type Pipeline struct {
	CPU        soc.CPUConfigurator
	Builder    Builder
	Generator  dts.Generator
	Compiler   TreeCompiler
	Combiner   TreeCombiner
	Programmer Programmer
	Drivers    DriverGenerator
	Docs       DocGenerator

	Recorder Recorder
	Bus      *eventbus.Bus
	Root     string // workspace root for the build tree

	// NewRunID overrides run-ID generation (tests); defaults to uuid.
	NewRunID func() string
}

// Result captures everything a finished run produced.
type Result struct {
	RunID     string
	Board     board.Definition
	Config    soc.Config
	Constants *soc.ConstantTable
	Artifacts Artifacts
	Paths     buildfs.Paths
}

// Run executes the pipeline for the named board. On failure the returned
// error names the stage that failed; nothing after that stage has run.
func (p *Pipeline) Run(ctx context.Context, boardName string, opts soc.Options) (*Result, error) {
	runID := uuid.NewString()
	if p.NewRunID != nil {
		runID = p.NewRunID()
	}

	paths := buildfs.ForBoard(p.Root, boardName)
	// Seed the board name so events published before the lookup completes
	// (the resolve stage itself) still identify the board.
	res := &Result{RunID: runID, Paths: paths, Board: board.Definition{Name: boardName}}

	p.recordBegin(ctx, history.Run{
		ID:     runID,
		Board:  boardName,
		RootFS: string(opts.RootFS),
	})

	// Resolve.
	err := p.stage(ctx, res, StageResolve, func() error {
		def, err := board.Lookup(boardName)
		if err != nil {
			return err
		}
		res.Board = def
		cfg, err := soc.Resolve(def, &opts, p.CPU)
		if err != nil {
			return err
		}
		res.Config = cfg
		return nil
	})
	if err != nil {
		return res, err
	}

	// Emit constants.
	err = p.stage(ctx, res, StageConstants, func() error {
		table, err := soc.BuildConstants(res.Board, &opts)
		if err != nil {
			return err
		}
		res.Constants = table
		if err := paths.Ensure(); err != nil {
			return err
		}
		return writeConstantsLog(paths.ConstantsLog, table)
	})
	if err != nil {
		return res, err
	}

	// Invoke the builder.
	err = p.stage(ctx, res, StageBuilder, func() error {
		artifacts, err := p.Builder.Build(ctx, res.Config, soc.Peripherals(res.Board, &opts), paths, opts.Build)
		if err != nil {
			return err
		}
		res.Artifacts = artifacts
		return nil
	})
	if err != nil {
		return res, err
	}

	// Synthesize and patch the device tree.
	err = p.stage(ctx, res, StageDTS, func() error {
		text, err := p.Generator.Generate(ctx, res.Artifacts.CSRJSON, dts.GenerateOptions{
			Initrd:     opts.RootFS == soc.RootFSRAM,
			RootDevice: string(opts.RootFS),
		})
		if err != nil {
			return err
		}
		text, err = dts.PatchRegulator(text)
		if err != nil {
			return err
		}
		return os.WriteFile(paths.DTS, []byte(text), 0o644)
	})
	if err != nil {
		return res, err
	}

	// Compile the tree. Symbols are retained only when overlays will need
	// to resolve labels against the base tree.
	err = p.stage(ctx, res, StageDTC, func() error {
		return p.Compiler.Compile(ctx, paths.DTS, paths.DTB, len(opts.Overlays) > 0)
	})
	if err != nil {
		return res, err
	}

	// Combine overlays and stage the boot configuration.
	err = p.stage(ctx, res, StageOverlays, func() error {
		if err := p.Combiner.Combine(ctx, paths.DTB, paths.CombinedDTB, opts.Overlays); err != nil {
			return err
		}
		return copyBootConfig(paths, string(opts.RootFS))
	})
	if err != nil {
		return res, err
	}

	if res.Board.Capabilities.Has(board.CapPCIe) {
		err = p.stage(ctx, res, StageDriver, func() error {
			return p.Drivers.Generate(ctx, res.Artifacts.CSRJSON, paths.DriverDir)
		})
		if err != nil {
			return res, err
		}
	}

	if opts.Load {
		err = p.stage(ctx, res, StageLoad, func() error {
			return p.Programmer.Load(ctx, res.Artifacts.BitstreamSRAM)
		})
		if err != nil {
			return res, err
		}
	}

	if opts.Flash {
		err = p.stage(ctx, res, StageFlash, func() error {
			return p.Programmer.Flash(ctx, 0, res.Artifacts.BitstreamFlash)
		})
		if err != nil {
			return res, err
		}
	}

	if opts.Doc {
		err = p.stage(ctx, res, StageDoc, func() error {
			return p.Docs.Generate(ctx, paths)
		})
		if err != nil {
			return res, err
		}
	}

	p.recordFinish(ctx, runID, res.Artifacts.BitstreamSRAM)
	return res, nil
}

// stage runs one step, publishing its lifecycle on the bus and recording a
// failure in the ledger before aborting the run.
func (p *Pipeline) stage(ctx context.Context, res *Result, name string, fn func() error) error {
	boardName := res.Board.Name
	source := stageSource(name)
	p.publishStage(ctx, source, eventbus.StageEvent{
		RunID:  res.RunID,
		Board:  boardName,
		Stage:  name,
		Status: eventbus.StageStarted,
	})

	start := time.Now()
	if err := fn(); err != nil {
		p.publishStage(ctx, source, eventbus.StageEvent{
			RunID:    res.RunID,
			Board:    boardName,
			Stage:    name,
			Status:   eventbus.StageFailed,
			Err:      err.Error(),
			Duration: time.Since(start),
		})
		p.recordFail(ctx, res.RunID, name, err)
		return fmt.Errorf("pipeline: stage %s: %w", name, err)
	}

	p.publishStage(ctx, source, eventbus.StageEvent{
		RunID:    res.RunID,
		Board:    boardName,
		Stage:    name,
		Status:   eventbus.StageFinished,
		Duration: time.Since(start),
	})
	return nil
}

// stageSource attributes the hardware-touching stages to the programmer so
// subscribers can tell board access apart from artifact generation.
func stageSource(name string) eventbus.Source {
	switch name {
	case StageLoad, StageFlash:
		return eventbus.SourceProgrammer
	default:
		return eventbus.SourcePipeline
	}
}

func (p *Pipeline) publishStage(ctx context.Context, source eventbus.Source, evt eventbus.StageEvent) {
	p.Bus.Publish(ctx, eventbus.TopicPipelineStage, source, evt)
}

func (p *Pipeline) recordBegin(ctx context.Context, run history.Run) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.Begin(ctx, run); err != nil {
		log.Printf("[pipeline] ledger begin: %v", err)
	}
}

func (p *Pipeline) recordFinish(ctx context.Context, id, bitstream string) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.Finish(ctx, id, bitstream); err != nil {
		log.Printf("[pipeline] ledger finish: %v", err)
	}
}

func (p *Pipeline) recordFail(ctx context.Context, id, stage string, cause error) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.Fail(ctx, id, stage, cause.Error()); err != nil {
		log.Printf("[pipeline] ledger fail: %v", err)
	}
}

// writeConstantsLog appends every constant as a "name: value" line. The log
// is append-only across runs.
func writeConstantsLog(path string, table *soc.ConstantTable) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("pipeline: open constants log: %w", err)
	}
	for _, name := range table.Names() {
		value, _ := table.Get(name)
		if _, err := fmt.Fprintf(f, "%s: %v\n", name, value); err != nil {
			f.Close()
			return fmt.Errorf("pipeline: write constants log: %w", err)
		}
	}
	return f.Close()
}

// copyBootConfig stages the rootfs-flavored boot configuration file where
// firmware packaging expects it.
func copyBootConfig(paths buildfs.Paths, rootfs string) error {
	src := paths.BootConfigSource(rootfs)
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("pipeline: open boot config %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(paths.BootConfig)
	if err != nil {
		return fmt.Errorf("pipeline: create boot config: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("pipeline: copy boot config: %w", err)
	}
	return out.Close()
}
