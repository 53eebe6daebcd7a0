// Package dts synthesizes, patches, compiles, and combines device-tree
// artifacts for the built SoC.
package dts

import (
	"context"
	"fmt"

	"github.com/socforge/socforge/internal/toolrun"
)

// GenerateOptions parameterize device-tree synthesis.
type GenerateOptions struct {
	// Initrd enables the initrd boot flags when the root filesystem is
	// RAM-resident.
	Initrd bool
	// RootDevice is the kernel root device name (ram0, mmcblk0p2).
	RootDevice string
}

// Generator turns the builder's register/peripheral map (CSR JSON on disk)
// into device-tree source text.
type Generator interface {
	Generate(ctx context.Context, csrPath string, opts GenerateOptions) (string, error)
}

// JSON2DTS shells out to the litex_json2dts_linux converter, the external
// collaborator that owns the register-map-to-tree transformation. The tree
// arrives on the converter's stdout; its stderr diagnostics reach the event
// bus through the runner like every other tool's output.
type JSON2DTS struct {
	Runner toolrun.OutputRunner
	Path   string // converter binary, defaults to "litex_json2dts_linux"
}

// Generate runs the converter and returns the produced DTS text.
func (g JSON2DTS) Generate(ctx context.Context, csrPath string, opts GenerateOptions) (string, error) {
	path := g.Path
	if path == "" {
		path = "litex_json2dts_linux"
	}
	runner := g.Runner
	if runner == nil {
		runner = toolrun.New(nil)
	}

	initrd := "disabled"
	if opts.Initrd {
		initrd = "enabled"
	}
	args := []string{csrPath, "--initrd", initrd}
	if opts.RootDevice != "" {
		args = append(args, "--root-device", opts.RootDevice)
	}

	out, err := runner.Output(ctx, toolrun.Tool{
		Name: "litex_json2dts_linux",
		Path: path,
		Args: args,
	})
	if err != nil {
		return "", fmt.Errorf("dts: generate from %s: %w", csrPath, err)
	}
	return out, nil
}
