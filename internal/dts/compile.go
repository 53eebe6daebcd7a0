package dts

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/socforge/socforge/internal/toolrun"
)

// Compiler compiles device-tree source into its binary form via the external
// dtc compiler.
type Compiler struct {
	Runner toolrun.Runner
	Path   string // dtc binary, defaults to "dtc"
}

// Compile runs dtc on dtsPath, writing dtbPath. symbols adds the -@ flag so
// overlays can resolve labels in the base tree.
func (c Compiler) Compile(ctx context.Context, dtsPath, dtbPath string, symbols bool) error {
	path := c.Path
	if path == "" {
		path = "dtc"
	}
	args := []string{}
	if symbols {
		args = append(args, "-@")
	}
	args = append(args, "-O", "dtb", "-o", dtbPath, dtsPath)

	if err := c.Runner.Run(ctx, toolrun.Tool{Name: "dtc", Path: path, Args: args}); err != nil {
		return fmt.Errorf("dts: compile %s: %w", dtsPath, err)
	}
	return nil
}

// Combiner merges overlay fragments onto a compiled base tree via the
// external fdtoverlay tool.
type Combiner struct {
	Runner toolrun.Runner
	Path   string // fdtoverlay binary, defaults to "fdtoverlay"
}

// Combine produces outPath from baseDTB plus the overlays, applied in the
// exact order given. With no overlays the base binary is copied verbatim.
func (c Combiner) Combine(ctx context.Context, baseDTB, outPath string, overlays []string) error {
	if len(overlays) == 0 {
		if err := copyFile(baseDTB, outPath); err != nil {
			return fmt.Errorf("dts: copy base tree: %w", err)
		}
		return nil
	}

	path := c.Path
	if path == "" {
		path = "fdtoverlay"
	}
	args := append([]string{"-i", baseDTB, "-o", outPath}, overlays...)

	if err := c.Runner.Run(ctx, toolrun.Tool{Name: "fdtoverlay", Path: path, Args: args}); err != nil {
		return fmt.Errorf("dts: combine overlays: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
