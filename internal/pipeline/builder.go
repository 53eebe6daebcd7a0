package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/socforge/socforge/internal/buildfs"
	"github.com/socforge/socforge/internal/soc"
	"github.com/socforge/socforge/internal/toolrun"
)

// TargetBuilder invokes the litex-boards target for the SoC class as a
// blocking subprocess, serializing the resolved configuration into the
// target's command-line surface.
type TargetBuilder struct {
	Runner   toolrun.Runner
	Python   string // interpreter, defaults to "python3"
	SoCClass string // litex_boards.targets module name
	Board    string // build name
}

// Build elaborates the SoC and, when run is true, synthesizes the bitstream.
// The CSR register map is always written so device-tree generation can
// proceed without a full synthesis.
func (b TargetBuilder) Build(ctx context.Context, cfg soc.Config, peripherals []soc.Peripheral, paths buildfs.Paths, run bool) (Artifacts, error) {
	python := b.Python
	if python == "" {
		python = "python3"
	}

	args := []string{"-m", "litex_boards.targets." + b.SoCClass}
	if run {
		args = append(args, "--build")
	}
	args = append(args,
		"--output-dir", paths.BuildDir,
		"--build-name", b.Board,
		"--csr-json", paths.CSRJSON,
		"--csr-csv", paths.CSRCSV,
		"--bios-console", "lite",
	)
	args = append(args, configArgs(cfg)...)
	for _, p := range peripherals {
		args = append(args, peripheralArgs(p)...)
	}

	err := b.Runner.Run(ctx, toolrun.Tool{
		Name:        "builder",
		Path:        python,
		Args:        args,
		RequiresTTY: run, // synthesis toolchains gate progress output on a TTY
	})
	if err != nil {
		return Artifacts{}, fmt.Errorf("pipeline: build %s: %w", b.Board, err)
	}

	gateware := filepath.Join(paths.BuildDir, "gateware")
	return Artifacts{
		BitstreamSRAM:  filepath.Join(gateware, b.Board+".bit"),
		BitstreamFlash: filepath.Join(gateware, b.Board+".bin"),
		CSRJSON:        paths.CSRJSON,
	}, nil
}

// configArgs serializes the configuration map into target flags, sorted for
// a reproducible command line.
func configArgs(cfg soc.Config) []string {
	keys := make([]string, 0, len(cfg))
	for key := range cfg {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var args []string
	for _, key := range keys {
		flag := "--" + strings.ReplaceAll(key, "_", "-")
		switch v := cfg[key].(type) {
		case bool:
			if v {
				args = append(args, flag)
			}
		default:
			args = append(args, flag, fmt.Sprint(v))
		}
	}
	return args
}

func peripheralArgs(p soc.Peripheral) []string {
	args := []string{"--with-" + strings.ReplaceAll(p.Kind, "_", "-")}
	keys := make([]string, 0, len(p.Args))
	for key := range p.Args {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		flag := fmt.Sprintf("--%s-%s", strings.ReplaceAll(p.Kind, "_", "-"), strings.ReplaceAll(key, "_", "-"))
		args = append(args, flag, fmt.Sprint(p.Args[key]))
	}
	return args
}
