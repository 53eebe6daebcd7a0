package pipeline

import (
	"context"
	"fmt"

	"github.com/socforge/socforge/internal/buildfs"
	"github.com/socforge/socforge/internal/toolrun"
)

// LitePCIeDriverGen generates the host driver sources for PCIe-capable
// boards via the litepcie software generator.
type LitePCIeDriverGen struct {
	Runner toolrun.Runner
	Path   string // generator binary, defaults to "litepcie_software_gen"
}

// Generate emits the driver tree for the given register map into outDir.
func (g LitePCIeDriverGen) Generate(ctx context.Context, csrPath, outDir string) error {
	path := g.Path
	if path == "" {
		path = "litepcie_software_gen"
	}
	args := []string{"--csr", csrPath, "--output", outDir}
	if err := g.Runner.Run(ctx, toolrun.Tool{Name: "litepcie_software_gen", Path: path, Args: args}); err != nil {
		return fmt.Errorf("pipeline: generate pcie driver: %w", err)
	}
	return nil
}

// SphinxDocs renders the generated SoC documentation with sphinx-build.
type SphinxDocs struct {
	Runner toolrun.Runner
	Path   string // sphinx binary, defaults to "sphinx-build"
}

// Generate builds the HTML documentation under the board's doc directory.
func (g SphinxDocs) Generate(ctx context.Context, paths buildfs.Paths) error {
	path := g.Path
	if path == "" {
		path = "sphinx-build"
	}
	args := []string{"-M", "html", paths.DocDir, paths.DocDir + "/_build"}
	if err := g.Runner.Run(ctx, toolrun.Tool{Name: "sphinx-build", Path: path, Args: args}); err != nil {
		return fmt.Errorf("pipeline: generate docs: %w", err)
	}
	return nil
}
