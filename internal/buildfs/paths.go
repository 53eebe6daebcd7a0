// Package buildfs defines the on-disk layout of a board build tree.
package buildfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all file-system locations for one board build.
type Paths struct {
	Root     string // workspace root
	BuildDir string // build/<board>
	LogsDir  string // build/<board>/logs

	ConstantsLog string // append-only constants log
	CSRJSON      string // register map emitted by the builder
	CSRCSV       string
	DTS          string // synthesized device-tree source
	DTB          string // compiled base tree
	DriverDir    string // generated PCIe driver sources
	DocDir       string // generated SoC documentation

	SoftwareDir string // firmware packaging staging area
	CombinedDTB string // overlay-combined tree consumed by packaging
	BootConfig  string // boot.json consumed by packaging
	HistoryDB   string // build-run ledger (shared across boards)
}

// ForBoard returns the layout for a board under the given workspace root.
// An empty root means the current directory.
func ForBoard(root, board string) Paths {
	if root == "" {
		root = "."
	}

	buildDir := filepath.Join(root, "build", board)
	softwareDir := filepath.Join(root, "software")

	return Paths{
		Root:     root,
		BuildDir: buildDir,
		LogsDir:  filepath.Join(buildDir, "logs"),

		ConstantsLog: filepath.Join(buildDir, "logs", "soc_constants.log"),
		CSRJSON:      filepath.Join(buildDir, "csr.json"),
		CSRCSV:       filepath.Join(buildDir, "csr.csv"),
		DTS:          filepath.Join(buildDir, board+".dts"),
		DTB:          filepath.Join(buildDir, board+".dtb"),
		DriverDir:    filepath.Join(buildDir, "driver"),
		DocDir:       filepath.Join(buildDir, "doc"),

		SoftwareDir: softwareDir,
		CombinedDTB: filepath.Join(softwareDir, "rv32.dtb"),
		BootConfig:  filepath.Join(softwareDir, "boot.json"),
		HistoryDB:   HistoryPath(root),
	}
}

// HistoryPath returns the run-ledger location shared by all boards under
// the given workspace root.
func HistoryPath(root string) string {
	if root == "" {
		root = "."
	}
	return filepath.Join(root, "build", "history.db")
}

// BootConfigSource returns the rootfs-flavored boot configuration copied to
// BootConfig during the pipeline (boot_ram0.json or boot_mmcblk0p2.json).
func (p Paths) BootConfigSource(rootfs string) string {
	return filepath.Join(p.SoftwareDir, fmt.Sprintf("boot_%s.json", rootfs))
}

// Ensure creates the build and software directories.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.LogsDir, p.SoftwareDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("buildfs: create %s: %w", dir, err)
		}
	}
	return nil
}
