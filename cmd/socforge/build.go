package main

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/socforge/socforge/internal/board"
	"github.com/socforge/socforge/internal/buildfs"
	"github.com/socforge/socforge/internal/dts"
	"github.com/socforge/socforge/internal/eventbus"
	"github.com/socforge/socforge/internal/history"
	"github.com/socforge/socforge/internal/pipeline"
	"github.com/socforge/socforge/internal/soc"
	"github.com/socforge/socforge/internal/toolrun"
)

const roundStageDuration = 10 * time.Millisecond

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "build [board]",
		Short:         "Build the Linux SoC for a board",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBuild,
	}

	cmd.Flags().String("device", "", "FPGA device override passed to the builder")
	cmd.Flags().String("variant", "", "Board variant override passed to the builder")
	cmd.Flags().String("toolchain", "", "FPGA toolchain override passed to the builder")
	cmd.Flags().Int("uart-baudrate", 115200, "UART baudrate")
	cmd.Flags().String("local-ip", "192.168.1.50", "Board IP address")
	cmd.Flags().String("remote-ip", "192.168.1.100", "TFTP server IP address")
	cmd.Flags().Int("spi-data-width", 8, "SPI data width for boards with an SPI peripheral")
	cmd.Flags().Int("spi-clk-freq", 1_000_000, "SPI clock frequency for boards with an SPI peripheral")
	cmd.Flags().StringSlice("fdtoverlays", nil, "Device-tree overlay blobs applied in order")
	cmd.Flags().String("rootfs", string(soc.RootFSMMC), "Root filesystem location (ram0 or mmcblk0p2)")
	cmd.Flags().Int("cpu-count", 1, "Number of CPU cores")
	cmd.Flags().Bool("build", false, "Run gateware synthesis (elaboration only without it)")
	cmd.Flags().Bool("load", false, "Load the bitstream into SRAM after the build")
	cmd.Flags().Bool("flash", false, "Write the bitstream to SPI flash after the build")
	cmd.Flags().Bool("doc", false, "Generate SoC documentation")
	cmd.Flags().String("output-dir", ".", "Workspace root for build artifacts")

	return cmd
}

// optionsFromFlags maps the build command's flag set onto the resolver's
// option struct.
func optionsFromFlags(cmd *cobra.Command) (soc.Options, error) {
	opts := soc.DefaultOptions()

	opts.Device, _ = cmd.Flags().GetString("device")
	opts.Variant, _ = cmd.Flags().GetString("variant")
	opts.Toolchain, _ = cmd.Flags().GetString("toolchain")
	opts.UARTBaudrate, _ = cmd.Flags().GetInt("uart-baudrate")
	opts.LocalIP, _ = cmd.Flags().GetString("local-ip")
	opts.RemoteIP, _ = cmd.Flags().GetString("remote-ip")
	opts.SPIDataWidth, _ = cmd.Flags().GetInt("spi-data-width")
	opts.SPIClkFreq, _ = cmd.Flags().GetInt("spi-clk-freq")
	opts.Overlays, _ = cmd.Flags().GetStringSlice("fdtoverlays")
	opts.CPUCount, _ = cmd.Flags().GetInt("cpu-count")
	opts.Build, _ = cmd.Flags().GetBool("build")
	opts.Load, _ = cmd.Flags().GetBool("load")
	opts.Flash, _ = cmd.Flags().GetBool("flash")
	opts.Doc, _ = cmd.Flags().GetBool("doc")

	rootfs, _ := cmd.Flags().GetString("rootfs")
	opts.RootFS = soc.RootFS(rootfs)

	if err := opts.Validate(); err != nil {
		return soc.Options{}, err
	}
	return opts, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	boardName := args[0]
	out := newOutputFormatter(cmd)

	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return out.Error("invalid build options", err)
	}
	root, _ := cmd.Flags().GetString("output-dir")

	bus := eventbus.New()
	defer bus.Shutdown()

	stageSub := bus.Subscribe(eventbus.TopicPipelineStage, eventbus.WithSubscriptionName("cli"))
	toolSub := bus.Subscribe(eventbus.TopicToolOutput, eventbus.WithSubscriptionName("cli"))

	var console sync.WaitGroup
	console.Add(2)
	go func() {
		defer console.Done()
		printStageEvents(stageSub)
	}()
	go func() {
		defer console.Done()
		printToolOutput(toolSub)
	}()

	// The ledger is advisory: a failure to open it degrades to an
	// unrecorded run rather than aborting the build.
	var recorder pipeline.Recorder
	store, err := history.Open(buildfs.ForBoard(root, boardName).HistoryDB)
	if err != nil {
		log.Printf("[socforge] run history disabled: %v", err)
	} else {
		recorder = store
		defer store.Close()
	}

	p := newPipeline(bus, recorder, root, boardName)
	res, runErr := p.Run(cmd.Context(), boardName, opts)

	bus.Shutdown()
	console.Wait()

	if runErr != nil {
		return out.Error("build failed", runErr)
	}

	if out.jsonMode {
		return out.Print(map[string]interface{}{
			"success":         true,
			"run_id":          res.RunID,
			"board":           res.Board.Name,
			"bitstream_sram":  res.Artifacts.BitstreamSRAM,
			"bitstream_flash": res.Artifacts.BitstreamFlash,
			"device_tree":     res.Paths.CombinedDTB,
		})
	}
	fmt.Printf("Build complete for %s\n", res.Board.Name)
	fmt.Printf("  bitstream:   %s\n", res.Artifacts.BitstreamSRAM)
	fmt.Printf("  device tree: %s\n", res.Paths.CombinedDTB)
	return nil
}

// newPipeline assembles the production collaborators: every external tool
// behind an exec-backed runner publishing its output on the bus.
func newPipeline(bus *eventbus.Bus, recorder pipeline.Recorder, root, boardName string) *pipeline.Pipeline {
	runner := toolrun.New(bus)

	// An unknown board leaves the SoC class empty; the pipeline's resolve
	// stage rejects the name before the builder is ever invoked.
	def, _ := board.Lookup(boardName)

	return &pipeline.Pipeline{
		Builder: pipeline.TargetBuilder{
			Runner:   runner,
			SoCClass: def.SoCClass,
			Board:    boardName,
		},
		Generator:  dts.JSON2DTS{Runner: runner},
		Compiler:   dts.Compiler{Runner: runner},
		Combiner:   dts.Combiner{Runner: runner},
		Programmer: pipeline.OpenFPGALoader{Runner: runner, Board: def.ProgrammerBoard},
		Drivers:    pipeline.LitePCIeDriverGen{Runner: runner},
		Docs:       pipeline.SphinxDocs{Runner: runner},
		Recorder:   recorder,
		Bus:        bus,
		Root:       root,
	}
}

func printStageEvents(sub *eventbus.Subscription) {
	for env := range sub.C() {
		evt, ok := env.Payload.(eventbus.StageEvent)
		if !ok {
			continue
		}
		switch evt.Status {
		case eventbus.StageStarted:
			fmt.Printf("==> %s\n", evt.Stage)
		case eventbus.StageFinished:
			fmt.Printf("==> %s done (%s)\n", evt.Stage, evt.Duration.Round(roundStageDuration))
		case eventbus.StageFailed:
			fmt.Fprintf(os.Stderr, "==> %s FAILED: %s\n", evt.Stage, evt.Err)
		}
	}
}

func printToolOutput(sub *eventbus.Subscription) {
	for env := range sub.C() {
		evt, ok := env.Payload.(eventbus.ToolOutputEvent)
		if !ok {
			continue
		}
		fmt.Printf("[%s] %s\n", evt.Tool, evt.Line)
	}
}
