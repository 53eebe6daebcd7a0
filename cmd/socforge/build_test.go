package main

import (
	"errors"
	"testing"

	"github.com/socforge/socforge/internal/eventbus"
	"github.com/socforge/socforge/internal/pipeline"
	"github.com/socforge/socforge/internal/soc"
)

func TestOptionsFromFlagsDefaults(t *testing.T) {
	cmd := newBuildCommand()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	opts, err := optionsFromFlags(cmd)
	if err != nil {
		t.Fatalf("optionsFromFlags: %v", err)
	}

	want := soc.DefaultOptions()
	if opts.UARTBaudrate != want.UARTBaudrate {
		t.Fatalf("uart baudrate = %d, want %d", opts.UARTBaudrate, want.UARTBaudrate)
	}
	if opts.RootFS != soc.RootFSMMC {
		t.Fatalf("rootfs = %q, want %q", opts.RootFS, soc.RootFSMMC)
	}
	if opts.LocalIP != want.LocalIP || opts.RemoteIP != want.RemoteIP {
		t.Fatalf("ip defaults = %q/%q", opts.LocalIP, opts.RemoteIP)
	}
	if opts.Build || opts.Load || opts.Flash || opts.Doc {
		t.Fatal("no action should default to enabled")
	}
}

func TestOptionsFromFlagsOverrides(t *testing.T) {
	cmd := newBuildCommand()
	err := cmd.ParseFlags([]string{
		"--device", "GW2AR-LV18QN88C8/I7",
		"--variant", "a7-100",
		"--toolchain", "vivado",
		"--uart-baudrate", "1000000",
		"--local-ip", "10.0.0.2",
		"--remote-ip", "10.0.0.1",
		"--spi-data-width", "4",
		"--spi-clk-freq", "400000",
		"--fdtoverlays", "spi.dtbo,display.dtbo",
		"--rootfs", "ram0",
		"--cpu-count", "2",
		"--build", "--load", "--doc",
	})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	opts, err := optionsFromFlags(cmd)
	if err != nil {
		t.Fatalf("optionsFromFlags: %v", err)
	}

	if opts.Device != "GW2AR-LV18QN88C8/I7" || opts.Variant != "a7-100" || opts.Toolchain != "vivado" {
		t.Fatalf("overrides = %q/%q/%q", opts.Device, opts.Variant, opts.Toolchain)
	}
	if opts.UARTBaudrate != 1000000 {
		t.Fatalf("uart baudrate = %d", opts.UARTBaudrate)
	}
	if opts.SPIDataWidth != 4 || opts.SPIClkFreq != 400000 {
		t.Fatalf("spi = %d/%d", opts.SPIDataWidth, opts.SPIClkFreq)
	}
	if len(opts.Overlays) != 2 || opts.Overlays[0] != "spi.dtbo" || opts.Overlays[1] != "display.dtbo" {
		t.Fatalf("overlays = %v", opts.Overlays)
	}
	if opts.RootFS != soc.RootFSRAM {
		t.Fatalf("rootfs = %q", opts.RootFS)
	}
	if opts.CPUCount != 2 {
		t.Fatalf("cpu count = %d", opts.CPUCount)
	}
	if !opts.Build || !opts.Load || !opts.Doc || opts.Flash {
		t.Fatalf("actions = build=%v load=%v flash=%v doc=%v", opts.Build, opts.Load, opts.Flash, opts.Doc)
	}
}

func TestOptionsFromFlagsRejectsBadRootFS(t *testing.T) {
	cmd := newBuildCommand()
	if err := cmd.ParseFlags([]string{"--rootfs", "nvme0n1p1"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := optionsFromFlags(cmd); !errors.Is(err, soc.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestOptionsFromFlagsRejectsBadBaudrate(t *testing.T) {
	cmd := newBuildCommand()
	if err := cmd.ParseFlags([]string{"--uart-baudrate", "0"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := optionsFromFlags(cmd); !errors.Is(err, soc.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestNewPipelineWiresProgrammerIdentifier(t *testing.T) {
	bus := eventbus.New()
	defer bus.Shutdown()

	p := newPipeline(bus, nil, t.TempDir(), "sipeed_tang_nano_20k")

	loader, ok := p.Programmer.(pipeline.OpenFPGALoader)
	if !ok {
		t.Fatalf("programmer is %T", p.Programmer)
	}
	// openFPGALoader takes its own board naming, not the registry name.
	if loader.Board != "tangnano20k" {
		t.Fatalf("programmer board = %q", loader.Board)
	}

	builder, ok := p.Builder.(pipeline.TargetBuilder)
	if !ok {
		t.Fatalf("builder is %T", p.Builder)
	}
	if builder.Board != "sipeed_tang_nano_20k" {
		t.Fatalf("builder board = %q", builder.Board)
	}
}
