package soc

import (
	"errors"
	"testing"

	"github.com/socforge/socforge/internal/board"
)

func testBoard(caps ...board.Capability) board.Definition {
	return board.Definition{
		Name:         "testboard",
		Vendor:       "Test",
		SoCClass:     "testboard",
		Capabilities: board.NewCapabilities(caps...),
	}
}

func TestResolveCapabilityFeatureFlags(t *testing.T) {
	def := testBoard(board.CapEthernet, board.CapLEDs)
	opts := DefaultOptions()

	cfg, err := Resolve(def, &opts, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if !cfg.Bool("with_ethernet") {
		t.Fatal("with_ethernet not set")
	}
	if !cfg.Bool("with_led_chaser") {
		t.Fatal("with_led_chaser not set")
	}
	for _, key := range []string{
		"with_pcie", "with_spi_flash", "with_sata", "with_video_terminal",
		"with_video_framebuffer", "with_usb_host", "with_ps_ddr",
	} {
		if _, ok := cfg[key]; ok {
			t.Fatalf("%s set without its capability", key)
		}
	}
}

func TestResolveUARTBackendPriority(t *testing.T) {
	def := testBoard(board.CapCrossover, board.CapUSBACM)
	opts := DefaultOptions()

	cfg, err := Resolve(def, &opts, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// usb_acm is checked after crossover, so it wins the overwrite.
	if got := cfg.String("uart_name"); got != "usb_acm" {
		t.Fatalf("uart_name = %q, want usb_acm", got)
	}
}

func TestResolveUARTBackendAbsent(t *testing.T) {
	def := testBoard(board.CapSerial)
	opts := DefaultOptions()

	cfg, err := Resolve(def, &opts, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := cfg["uart_name"]; ok {
		t.Fatal("uart_name set without a UART backend capability")
	}
}

func TestResolveWishboneRaisesL2(t *testing.T) {
	def := testBoard(board.CapSerial)
	def.SoCKwargs = map[string]any{"l2_size": 512}
	opts := DefaultOptions()
	opts.WithWishboneMemory = true

	cfg, err := Resolve(def, &opts, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := cfg.Int("l2_size"); got != 2048 {
		t.Fatalf("l2_size = %d, want 2048", got)
	}
}

func TestResolveWishboneReflectsBoardDefault(t *testing.T) {
	def := testBoard(board.CapSerial)
	def.SoCKwargs = map[string]any{"l2_size": 2048}
	opts := DefaultOptions()

	if _, err := Resolve(def, &opts, nil); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !opts.WithWishboneMemory {
		t.Fatal("effective wishbone flag should reflect non-zero board L2")
	}

	defZero := testBoard(board.CapSerial)
	optsZero := DefaultOptions()
	if _, err := Resolve(defZero, &optsZero, nil); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if optsZero.WithWishboneMemory {
		t.Fatal("effective wishbone flag should stay false for zero L2")
	}
}

func TestResolveUSBHostForcesCoherentDMA(t *testing.T) {
	def := testBoard(board.CapUSBHost)
	opts := DefaultOptions()
	opts.WithCoherentDMA = false

	cfg, err := Resolve(def, &opts, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !opts.WithCoherentDMA {
		t.Fatal("usb_host must force coherent DMA")
	}
	if !cfg.Bool("with_coherent_dma") {
		t.Fatal("coherent DMA not propagated into configuration")
	}
	if !cfg.Bool("with_usb_host") {
		t.Fatal("with_usb_host not set")
	}
}

func TestResolveUserOverridesAndDefaults(t *testing.T) {
	def := testBoard(board.CapSerial)
	def.SoCKwargs = map[string]any{"toolchain": "gowin", "device": "GW2AR-18C"}
	opts := DefaultOptions()
	opts.Toolchain = "apicula"
	opts.UARTBaudrate = 1_000_000

	cfg, err := Resolve(def, &opts, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := cfg.String("toolchain"); got != "apicula" {
		t.Fatalf("toolchain = %q, want user override", got)
	}
	if got := cfg.String("device"); got != "GW2AR-18C" {
		t.Fatalf("device = %q, want board default kept", got)
	}
	if got := cfg.Int("uart_baudrate"); got != 1_000_000 {
		t.Fatalf("uart_baudrate = %d, want 1000000", got)
	}
}

func TestResolveDoesNotAliasBoardDefaults(t *testing.T) {
	def, err := board.Lookup("sipeed_tang_nano_20k")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	opts := DefaultOptions()
	cfg, err := Resolve(def, &opts, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	cfg["l2_size"] = 0

	again, err := board.Lookup("sipeed_tang_nano_20k")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if again.DefaultKwargs()["l2_size"] != 2048 {
		t.Fatal("resolution mutated the registry defaults")
	}
}

func TestResolveRejectsBadRootFS(t *testing.T) {
	def := testBoard(board.CapSerial)
	opts := DefaultOptions()
	opts.RootFS = "nfs"

	_, err := Resolve(def, &opts, nil)
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestPeripheralsOrderAndArgs(t *testing.T) {
	def := testBoard(board.CapI2C, board.CapSPI, board.CapSDCard, board.CapSwitches)
	opts := DefaultOptions()
	opts.SPIDataWidth = 16
	opts.SPIClkFreq = 2_000_000

	mods := Peripherals(def, &opts)
	kinds := make([]string, len(mods))
	for i, m := range mods {
		kinds[i] = m.Kind
	}
	want := []string{"sdcard", "switches", "spi", "i2c"}
	if len(kinds) != len(want) {
		t.Fatalf("peripherals = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("peripherals = %v, want %v", kinds, want)
		}
	}
	for _, m := range mods {
		if m.Kind == "spi" {
			if m.Args["data_width"] != 16 || m.Args["clk_freq"] != 2_000_000 {
				t.Fatalf("spi args = %v", m.Args)
			}
		}
	}
}
