package soc

import (
	"fmt"

	"github.com/socforge/socforge/internal/board"
)

// minWishboneL2 is the smallest L2 size usable for Wishbone memory accesses.
const minWishboneL2 = 2048

// uartBackends lists the mutually exclusive UART peripheral capabilities in
// their fixed evaluation order. Each present capability overwrites uart_name,
// so the last one checked wins. This mirrors the established overwrite order
// and is a deliberate priority, not a conflict error.
var uartBackends = []struct {
	cap  board.Capability
	name string
}{
	{board.CapCrossover, "crossover"},
	{board.CapUSBFIFO, "usb_fifo"},
	{board.CapUSBACM, "usb_acm"},
}

// featureFlags maps the remaining capabilities to boolean build options.
// Present capabilities set their key to true; absent ones leave it unset.
var featureFlags = []struct {
	cap board.Capability
	key string
}{
	{board.CapLEDs, "with_led_chaser"},
	{board.CapEthernet, "with_ethernet"},
	{board.CapPCIe, "with_pcie"},
	{board.CapSPIFlash, "with_spi_flash"},
	{board.CapSATA, "with_sata"},
	{board.CapVideoTerminal, "with_video_terminal"},
	{board.CapFramebuffer, "with_video_framebuffer"},
	{board.CapUSBHost, "with_usb_host"},
	{board.CapPSDDR, "with_ps_ddr"},
}

// Resolve merges the board's defaults, its capability-implied options, and
// the user options into the final configuration. Steps run in a strict
// order; later steps override earlier ones on key collision.
func Resolve(def board.Definition, opts *Options, cpu CPUConfigurator) (Config, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if cpu == nil {
		cpu = VexRiscvSMP{}
	}

	cfg := Config(def.DefaultKwargs())
	if cfg == nil {
		cfg = make(Config)
	}

	// Wishbone/L2 two-way binding: user intent can raise the board default,
	// and when absent the effective flag reflects whatever the board ships.
	if opts.WithWishboneMemory {
		if cfg.Int("l2_size") < minWishboneL2 {
			cfg["l2_size"] = minWishboneL2
		}
	} else {
		opts.WithWishboneMemory = cfg.Int("l2_size") != 0
	}

	// usb_host needs coherent DMA; never overridden by the user.
	if def.Capabilities.Has(board.CapUSBHost) {
		opts.WithCoherentDMA = true
	}

	if err := cpu.Apply(opts, cfg); err != nil {
		return nil, fmt.Errorf("soc: cpu configuration: %w", err)
	}

	if opts.Device != "" {
		cfg["device"] = opts.Device
	}
	if opts.Variant != "" {
		cfg["variant"] = opts.Variant
	}
	if opts.Toolchain != "" {
		cfg["toolchain"] = opts.Toolchain
	}

	// No board default exists for the baudrate.
	cfg["uart_baudrate"] = opts.UARTBaudrate

	for _, b := range uartBackends {
		if def.Capabilities.Has(b.cap) {
			cfg["uart_name"] = b.name
		}
	}

	for _, f := range featureFlags {
		if def.Capabilities.Has(f.cap) {
			cfg[f.key] = true
		}
	}

	return cfg, nil
}

// Peripheral is one optional hardware interface selected by a capability,
// instantiated by the builder in list order.
type Peripheral struct {
	Kind string
	Args map[string]any
}

// Peripherals builds the ordered interface-module list for the board. The
// list is constructed once here instead of being attached to the SoC as
// conditional side effects; ethernet is absent because its effect is the
// REMOTEIP constant set, not a module.
func Peripherals(def board.Definition, opts *Options) []Peripheral {
	var out []Peripheral
	if def.Capabilities.Has(board.CapSPISDCard) {
		out = append(out, Peripheral{Kind: "spisdcard"})
	}
	if def.Capabilities.Has(board.CapSDCard) {
		out = append(out, Peripheral{Kind: "sdcard"})
	}
	if def.Capabilities.Has(board.CapRGBLED) {
		out = append(out, Peripheral{Kind: "rgb_led"})
	}
	if def.Capabilities.Has(board.CapSwitches) {
		out = append(out, Peripheral{Kind: "switches"})
	}
	if def.Capabilities.Has(board.CapSPI) {
		out = append(out, Peripheral{Kind: "spi", Args: map[string]any{
			"data_width": opts.SPIDataWidth,
			"clk_freq":   opts.SPIClkFreq,
		}})
	}
	if def.Capabilities.Has(board.CapI2C) {
		out = append(out, Peripheral{Kind: "i2c"})
	}
	return out
}
