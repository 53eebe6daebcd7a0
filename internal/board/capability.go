package board

import "sort"

// Capability names an optional hardware feature a board exposes. The set is
// closed; the resolver only ever tests membership, never ordering.
type Capability string

const (
	CapSerial        Capability = "serial"
	CapSDCard        Capability = "sdcard"
	CapSPISDCard     Capability = "spisdcard"
	CapEthernet      Capability = "ethernet"
	CapRGBLED        Capability = "rgb_led"
	CapSwitches      Capability = "switches"
	CapSPI           Capability = "spi"
	CapI2C           Capability = "i2c"
	CapPCIe          Capability = "pcie"
	CapSPIFlash      Capability = "spiflash"
	CapSATA          Capability = "sata"
	CapVideoTerminal Capability = "video_terminal"
	CapFramebuffer   Capability = "framebuffer"
	CapUSBHost       Capability = "usb_host"
	CapPSDDR         Capability = "ps_ddr"
	CapLEDs          Capability = "leds"
	CapCrossover     Capability = "crossover"
	CapUSBFIFO       Capability = "usb_fifo"
	CapUSBACM        Capability = "usb_acm"
)

// Capabilities is a membership set of board capabilities.
type Capabilities map[Capability]struct{}

// NewCapabilities builds a set from the given tags.
func NewCapabilities(caps ...Capability) Capabilities {
	set := make(Capabilities, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the capability.
func (s Capabilities) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the capabilities in lexical order.
func (s Capabilities) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy of the set.
func (s Capabilities) Clone() Capabilities {
	if s == nil {
		return nil
	}
	out := make(Capabilities, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}
