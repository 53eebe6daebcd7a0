package soc

// CPUConfigurator injects CPU-variant-specific build options. The resolver
// treats it as a black box that may read and mutate Options before the
// remaining resolution steps run.
type CPUConfigurator interface {
	Apply(opts *Options, cfg Config) error
}

// VexRiscvSMP configures the vexriscv_smp CPU in its Linux variant, the only
// CPU the supported boards ship with.
type VexRiscvSMP struct{}

// Apply writes the CPU selection and the CPU arguments derived from the user
// options into the configuration.
func (VexRiscvSMP) Apply(opts *Options, cfg Config) error {
	cfg["cpu_type"] = "vexriscv_smp"
	cfg["cpu_variant"] = "linux"

	count := opts.CPUCount
	if count < 1 {
		count = 1
	}
	cfg["cpu_count"] = count

	cfg["with_wishbone_memory"] = opts.WithWishboneMemory
	if opts.WithCoherentDMA {
		cfg["with_coherent_dma"] = true
	}
	return nil
}
