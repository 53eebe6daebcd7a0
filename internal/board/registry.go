package board

// The registry is populated once from these literals; there is no runtime
// discovery. Board names follow the litex-boards target naming
// (vendor_model, lower snake case).
var registry = map[string]Definition{
	"sipeed_tang_nano_20k": {
		Name:            "sipeed_tang_nano_20k",
		Vendor:          "Sipeed",
		SoCClass:        "sipeed_tang_nano_20k",
		ProgrammerBoard: "tangnano20k",
		// Use Wishbone and L2 for memory accesses.
		SoCKwargs: map[string]any{"l2_size": 2048},
		Capabilities: NewCapabilities(
			CapSerial,
			CapSDCard,
		),
	},
	"sipeed_tang_primer_20k": {
		Name:            "sipeed_tang_primer_20k",
		Vendor:          "Sipeed",
		SoCClass:        "sipeed_tang_primer_20k",
		ProgrammerBoard: "tangprimer20k",
		// Use Wishbone and L2 for memory accesses.
		SoCKwargs: map[string]any{"l2_size": 512},
		Capabilities: NewCapabilities(
			CapSerial,
			CapSPISDCard,
		),
	},
	"sipeed_tang_mega_138k_pro": {
		Name:            "sipeed_tang_mega_138k_pro",
		Vendor:          "Sipeed",
		SoCClass:        "sipeed_tang_mega_138k_pro",
		ProgrammerBoard: "tangmega138k",
		SoCKwargs:       map[string]any{"l2_size": 2048},
		Capabilities: NewCapabilities(
			CapSerial,
			CapSDCard,
			CapUSBHost,
			CapPSDDR,
		),
	},
	"digilent_arty": {
		Name:            "digilent_arty",
		Vendor:          "Digilent",
		SoCClass:        "digilent_arty",
		ProgrammerBoard: "arty",
		Capabilities: NewCapabilities(
			CapSerial,
			CapEthernet,
			CapLEDs,
			CapRGBLED,
			CapSwitches,
			CapSPI,
			CapI2C,
			CapSDCard,
			CapSPIFlash,
		),
	},
	"radiona_ulx3s": {
		Name:            "radiona_ulx3s",
		Vendor:          "Radiona",
		SoCClass:        "radiona_ulx3s",
		ProgrammerBoard: "ulx3s",
		Capabilities: NewCapabilities(
			CapSerial,
			CapSDCard,
			CapLEDs,
			CapSPI,
		),
	},
	"qmtech_wukong": {
		Name:            "qmtech_wukong",
		Vendor:          "QMTech",
		SoCClass:        "qmtech_wukong",
		ProgrammerBoard: "wukong",
		Capabilities: NewCapabilities(
			CapSerial,
			CapEthernet,
			CapLEDs,
			CapSDCard,
			CapFramebuffer,
		),
	},
	"sqrl_acorn_cle_215": {
		Name:            "sqrl_acorn_cle_215",
		Vendor:          "SQRL",
		SoCClass:        "sqrl_acorn",
		ProgrammerBoard: "acorn",
		Capabilities: NewCapabilities(
			CapCrossover,
			CapPCIe,
			CapLEDs,
			CapSPIFlash,
			CapSATA,
		),
	},
	"lambdaconcept_ecpix5": {
		Name:            "lambdaconcept_ecpix5",
		Vendor:          "LambdaConcept",
		SoCClass:        "lambdaconcept_ecpix5",
		ProgrammerBoard: "ecpix5",
		Capabilities: NewCapabilities(
			CapSerial,
			CapEthernet,
			CapSDCard,
			CapRGBLED,
			CapSPIFlash,
		),
	},
	"gsd_butterstick": {
		Name:            "gsd_butterstick",
		Vendor:          "GsD",
		SoCClass:        "gsd_butterstick",
		ProgrammerBoard: "butterstick",
		Capabilities: NewCapabilities(
			CapUSBACM,
			CapEthernet,
			CapLEDs,
			CapSDCard,
			CapSPIFlash,
		),
	},
}

// identifiers maps board names to the human-readable identifier exported to
// firmware. Every registered board needs an entry; BuildConstants fails
// otherwise.
var identifiers = map[string]string{
	"sipeed_tang_nano_20k":      "Sipeed Tang Nano 20K Linux SoC",
	"sipeed_tang_primer_20k":    "Sipeed Tang Primer 20K Linux SoC",
	"sipeed_tang_mega_138k_pro": "Sipeed Tang Mega 138K Pro Linux SoC",
	"digilent_arty":             "Digilent Arty A7 Linux SoC",
	"radiona_ulx3s":             "Radiona ULX3S Linux SoC",
	"qmtech_wukong":             "QMTech Wukong Linux SoC",
	"sqrl_acorn_cle_215":        "SQRL Acorn CLE-215+ Linux SoC",
	"lambdaconcept_ecpix5":      "LambdaConcept ECPIX-5 Linux SoC",
	"gsd_butterstick":           "GsD ButterStick Linux SoC",
}
