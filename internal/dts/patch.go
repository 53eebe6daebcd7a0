package dts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTree indicates generated tree text whose chosen block cannot
// be located, so the regulator patch cannot be applied without corrupting it.
var ErrMalformedTree = errors.New("dts: malformed chosen block")

const (
	regulatorRef  = "vmmc-supply = <&vreg_mmc>;"
	regulatorDecl = "vreg_mmc:"

	regulatorNode = "\n        vreg_mmc: vreg_mmc {\n" +
		"            compatible = \"regulator-fixed\";\n" +
		"            regulator-name = \"vreg_mmc\";\n" +
		"            regulator-min-microvolt = <3300000>;\n" +
		"            regulator-max-microvolt = <3300000>;\n" +
		"            regulator-always-on;\n        };\n"
)

// PatchRegulator injects a fixed 3.3V MMC supply regulator when the tree
// references vreg_mmc without declaring it. The node lands right after the
// first chosen block closes, as a sibling of chosen under the root node.
// The transformation is idempotent: patched or non-referencing text is
// returned unchanged, byte for byte.
func PatchRegulator(text string) (string, error) {
	if !strings.Contains(text, regulatorRef) {
		return text, nil
	}
	if strings.Contains(text, regulatorDecl) {
		return text, nil
	}

	start := strings.Index(text, "chosen {")
	if start < 0 {
		return "", fmt.Errorf("%w: no chosen block for regulator insertion", ErrMalformedTree)
	}
	close := strings.Index(text[start:], "};")
	if close < 0 {
		return "", fmt.Errorf("%w: chosen block is not terminated", ErrMalformedTree)
	}

	insertAt := start + close + len("};")
	return text[:insertAt] + regulatorNode + text[insertAt:], nil
}
