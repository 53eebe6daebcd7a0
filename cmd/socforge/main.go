package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	socforgeversion "github.com/socforge/socforge/internal/version"
)

// Global variables for use across commands
var rootCmd *cobra.Command

// OutputFormatter handles output in JSON or human-readable format
type OutputFormatter struct {
	jsonMode bool
}

// newOutputFormatter creates a new formatter based on the command's --json flag
func newOutputFormatter(cmd *cobra.Command) *OutputFormatter {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &OutputFormatter{jsonMode: jsonMode}
}

// Print outputs data in the appropriate format
func (f *OutputFormatter) Print(data interface{}) error {
	if f.jsonMode {
		jsonBytes, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}
	switch v := data.(type) {
	case string:
		fmt.Println(v)
	default:
		// Fallback to JSON for unknown types
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	}
	return nil
}

// Error outputs an error message
func (f *OutputFormatter) Error(message string, err error) error {
	if f.jsonMode {
		output := map[string]interface{}{
			"success": false,
			"error":   message,
		}
		if err != nil {
			output["details"] = err.Error()
		}
		jsonBytes, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(os.Stderr, string(jsonBytes))
	} else {
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", message, err)
		} else {
			fmt.Fprintln(os.Stderr, message)
		}
	}
	return fmt.Errorf("%s: %w", message, err)
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "socforge",
		Short: "SoCForge - Linux SoC build orchestrator for FPGA boards",
		Long: `SoCForge drives the full Linux-capable SoC build for supported FPGA
boards: it resolves board capabilities into a builder configuration,
invokes the external SoC builder, synthesizes and patches the device
tree, combines overlays, and loads or flashes the resulting bitstream.`,
	}
	rootCmd.Version = socforgeversion.String()
	rootCmd.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	// Add global --json flag
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func main() {
	rootCmd.AddCommand(
		newBuildCommand(),
		newBoardsCommand(),
		newHistoryCommand(),
		newVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
