package main

import (
	"fmt"

	"github.com/spf13/cobra"

	socforgeversion "github.com/socforge/socforge/internal/version"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the socforge version",
		RunE:  runVersion,
	}
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	out := newOutputFormatter(cmd)
	if out.jsonMode {
		return out.Print(map[string]any{"version": socforgeversion.String()})
	}
	fmt.Printf("socforge %s\n", socforgeversion.Format(socforgeversion.String()))
	return nil
}
