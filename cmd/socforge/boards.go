package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/socforge/socforge/internal/board"
)

type boardInfo struct {
	Name         string   `json:"name"`
	Vendor       string   `json:"vendor"`
	Identifier   string   `json:"identifier"`
	Capabilities []string `json:"capabilities"`
}

func newBoardsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "boards",
		Short:         "List supported boards",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBoards,
	}
	return cmd
}

func runBoards(cmd *cobra.Command, _ []string) error {
	out := newOutputFormatter(cmd)

	var boards []boardInfo
	for _, name := range board.Names() {
		def, err := board.Lookup(name)
		if err != nil {
			return out.Error("board lookup failed", err)
		}
		identifier, err := board.Identifier(name)
		if err != nil {
			return out.Error("board identifier lookup failed", err)
		}

		caps := make([]string, 0, len(def.Capabilities))
		for _, c := range def.Capabilities.Sorted() {
			caps = append(caps, string(c))
		}
		boards = append(boards, boardInfo{
			Name:         name,
			Vendor:       def.Vendor,
			Identifier:   identifier,
			Capabilities: caps,
		})
	}

	if out.jsonMode {
		return out.Print(boards)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "BOARD\tVENDOR\tCAPABILITIES")
	for _, b := range boards {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Name, b.Vendor, strings.Join(b.Capabilities, ","))
	}
	return w.Flush()
}
