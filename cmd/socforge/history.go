package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/socforge/socforge/internal/buildfs"
	"github.com/socforge/socforge/internal/history"
)

type runInfo struct {
	ID        string `json:"id"`
	Board     string `json:"board"`
	RootFS    string `json:"rootfs"`
	Status    string `json:"status"`
	Stage     string `json:"stage,omitempty"`
	Error     string `json:"error,omitempty"`
	Bitstream string `json:"bitstream,omitempty"`
	StartedAt string `json:"started_at"`
	Duration  string `json:"duration,omitempty"`
}

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recorded build runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHistory,
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	cmd.Flags().String("output-dir", ".", "Workspace root the runs were recorded under")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	out := newOutputFormatter(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	root, _ := cmd.Flags().GetString("output-dir")

	store, err := history.Open(buildfs.HistoryPath(root))
	if err != nil {
		return out.Error("failed to open run history", err)
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return out.Error("failed to list runs", err)
	}

	infos := make([]runInfo, 0, len(runs))
	for _, r := range runs {
		info := runInfo{
			ID:        r.ID,
			Board:     r.Board,
			RootFS:    r.RootFS,
			Status:    r.Status,
			Stage:     r.Stage,
			Error:     r.Error,
			Bitstream: r.Bitstream,
			StartedAt: r.StartedAt.Format(time.RFC3339),
		}
		if !r.FinishedAt.IsZero() {
			info.Duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		infos = append(infos, info)
	}

	if out.jsonMode {
		return out.Print(infos)
	}

	if len(infos) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBOARD\tSTATUS\tSTARTED\tDURATION")
	for _, info := range infos {
		id := info.ID
		if len(id) > 8 {
			id = id[:8]
		}
		status := info.Status
		if info.Status == history.StatusFailed && info.Stage != "" {
			status = fmt.Sprintf("%s (%s)", info.Status, info.Stage)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, info.Board, status, info.StartedAt, info.Duration)
	}
	return w.Flush()
}
