package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lapsync/internal/history"
)

type historyEntry struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at,omitzero"`
	Output        string    `json:"output"`
	Encoder       string    `json:"encoder,omitempty"`
	FramesWritten int       `json:"frames_written"`
	FramesTotal   int       `json:"frames_total"`
	Error         string    `json:"error,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				entries := make([]historyEntry, len(runs))
				for i, r := range runs {
					entries[i] = historyEntry{
						ID:            r.ID,
						Status:        string(r.Status),
						StartedAt:     r.StartedAt,
						FinishedAt:    r.FinishedAt,
						Output:        r.Output,
						Encoder:       r.Encoder,
						FramesWritten: r.FramesWritten,
						FramesTotal:   r.FramesTotal,
						Error:         r.ErrorMessage,
					}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No renders recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Status", "Encoder", "Frames", "Took", "Output"},
				historyRows(runs),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func historyRows(runs []history.Run) [][]string {
	title := cases.Title(language.English)
	p := message.NewPrinter(language.English)
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		encoder := r.Encoder
		if encoder == "" {
			encoder = "-"
		}
		took := "-"
		if d := r.Duration(); d > 0 {
			took = d.Round(time.Second).String()
		}
		rows = append(rows, []string{
			humanize.Time(r.StartedAt),
			title.String(string(r.Status)),
			encoder,
			p.Sprintf("%d/%d", r.FramesWritten, r.FramesTotal),
			took,
			r.Output,
		})
	}
	return rows
}
