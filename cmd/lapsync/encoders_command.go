package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"lapsync/internal/config"
	"lapsync/internal/encoding"
)

func newEncodersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encoders",
		Short: "Show the encoder fallback order for the configured output size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			width, _, err := config.ParseSize(cfg.Render.OutputSize)
			if err != nil {
				return err
			}
			available, err := encoding.ProbeEncoders(cmd.Context(), cfg.FFmpegBinary())
			if err != nil {
				return err
			}
			candidates := encoding.Candidates(available, width, encoding.SelectOptions{
				Preferred:       cfg.Encoder.Preferred,
				DisableHardware: cfg.Encoder.DisableHardware,
			})

			order := make(map[string]int, len(candidates))
			for i, c := range candidates {
				order[c.Codec] = i + 1
			}
			rows := make([][]string, 0, len(encoding.KnownCodecs()))
			for _, codec := range encoding.KnownCodecs() {
				position := "-"
				if n, ok := order[codec]; ok {
					position = strconv.Itoa(n)
				}
				rows = append(rows, []string{
					position,
					codec,
					yesNo(codec != encoding.SoftwareCodec),
					yesNo(slices.Contains(available, codec)),
				})
			}
			slices.SortStableFunc(rows, func(a, b []string) int {
				return rankOf(a[0]) - rankOf(b[0])
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ffmpeg: %s (output width %d)\n", cfg.FFmpegBinary(), width)
			fmt.Fprintln(out, renderTable([]string{"Order", "Encoder", "Hardware", "Available"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
}

// rankOf sorts unused encoders ("-") after the ordered ones.
func rankOf(position string) int {
	n, err := strconv.Atoi(position)
	if err != nil {
		return 1 << 16
	}
	return n
}
