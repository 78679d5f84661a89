package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStitchCommand(cli *cliContext) *cobra.Command {
	var (
		audioPath string
		volume    float64
		prefix    string
	)

	cmd := &cobra.Command{
		Use:   "stitch <video> [video...]",
		Short: "Concatenate clips and optionally mux an audio track",
		Long: `Concatenate up to five video references (local paths or URLs) in order
into one output file. Video streams are copied, never re-encoded. With
--audio the track is muxed onto the result, trimmed to the video length.`,
		Args: cobra.RangeArgs(1, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.cfg.EnsureOutputDir(); err != nil {
				return err
			}
			output, _, err := cli.deps.Stitcher.Stitch(cmd.Context(), args, audioPath, volume, prefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "audio file to mux onto the result")
	cmd.Flags().Float64Var(&volume, "volume", 1.0, "audio volume multiplier (0.0-2.0)")
	cmd.Flags().StringVar(&prefix, "prefix", "video", "output filename prefix")
	return cmd
}
