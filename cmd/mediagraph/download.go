package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hdelmont/mediagraph/media"
)

func newDownloadCommand(cli *cliContext) *cobra.Command {
	var (
		prefix string
		ext    string
	)

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Save a generated media URL into the output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawURL := args[0]
			if !media.IsURL(rawURL) {
				return fmt.Errorf("not an http(s) URL: %s", rawURL)
			}
			if err := cli.cfg.EnsureOutputDir(); err != nil {
				return err
			}
			dest := filepath.Join(cli.cfg.OutputDir,
				media.TimestampName(prefix, media.ExtFromURL(rawURL, ext)))
			if err := cli.deps.Media.Fetch(cmd.Context(), rawURL, dest); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "media", "output filename prefix")
	cmd.Flags().StringVar(&ext, "ext", "mp4", "fallback extension when the URL has none")
	return cmd
}
