package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/imaging"
	"github.com/hdelmont/mediagraph/nodes"
)

func newMusicPromptCommand(cli *cliContext) *cobra.Command {
	var (
		style       string
		model       string
		instruction string
	)

	cmd := &cobra.Command{
		Use:   "music-prompt <image>",
		Short: "Describe an image as a one-sentence music prompt via Ollama",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			tensor, err := imaging.Decode(f)
			if err != nil {
				return err
			}

			node := nodes.NewOllamaMusicPrompt(cli.deps)
			res, err := node.Execute(cmd.Context(), musicPromptInputs(tensor, style, model, instruction, cli.cfg.Ollama.Host))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Values[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "descriptive",
		"prompt style: descriptive, mood_based, genre_specific, cinematic")
	cmd.Flags().StringVar(&model, "model", "", "Ollama vision model (configured model when empty)")
	cmd.Flags().StringVar(&instruction, "instruction", "", "extra instruction appended to the prompt")
	return cmd
}

// musicPromptInputs builds the node inputs, leaving the model port
// disconnected when the flag is unset so the configured model applies.
func musicPromptInputs(tensor any, style, model, instruction, host string) graph.Inputs {
	in := graph.Inputs{
		"image":              tensor,
		"prompt_style":       style,
		"ollama_host":        host,
		"custom_instruction": instruction,
	}
	if model != "" {
		in["model"] = model
	}
	return in
}
