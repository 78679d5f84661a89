package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdelmont/mediagraph/graph"
	"github.com/hdelmont/mediagraph/nodes"
)

func newNodesCommand(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List registered node types",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := graph.NewRegistry()
			if err := nodes.Register(registry, cli.deps); err != nil {
				return err
			}
			for _, name := range registry.Types() {
				node, err := registry.New(name)
				if err != nil {
					return err
				}
				desc := node.Describe()
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s (%s)\n", name, desc.DisplayName, desc.Category)
			}
			return nil
		},
	}
}
