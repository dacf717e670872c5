package main

import (
	"fmt"

	"github.com/aretw0/colloquy/internal/presentation/graph"
	"github.com/aretw0/colloquy/pkg/adapters/project"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the dialogue graph visualization",
	Long:  `Loads the project and outputs a Mermaid diagram (graph TD) with one subgraph per group.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := project.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(p.Container))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
