package main

import (
	"fmt"

	"github.com/aretw0/feedstream/internal/presentation/graph"
	"github.com/aretw0/feedstream/pkg/adapters/fixture"
	"github.com/aretw0/feedstream/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <fixture>",
	Short: "Export the content tree as a Mermaid diagram",
	Long:  `Loads a fixture and outputs a Mermaid diagram (graph TD) of its root feature tree.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := fixture.Load(args[0])
		if err != nil {
			return err
		}
		model := memory.NewModel()
		if err := file.Apply(model); err != nil {
			return err
		}
		root, ok := model.Root()
		if !ok {
			return fmt.Errorf("fixture %s has no root (state %q)", args[0], file.State)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(root, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
