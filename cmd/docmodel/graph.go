package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/docmodel/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [model]...",
	Short: "Export a class diagram of the models",
	Long:  `Outputs a Mermaid class diagram with fields, inheritance and references between models.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		models, err := s.selected(args)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if names, _ := cmd.Flags().GetStringSlice("highlight"); len(names) > 0 {
			overlay = &graph.Overlay{Highlighted: names}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(models, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringSlice("highlight", nil, "Models to highlight")
}
