package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/docmodel/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe [model]...",
	Short: "Show the fields of each model",
	Long:  `Renders a field table for every selected model (all loaded models by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		models, err := s.selected(args)
		if err != nil {
			return err
		}

		markdown := tui.Describe(models)
		if raw, _ := cmd.Flags().GetBool("raw"); raw || !isTerminal(cmd.OutOrStdout()) {
			fmt.Fprint(cmd.OutOrStdout(), markdown)
			return nil
		}

		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(markdown)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}
