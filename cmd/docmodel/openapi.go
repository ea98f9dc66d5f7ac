package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/docmodel/pkg/loader"
	"github.com/aretw0/docmodel/pkg/openapi"
)

var openapiCmd = &cobra.Command{
	Use:   "openapi [model]...",
	Short: "Export models as an OpenAPI document",
	Long: `Prints an OpenAPI 3 document whose components hold one schema per model.
Without arguments every loaded model is exported; referenced models are always included.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		models, err := s.selected(args)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		version, _ := cmd.Flags().GetString("api-version")
		doc, err := openapi.Document(title, version, models...)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		return writeValue(cmd.OutOrStdout(), doc, loader.Format(format), true)
	},
}

func init() {
	rootCmd.AddCommand(openapiCmd)

	openapiCmd.Flags().String("title", "docmodel", "Document title")
	openapiCmd.Flags().String("api-version", "1.0.0", "Document version")
	openapiCmd.Flags().StringP("format", "f", string(loader.FormatYAML), "Output format (json, yaml)")
}
