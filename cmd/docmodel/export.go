package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/docmodel/pkg/loader"
)

var exportCmd = &cobra.Command{
	Use:   "export <data-file>",
	Short: "Print the normalized form of a document",
	Long: `Builds the document in the data file with the selected model and prints it
with defaults applied and values coerced. JSON output is indented when writing
to a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		m, err := s.lookup(cmd)
		if err != nil {
			return err
		}
		data, err := loader.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := m.New(data)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		pretty, _ := cmd.Flags().GetBool("pretty")
		if !cmd.Flags().Changed("pretty") {
			pretty = isTerminal(cmd.OutOrStdout())
		}
		return writeValue(cmd.OutOrStdout(), doc, loader.Format(format), pretty)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("model", "m", "", "Model to build the document with")
	exportCmd.Flags().StringP("format", "f", string(loader.FormatJSON), "Output format (json, yaml)")
	exportCmd.Flags().Bool("pretty", false, "Indent JSON output (default: when stdout is a terminal)")
}

// writeValue encodes v, which must support both JSON and YAML marshaling.
func writeValue(w io.Writer, v any, format loader.Format, pretty bool) error {
	switch format {
	case loader.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case loader.FormatJSON:
		enc := json.NewEncoder(w)
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
