package main

import (
	"errors"
	"fmt"
	"iter"

	"github.com/spf13/cobra"

	"github.com/aretw0/docmodel/internal/presentation/tui"
	"github.com/aretw0/docmodel/pkg/loader"
	"github.com/aretw0/docmodel/pkg/model"
	"github.com/aretw0/docmodel/pkg/observability"
	"github.com/aretw0/docmodel/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <data-file>...",
	Short: "Check documents against a model",
	Long: `Builds every document found in the data files with the selected model and
reports every failing field. A data file holds one document or a list of documents.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		m, err := s.lookup(cmd)
		if err != nil {
			return err
		}

		status := tui.NewStatus(cmd.OutOrStdout())
		failed := 0
		for _, path := range args {
			data, err := loader.ReadFile(path)
			if err != nil {
				return err
			}
			for label, doc := range documents(path, data) {
				if !validateOne(status, m, label, doc) {
					failed++
				}
			}
		}

		if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
			fmt.Fprintln(cmd.OutOrStdout())
			if err := observability.WriteText(cmd.OutOrStdout(), s.metrics); err != nil {
				return err
			}
		}
		if failed > 0 {
			return errFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("model", "m", "", "Model to validate against")
	validateCmd.Flags().Bool("metrics", false, "Print build metrics in Prometheus text format")
}

// validateOne builds a single document and prints its outcome.
// On failure the document is validated again to list every failing field.
func validateOne(status *tui.Status, m *model.Model, label string, data any) bool {
	_, err := m.New(data)
	if err == nil {
		status.OK(label, m.Name())
		return true
	}
	if !errors.Is(err, schema.ErrValidation) {
		status.Fail(label, schema.KindName(err))
		status.Detail(err.Error())
		return false
	}

	err = m.Validate(data)
	status.Fail(label, m.Name())
	errs := schema.ValidationErrors(err)
	if len(errs) == 0 && err != nil {
		errs = []error{err}
	}
	for _, e := range errs {
		status.Detail(e.Error())
	}
	return false
}

// documents yields the documents of a data file, labeled for display.
func documents(path string, data any) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		items, ok := data.([]any)
		if !ok {
			yield(path, data)
			return
		}
		for i, item := range items {
			if !yield(fmt.Sprintf("%s[%d]", path, i), item) {
				return
			}
		}
	}
}
