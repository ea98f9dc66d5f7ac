package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/docmodel/pkg/schema"
)

const models = "testdata/models.yaml"

// execute runs the root command with args and returns stdout and stderr.
// Flags are reset first since commands are package-level.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestValidate(t *testing.T) {
	out, _, err := execute(t, "validate", "-s", models, "-m", "Person", "testdata/people.json", "testdata/ada.yaml")
	assert.ErrorIs(t, err, errFailed)

	assert.Contains(t, out, "✔ ok testdata/people.json[0] (Person)")
	assert.Contains(t, out, "✘ fail testdata/people.json[1] (Person)")
	assert.Contains(t, out, `field "Person.name": field is required`)
	assert.Contains(t, out, `"Person.age"`)
	assert.Contains(t, out, "✔ ok testdata/ada.yaml (Person)")
}

func TestValidate_Metrics(t *testing.T) {
	out, _, err := execute(t, "validate", "-s", models, "-m", "Person", "--metrics", "testdata/ada.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, `docmodel_documents_total{model="Person",outcome="built"} 1`)
	assert.Contains(t, out, `docmodel_models_defined_total{model="Address"} 1`)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing schema", []string{"validate", "-m", "Person", "testdata/ada.yaml"}, "--schema"},
		{"ambiguous model", []string{"validate", "-s", models, "testdata/ada.yaml"}, "--model is required"},
		{"unknown model", []string{"validate", "-s", models, "-m", "Nobody", "testdata/ada.yaml"}, "Nobody"},
		{"missing data", []string{"validate", "-s", models, "-m", "Person", "testdata/none.json"}, "none.json"},
		{"bad log level", []string{"validate", "--log-level", "loud", "-s", models, "-m", "Person", "testdata/ada.yaml"}, "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_UnknownModelKind(t *testing.T) {
	_, _, err := execute(t, "validate", "-s", models, "-m", "Nobody", "testdata/ada.yaml")
	assert.ErrorIs(t, err, schema.ErrModelNotFound)
}

func TestExport_JSON(t *testing.T) {
	out, _, err := execute(t, "export", "-s", models, "-m", "Person", "testdata/ada.yaml")
	require.NoError(t, err)

	// Not a terminal: compact output
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.JSONEq(t, `{"name":"Ada","age":36,"address":{"street":"Main St","zip":null},"tags":["math","engines"]}`, out)

	out, _, err = execute(t, "export", "-s", models, "-m", "Person", "--pretty", "testdata/ada.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"name\": \"Ada\"")
}

func TestExport_YAML(t *testing.T) {
	out, _, err := execute(t, "export", "-s", models, "-m", "Person", "-f", "yaml", "testdata/ada.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Ada\n")
	assert.Contains(t, out, "age: 36\n")
}

func TestExport_Failure(t *testing.T) {
	_, _, err := execute(t, "export", "-s", models, "-m", "Person", "testdata/people.json")
	assert.ErrorIs(t, err, schema.ErrModelConstruction)
}

func TestOpenAPI(t *testing.T) {
	out, _, err := execute(t, "openapi", "-s", models, "-f", "json", "--title", "People", "Person")
	require.NoError(t, err)

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Components struct {
			Schemas map[string]any `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "People", doc.Info.Title)
	assert.Contains(t, doc.Components.Schemas, "Person")
	assert.Contains(t, doc.Components.Schemas, "Address")
}

func TestOpenAPI_YAML(t *testing.T) {
	out, _, err := execute(t, "openapi", "-s", models)
	require.NoError(t, err)
	assert.Contains(t, out, "openapi: 3.0.3")
	assert.Contains(t, out, "#/components/schemas/Address")
}

func TestDescribe(t *testing.T) {
	out, _, err := execute(t, "describe", "-s", models, "Address")
	require.NoError(t, err)
	assert.Contains(t, out, "## Address")
	assert.Contains(t, out, "| street | `string` | yes |")
	assert.NotContains(t, out, "## Person")
}

func TestGraph(t *testing.T) {
	out, _, err := execute(t, "graph", "-s", models, "--highlight", "Person")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "classDiagram\n"))
	assert.Contains(t, out, `Person --> "1" Address : address`)
	assert.Contains(t, out, `cssClass "Person" highlighted`)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^docmodel version \d+\.\d+\.\d+\n$`, out)
}

func TestLogLevel_Debug(t *testing.T) {
	_, stderr, err := execute(t, "describe", "--log-level", "debug", "-s", models)
	require.NoError(t, err)
	assert.Contains(t, stderr, "schemas loaded")
	assert.Contains(t, stderr, "model loaded")
}
