package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/docmodel/internal/logging"
	"github.com/aretw0/docmodel/pkg/model"
	"github.com/aretw0/docmodel/pkg/schema"
)

// Format identifies the encoding of a file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf guesses the format from a file extension. Anything that is not
// ".json" is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Loader builds models from declarative files into a registry.
type Loader struct {
	registry *model.Registry
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry sets the registry models are built into.
// Defaults to model.DefaultRegistry.
func WithRegistry(reg *model.Registry) Option {
	return func(l *Loader) {
		if reg != nil {
			l.registry = reg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		registry: model.DefaultRegistry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the registry models are built into.
func (l *Loader) Registry() *model.Registry { return l.registry }

// LoadFile reads a model file (YAML or JSON) and builds its models.
func (l *Loader) LoadFile(path string) ([]*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	models, err := l.Load(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return models, nil
}

// Load parses data and builds its models.
func (l *Loader) Load(data []byte, format Format) ([]*model.Model, error) {
	f, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	return l.Build(f)
}

// Build builds every model of f, parents before children, and returns them
// in file order. It is all or nothing: when a model fails, the models this
// call already registered are removed and any definitions they replaced are
// registered again.
func (l *Loader) Build(f *File) ([]*model.Model, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	order, err := buildOrder(f.Models, l.registry)
	if err != nil {
		return nil, err
	}

	built := make(map[string]*model.Model, len(f.Models))
	replaced := make(map[string]*model.Model)
	for _, idx := range order {
		spec := f.Models[idx]
		if prev, err := l.registry.Lookup(spec.Name); err == nil {
			replaced[spec.Name] = prev
		}
		m, err := l.buildModel(spec)
		if err != nil {
			l.rollback(built, replaced)
			return nil, err
		}
		built[spec.Name] = m
		l.logger.Debug("model loaded", "model", spec.Name, "fields", m.Schema().Len())
	}

	out := make([]*model.Model, 0, len(f.Models))
	for _, spec := range f.Models {
		out = append(out, built[spec.Name])
	}
	return out, nil
}

// rollback undoes the registrations of a failed Build.
func (l *Loader) rollback(built, replaced map[string]*model.Model) {
	for name := range built {
		if prev, ok := replaced[name]; ok {
			l.registry.Register(prev)
			continue
		}
		l.registry.Unregister(name)
	}
	l.logger.Debug("model file rolled back", "models", len(built))
}

func (l *Loader) buildModel(spec ModelSpec) (*model.Model, error) {
	b := model.Define(spec.Name).Registry(l.registry)

	parents := make([]*model.Model, 0, len(spec.Extends))
	for _, name := range spec.Extends {
		p, err := l.registry.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("%w: model %q extends %q: %w", schema.ErrConfiguration, spec.Name, name, err)
		}
		parents = append(parents, p)
	}
	b.Extends(parents...)

	if spec.Immutable {
		b.Immutable()
	}
	if len(spec.Meta) > 0 {
		b.Meta(model.Meta(spec.Meta))
	}
	for _, fs := range spec.Fields {
		f, err := fs.Field()
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", schema.ErrConfiguration, spec.Name+"."+fs.Name, err)
		}
		b.Field(fs.Name, f)
	}
	return b.Build()
}

// buildOrder sorts models so that every parent declared in the same file is
// built before its children. Parents outside the file must already be
// registered.
func buildOrder(specs []ModelSpec, reg *model.Registry) ([]int, error) {
	index := make(map[string]int, len(specs))
	for i, s := range specs {
		index[s.Name] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(specs))
	order := make([]int, 0, len(specs))

	var visit func(i int, path []string) error
	visit = func(i int, path []string) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: inheritance cycle %s", schema.ErrConfiguration, strings.Join(append(path, specs[i].Name), " -> "))
		}
		state[i] = visiting
		for _, parent := range specs[i].Extends {
			if j, ok := index[parent]; ok {
				if err := visit(j, append(slices.Clip(path), specs[i].Name)); err != nil {
					return err
				}
				continue
			}
			if _, err := reg.Lookup(parent); err != nil {
				return fmt.Errorf("%w: model %q extends %q: %w", schema.ErrConfiguration, specs[i].Name, parent, err)
			}
		}
		state[i] = done
		order = append(order, i)
		return nil
	}

	for i := range specs {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Parse decodes a model file. Unknown keys are rejected.
func Parse(data []byte, format Format) (*File, error) {
	raw, err := Unmarshal(data, format)
	if err != nil {
		return nil, err
	}

	var f File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &f,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode model file: %w", schema.ErrConfiguration, err)
	}
	return &f, nil
}

// Unmarshal decodes YAML or JSON data into plain Go values.
func Unmarshal(data []byte, format Format) (any, error) {
	var out any
	switch format {
	case FormatJSON:
		// Numbers stay json.Number so decimal fields keep their exact text.
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errors.New("failed to parse json: unexpected data after top-level value")
		}
	default:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}
	return out, nil
}

// ReadFile reads a data file (YAML or JSON) into plain Go values.
func ReadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return Unmarshal(data, FormatOf(path))
}
