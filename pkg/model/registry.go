package model

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/docmodel/internal/logging"
	"github.com/aretw0/docmodel/pkg/registry"
	"github.com/aretw0/docmodel/pkg/schema"
)

// Registry maps model names to models. It resolves string references used by
// Nested, ListOf and MapOf fields, which is how forward and self references work.
//
// Models are held until Unregister is called.
type Registry struct {
	models *registry.Registry[*Model]
	logger *slog.Logger
	hooks  LifecycleHooks
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration and construction failures.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLifecycleHooks sets the callbacks invoked on model and document events.
func WithLifecycleHooks(hooks LifecycleHooks) RegistryOption {
	return func(r *Registry) {
		r.hooks = hooks
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		models: registry.New[*Model](),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultRegistry is used by builders that do not name a registry.
var DefaultRegistry = NewRegistry()

// Register attaches m under its name, replacing any model of the same name.
func (r *Registry) Register(m *Model) {
	_, replaced := r.models.Register(m.name, m)
	r.logger.Debug("model registered", "model", m.name, "fields", m.schema.Len(), "replaced", replaced)

	if r.hooks.OnModelDefined != nil {
		r.hooks.OnModelDefined(&ModelEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventModelDefined},
			Model:     m.name,
			Fields:    m.schema.Len(),
			Replaced:  replaced,
		})
	}
}

// Lookup returns the model registered under name.
// It fails with schema.ErrModelNotFound when the name is unknown.
func (r *Registry) Lookup(name string) (*Model, error) {
	m, ok := r.models.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrModelNotFound, name)
	}
	return m, nil
}

// Unregister removes name and reports whether it was registered.
func (r *Registry) Unregister(name string) bool {
	ok := r.models.Unregister(name)
	if ok {
		r.logger.Debug("model unregistered", "model", name)
	}
	return ok
}

// Names returns the registered model names in sorted order.
func (r *Registry) Names() []string {
	return r.models.Names()
}

// Models returns the registered models sorted by name.
func (r *Registry) Models() []*Model {
	names := r.models.Names()
	out := make([]*Model, 0, len(names))
	for _, name := range names {
		if m, ok := r.models.Lookup(name); ok {
			out = append(out, m)
		}
	}
	return out
}

func (r *Registry) built(m *Model, elapsed time.Duration) {
	if r.hooks.OnDocumentBuilt != nil {
		r.hooks.OnDocumentBuilt(&DocumentEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventDocumentBuilt},
			Model:     m.name,
			Duration:  elapsed,
		})
	}
}

func (r *Registry) failed(m *Model, elapsed time.Duration, err error) {
	kind := schema.KindName(err)
	r.logger.Debug("document rejected", "model", m.name, "kind", kind, "error", err)

	if r.hooks.OnDocumentFailed != nil {
		r.hooks.OnDocumentFailed(&DocumentEvent{
			EventBase: EventBase{Timestamp: time.Now(), Type: EventDocumentFailed},
			Model:     m.name,
			Duration:  elapsed,
			Err:       err,
			Kind:      kind,
		})
	}
}
