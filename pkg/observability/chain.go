package observability

import "github.com/aretw0/docmodel/pkg/model"

// Chain combines several hook sets into one. Callbacks run in argument order;
// nil callbacks are skipped.
func Chain(sets ...model.LifecycleHooks) model.LifecycleHooks {
	var (
		defined []func(*model.ModelEvent)
		built   []func(*model.DocumentEvent)
		failed  []func(*model.DocumentEvent)
	)
	for _, s := range sets {
		if s.OnModelDefined != nil {
			defined = append(defined, s.OnModelDefined)
		}
		if s.OnDocumentBuilt != nil {
			built = append(built, s.OnDocumentBuilt)
		}
		if s.OnDocumentFailed != nil {
			failed = append(failed, s.OnDocumentFailed)
		}
	}

	var out model.LifecycleHooks
	if len(defined) > 0 {
		out.OnModelDefined = func(e *model.ModelEvent) {
			for _, fn := range defined {
				fn(e)
			}
		}
	}
	if len(built) > 0 {
		out.OnDocumentBuilt = fanOut(built)
	}
	if len(failed) > 0 {
		out.OnDocumentFailed = fanOut(failed)
	}
	return out
}

func fanOut(fns []func(*model.DocumentEvent)) func(*model.DocumentEvent) {
	return func(e *model.DocumentEvent) {
		for _, fn := range fns {
			fn(e)
		}
	}
}
