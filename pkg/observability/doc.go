/*
Package observability turns model lifecycle events into metrics and logs.

Metrics registers Prometheus collectors and exposes them as model.LifecycleHooks;
LoggingHooks does the same for a slog.Logger. Chain combines several hook sets so
both can be attached to one registry:

	metrics := observability.MustNewMetrics(prometheus.DefaultRegisterer)
	reg := model.NewRegistry(model.WithLifecycleHooks(
		observability.Chain(metrics.Hooks(), observability.LoggingHooks(logger)),
	))
*/
package observability
