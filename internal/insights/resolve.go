package insights

import "github.com/platesense/platesense/pkg/models"

// resolve applies the engine's tiered precedence policy: externally supplied
// data wins wholesale; only when it is entirely absent does resolution fall
// through to computing from raw financials, and only when those are also
// absent does it land on the static default. There is no per-field merging
// across tiers.
func resolve[T any](
	external func() (T, bool),
	computed func() (T, bool),
	fallback func() T,
) (T, models.MetricSource) {
	if v, ok := external(); ok {
		return v, models.SourceExternal
	}
	if v, ok := computed(); ok {
		return v, models.SourceComputed
	}
	return fallback(), models.SourceDefault
}
