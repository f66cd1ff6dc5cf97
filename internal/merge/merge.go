// Package merge combines per-entry overrides with the shared defaults block.
// Two behaviors exist, fixed per resource kind: deployments deep-merge the
// whole defaults subtree, while cronjobs and hooks take whole defaults fields
// only where their own are absent. Merging is total and never mutates either
// input; results are fresh trees.
package merge

import "github.com/goldenchart/goldengen/internal/schema"

// Policy selects how defaults combine with an entry override.
type Policy int

const (
	// DeepMerge recursively combines mappings; on any non-mapping value,
	// sequences included, the override replaces the default wholesale.
	DeepMerge Policy = iota
	// FieldFallback substitutes whole top-level fields from the defaults,
	// only for the fallback whitelist, only when the override leaves them
	// absent.
	FieldFallback
)

// PolicyFor returns the merge policy for a resource kind. Kinds without an
// entry in the table take no defaults; their entries pass through cloned.
func PolicyFor(k schema.Kind) (Policy, bool) {
	switch k {
	case schema.KindDeployments:
		return DeepMerge, true
	case schema.KindCronJobs, schema.KindHooks:
		return FieldFallback, true
	}
	return 0, false
}

// fallbackFields is the fixed whitelist FieldFallback consults. Nothing
// outside it ever falls back.
var fallbackFields = []string{"resources", "nodeSelector", "tolerations", "affinity", "image"}

// Merge resolves one entry override against the defaults block under the
// given policy. A nil override stands for the empty tree, so the applicable
// defaults surface unchanged.
func Merge(override, defaults map[string]any, p Policy) map[string]any {
	if p == FieldFallback {
		return fieldFallback(override, defaults)
	}
	return deepMerge(override, defaults)
}

func deepMerge(override, defaults map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(override))
	for k, dv := range defaults {
		ov, present := override[k]
		if !present {
			out[k] = clone(dv)
			continue
		}
		om, oIsMap := ov.(map[string]any)
		dm, dIsMap := dv.(map[string]any)
		if oIsMap && dIsMap {
			out[k] = deepMerge(om, dm)
			continue
		}
		out[k] = clone(ov)
	}
	for k, ov := range override {
		if _, shared := defaults[k]; shared {
			continue
		}
		out[k] = clone(ov)
	}
	return out
}

func fieldFallback(override, defaults map[string]any) map[string]any {
	out := Clone(override)
	if out == nil {
		out = map[string]any{}
	}
	for _, field := range fallbackFields {
		dv, ok := defaults[field]
		if !ok {
			continue
		}
		if ov, set := out[field]; set && !countsAsAbsent(field, ov) {
			continue
		}
		out[field] = clone(dv)
	}
	return out
}

// countsAsAbsent reports whether a set override value still falls back. An
// explicit null always does; an empty mapping does only for resources and
// image.
func countsAsAbsent(field string, v any) bool {
	if v == nil {
		return true
	}
	if field != "resources" && field != "image" {
		return false
	}
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}

// Clone deep-copies a tree. The pipeline hands out resolved trees that must
// never alias the input document.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

// clone deep-copies mappings and sequences; scalars are immutable and shared.
func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	}
	return v
}
