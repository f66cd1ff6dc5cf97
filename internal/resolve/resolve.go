// Package resolve turns raw values documents into render-ready ones. A pass
// folds the shared defaults into every entry under the kind's merge policy,
// then validates the merged tree in one sweep, including the fields that
// point at sibling entries. Warnings ride along; only errors reject.
package resolve

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/goldenchart/goldengen/internal/merge"
	"github.com/goldenchart/goldengen/internal/names"
	"github.com/goldenchart/goldengen/internal/schema"
	"github.com/goldenchart/goldengen/internal/validate"
)

// DefaultChartName stands in when ReleaseOptions.ChartName is empty.
const DefaultChartName = "golden-chart"

// ReleaseOptions identify the installation the way helm would: they feed
// name derivation and the namespace every resource lands in.
type ReleaseOptions struct {
	Name      string
	Namespace string
	ChartName string
}

// Options tune one resolution pass.
type Options struct {
	Unknown validate.UnknownFieldMode
}

// ResourceMap is one kind's entries in input order. Keys written by the
// values file keep their order; keys added later (for example by --set)
// follow, sorted.
type ResourceMap struct {
	Keys    []string
	Entries map[string]map[string]any
}

// Resolved is an accepted document: defaults folded in, names derived,
// ready to render. Values is the merged tree the validator accepted.
type Resolved struct {
	Release   ReleaseOptions
	ChartName string
	BaseName  string
	Namespace string
	Values    map[string]any

	kinds map[schema.Kind]*ResourceMap
}

// Kind returns the named resource map, empty when the input had none.
func (r *Resolved) Kind(k schema.Kind) *ResourceMap {
	if rm, ok := r.kinds[k]; ok {
		return rm
	}
	return &ResourceMap{Entries: map[string]map[string]any{}}
}

// Resolve folds defaults into one document and validates the result. The
// input is never modified. A rejected document comes back as (nil, issues,
// nil); the error return is reserved for input that cannot be processed at
// all.
func Resolve(doc *Document, rel ReleaseOptions, opts Options) (*Resolved, []validate.Issue, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("resolve: nil document")
	}
	chart := rel.ChartName
	if chart == "" {
		chart = DefaultChartName
	}

	tree := merge.Clone(doc.Tree)
	defaults, _ := tree["defaults"].(map[string]any)
	kinds := map[schema.Kind]*ResourceMap{}
	for _, k := range schema.Kinds() {
		m := kindMap(tree, k)
		if m == nil {
			continue
		}
		rm := orderedEntries(m, doc.Order(k))
		if p, ok := merge.PolicyFor(k); ok {
			for _, key := range rm.Keys {
				merged := merge.Merge(rm.Entries[key], defaults, p)
				rm.Entries[key] = merged
				m[key] = merged
			}
		}
		kinds[k] = rm
	}

	issues := validate.Validate(tree, schema.Document(), validate.Options{Unknown: opts.Unknown})
	issues = append(issues, referenceIssues(kinds)...)
	if validate.HasErrors(issues) {
		return nil, issues, nil
	}

	namespace := stringAt(tree, "namespaceOverride")
	if namespace == "" {
		namespace = rel.Namespace
	}
	res := &Resolved{
		Release:   rel,
		ChartName: chart,
		BaseName:  names.Base(rel.Name, chart, stringAt(tree, "nameOverride"), stringAt(tree, "fullnameOverride")),
		Namespace: namespace,
		Values:    tree,
		kinds:     kinds,
	}
	return res, issues, nil
}

// kindMap walks the kind's path through the tree, nil when absent or not a
// mapping. A wrong shape here is the validator's to report.
func kindMap(tree map[string]any, k schema.Kind) map[string]any {
	cur := any(tree)
	for _, step := range k.Path() {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[step]
	}
	m, _ := cur.(map[string]any)
	return m
}

// orderedEntries collects m's entries keyed by order, appending keys the
// order list does not know about in sorted order. Null entries are
// normalized to empty mappings in place.
func orderedEntries(m map[string]any, order []string) *ResourceMap {
	rm := &ResourceMap{Entries: map[string]map[string]any{}}
	seen := map[string]bool{}
	for _, key := range order {
		if _, ok := m[key]; !ok {
			continue
		}
		seen[key] = true
		rm.Keys = append(rm.Keys, key)
	}
	var extra []string
	for key := range m {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	rm.Keys = append(rm.Keys, extra...)
	for _, key := range rm.Keys {
		entry, _ := m[key].(map[string]any)
		if entry == nil {
			entry = map[string]any{}
			m[key] = entry
		}
		rm.Entries[key] = entry
	}
	return rm
}

// referenceIssues checks the fields that name sibling entries. Each rule
// fires only when its field is present; an absent field falls back at
// render time instead.
func referenceIssues(kinds map[schema.Kind]*ResourceMap) []validate.Issue {
	var issues []validate.Issue
	deployments := kinds[schema.KindDeployments]
	services := kinds[schema.KindServices]
	gateways := kinds[schema.KindGateways]

	if services != nil {
		for _, key := range services.Keys {
			td, ok := services.Entries[key]["targetDeployment"].(string)
			if !ok || td == "" {
				continue
			}
			if !hasEntry(deployments, td) {
				issues = append(issues, refIssue(
					validate.Path{"services", key, "targetDeployment"},
					"references unknown deployment %q", td))
			}
		}
	}
	if drs := kinds[schema.KindDestinationRules]; drs != nil {
		for _, key := range drs.Keys {
			host, ok := drs.Entries[key]["host"].(string)
			if !ok || host == "" {
				continue
			}
			if !hasEntry(services, host) {
				issues = append(issues, refIssue(
					validate.Path{"istio", "destinationRules", key, "host"},
					"references unknown service %q", host))
			}
		}
	}
	if vss := kinds[schema.KindVirtualServices]; vss != nil {
		for _, key := range vss.Keys {
			refs, ok := vss.Entries[key]["gateways"].([]any)
			if !ok {
				continue
			}
			for i, ref := range refs {
				name, ok := ref.(string)
				if !ok || name == "" || name == "mesh" {
					continue
				}
				if !hasEntry(gateways, name) {
					issues = append(issues, refIssue(
						validate.Path{"istio", "virtualServices", key, "gateways", strconv.Itoa(i)},
						"references unknown gateway %q", name))
				}
			}
		}
	}
	return issues
}

func hasEntry(rm *ResourceMap, key string) bool {
	if rm == nil {
		return false
	}
	_, ok := rm.Entries[key]
	return ok
}

func refIssue(p validate.Path, format string, args ...any) validate.Issue {
	return validate.Issue{
		Path:     p,
		Message:  fmt.Sprintf(format, args...),
		Severity: validate.SeverityError,
	}
}

func stringAt(tree map[string]any, key string) string {
	s, _ := tree[key].(string)
	return s
}
