// Package validate checks a values tree against the chart schema and
// reports every violation it can find in a single pass. Violations come
// back as data, not errors: callers decide whether warnings matter and
// whether to keep going.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goldenchart/goldengen/internal/schema"
)

// Validate walks tree against root and returns every violation found, in
// schema declaration order. The tree is never modified. A malformed value
// produces an issue at its path and the walk continues with its siblings,
// so one pass reports everything fixable at once.
func Validate(tree map[string]any, root *schema.Object, opts Options) []Issue {
	w := &walker{opts: opts, patterns: map[string]*regexp.Regexp{}}
	w.object(nil, tree, root)
	return w.issues
}

type walker struct {
	opts     Options
	patterns map[string]*regexp.Regexp
	issues   []Issue
}

func (w *walker) errorf(p Path, format string, args ...any) {
	w.issues = append(w.issues, Issue{Path: p, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (w *walker) warnf(p Path, format string, args ...any) {
	w.issues = append(w.issues, Issue{Path: p, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

func (w *walker) object(p Path, v map[string]any, o *schema.Object) {
	for _, f := range o.Fields {
		fv, ok := v[f.Name]
		fp := p.child(f.Name)
		if !ok || fv == nil {
			// An explicit null reads the same as an absent field.
			if f.Required {
				w.errorf(fp, "required field is missing")
			}
			continue
		}
		if f.Deprecated != "" {
			w.warnf(fp, "deprecated: %s", f.Deprecated)
		}
		w.value(fp, fv, f)
	}
	for _, r := range o.Rules {
		w.rule(p, v, r)
	}
	if w.opts.Unknown == UnknownWarn {
		w.unknown(p, v, o)
	}
}

func (w *walker) value(p Path, v any, f *schema.Field) {
	switch f.Type {
	case schema.TypeAny:
		// Opaque passthrough, nothing to check.
	case schema.TypeString:
		s, ok := v.(string)
		if !ok {
			w.errorf(p, "expected string, got %s", describe(v))
			return
		}
		w.stringChecks(p, s, f)
	case schema.TypeInt:
		n, ok := asInt(v)
		if !ok {
			w.errorf(p, "expected integer, got %s", describe(v))
			return
		}
		if f.Min != nil && n < int64(*f.Min) {
			w.errorf(p, "must be at least %d, got %d", *f.Min, n)
		}
		if f.Max != nil && n > int64(*f.Max) {
			w.errorf(p, "must be at most %d, got %d", *f.Max, n)
		}
	case schema.TypeBool:
		if _, ok := v.(bool); !ok {
			w.errorf(p, "expected boolean, got %s", describe(v))
		}
	case schema.TypeMap:
		m, ok := v.(map[string]any)
		if !ok {
			w.errorf(p, "expected mapping, got %s", describe(v))
			return
		}
		w.mapChecks(p, m, f)
	case schema.TypeSequence:
		s, ok := v.([]any)
		if !ok {
			w.errorf(p, "expected sequence, got %s", describe(v))
			return
		}
		if f.Elem != nil {
			for i, ev := range s {
				w.value(p.child(fmt.Sprintf("%d", i)), ev, f.Elem)
			}
		}
	case schema.TypeObject:
		m, ok := v.(map[string]any)
		if !ok {
			w.errorf(p, "expected mapping, got %s", describe(v))
			return
		}
		w.object(p, m, f.Object)
	}
}

func (w *walker) stringChecks(p Path, s string, f *schema.Field) {
	if len(f.Enum) > 0 && !contains(f.Enum, s) {
		w.errorf(p, "must be one of %s, got %q", strings.Join(f.Enum, "|"), s)
		return
	}
	if f.Pattern != "" && !w.match(p, f.Pattern, s) {
		w.errorf(p, "must match %s, got %q", f.Pattern, s)
		return
	}
	if f.Format != "" {
		w.formatCheck(p, s, f.Format)
	}
}

func (w *walker) mapChecks(p Path, m map[string]any, f *schema.Field) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kp := p.child(k)
		if f.KeyFormat != "" {
			w.keyFormatCheck(kp, k, f.KeyFormat)
		}
		if f.Format == schema.FormatLabels {
			w.labelCheck(kp, k, m[k])
			continue
		}
		if f.Elem != nil {
			if m[k] == nil {
				continue
			}
			w.value(kp, m[k], f.Elem)
		}
	}
}

func (w *walker) rule(p Path, v map[string]any, r schema.Rule) {
	if r.When != "" {
		gate, ok := v[r.When].(bool)
		if !ok || !gate {
			return
		}
	}
	for _, name := range r.Require {
		if !present(v, name) {
			if r.When != "" {
				w.errorf(p.child(name), "required when %s is true", r.When)
			} else {
				w.errorf(p.child(name), "required field is missing")
			}
		}
	}
	if len(r.ExactlyOne) > 0 {
		switch n := countPresent(v, r.ExactlyOne); {
		case n == 0:
			w.errorf(p, "exactly one of %s must be set", strings.Join(r.ExactlyOne, ", "))
		case n > 1:
			w.errorf(p, "exactly one of %s must be set, found %d", strings.Join(r.ExactlyOne, ", "), n)
		}
	}
	if len(r.AtMostOne) > 0 {
		if n := countPresent(v, r.AtMostOne); n > 1 {
			w.errorf(p, "at most one of %s may be set", strings.Join(r.AtMostOne, ", "))
		}
	}
	if r.LessOrEqual[0] != "" {
		lo, lok := asInt(v[r.LessOrEqual[0]])
		hi, hok := asInt(v[r.LessOrEqual[1]])
		if lok && hok && lo > hi {
			w.errorf(p.child(r.LessOrEqual[0]), "must not exceed %s (%d > %d)", r.LessOrEqual[1], lo, hi)
		}
	}
}

func (w *walker) unknown(p Path, v map[string]any, o *schema.Object) {
	var extra []string
	for k := range v {
		if o.Field(k) == nil {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		w.warnf(p.child(k), "unknown field")
	}
}

func (w *walker) match(p Path, pattern, s string) bool {
	re, ok := w.patterns[pattern]
	if !ok {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			w.errorf(p, "schema pattern %q does not compile: %v", pattern, err)
			re = nil
		}
		w.patterns[pattern] = re
	}
	if re == nil {
		return true
	}
	return re.MatchString(s)
}

func present(v map[string]any, name string) bool {
	val, ok := v[name]
	return ok && val != nil
}

func countPresent(v map[string]any, names []string) int {
	n := 0
	for _, name := range names {
		if present(v, name) {
			n++
		}
	}
	return n
}

func contains(list []string, s string) bool {
	for _, it := range list {
		if it == s {
			return true
		}
	}
	return false
}
