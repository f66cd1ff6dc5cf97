package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	// Time zone names must resolve even on hosts without a tz database.
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/goldenchart/goldengen/internal/schema"
)

var integerString = regexp.MustCompile(`^-?\d+$`)

// formatCheck applies one named string format. Unknown format names are a
// schema authoring bug and are reported rather than ignored.
func (w *walker) formatCheck(p Path, s, format string) {
	switch format {
	case schema.FormatCron:
		if _, err := cron.ParseStandard(s); err != nil {
			w.errorf(p, "invalid cron schedule %q: %v", s, err)
		}
	case schema.FormatTimeZone:
		if _, err := time.LoadLocation(s); err != nil {
			w.errorf(p, "unknown time zone %q", s)
		}
	case schema.FormatQuantity:
		if _, err := resource.ParseQuantity(s); err != nil {
			w.errorf(p, "invalid quantity %q", s)
		}
	case schema.FormatDNSLabel:
		if msgs := validation.IsDNS1123Label(s); len(msgs) > 0 {
			w.errorf(p, "invalid name %q: %s", s, msgs[0])
		}
	case schema.FormatIntegerString:
		if !integerString.MatchString(s) {
			w.errorf(p, "must be an integer string, got %q", s)
		}
	case schema.FormatHookTypes:
		w.tokenCheck(p, s, schema.HookTypes(), "hook type")
	case schema.FormatHookDeletePolicy:
		w.tokenCheck(p, s, schema.HookDeletePolicies(), "hook delete policy")
	default:
		w.errorf(p, "schema format %q is not implemented", format)
	}
}

// tokenCheck validates a comma-separated list against an allowed set. Each
// bad token is its own issue so one pass reports them all.
func (w *walker) tokenCheck(p Path, s string, allowed []string, what string) {
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			w.errorf(p, "empty %s in %q", what, s)
			continue
		}
		if !contains(allowed, tok) {
			w.errorf(p, "unknown %s %q, must be one of %s", what, tok, strings.Join(allowed, "|"))
		}
	}
}

// keyFormatCheck validates a map key. The key's own path is the locus so
// the report points at the offending entry, not the whole map.
func (w *walker) keyFormatCheck(p Path, k, format string) {
	switch format {
	case schema.FormatDNSLabel:
		if msgs := validation.IsDNS1123Label(k); len(msgs) > 0 {
			w.errorf(p, "key %q is not a valid DNS label: %s", k, msgs[0])
		}
	default:
		w.errorf(p, "schema key format %q is not implemented", format)
	}
}

// labelCheck validates one Kubernetes label pair. Keys follow qualified
// name rules (optional prefix/, then a name), values follow label value
// rules. Both halves are checked so a single bad pair can yield two issues.
func (w *walker) labelCheck(p Path, k string, v any) {
	if msgs := validation.IsQualifiedName(k); len(msgs) > 0 {
		w.errorf(p, "invalid label key %q: %s", k, msgs[0])
	}
	s, ok := v.(string)
	if !ok {
		w.errorf(p, "expected string, got %s", describe(v))
		return
	}
	if msgs := validation.IsValidLabelValue(s); len(msgs) > 0 {
		w.errorf(p, "invalid label value %q: %s", s, msgs[0])
	}
}

// asInt widens any integer-shaped scalar. YAML decoding yields int, int64
// or uint64 depending on magnitude, and values that round-trip through
// JSON arrive as float64; an integral float still counts.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}

// describe renders a value for an issue message. Scalars are echoed so the
// reader sees what was actually written; composites are named by shape.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case map[string]any:
		return "a mapping"
	case []any:
		return "a sequence"
	}
	return fmt.Sprintf("%v", v)
}
