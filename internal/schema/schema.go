// Package schema describes the golden chart values document as plain data: a
// tree of field declarations with types, required flags, and constraints. One
// generic interpreter (internal/validate) walks any tree against it, and the
// same data serializes to a JSON Schema document for editor tooling, so the
// rules live in exactly one place instead of being scattered across entity
// types.
package schema

import "strings"

// Type classifies the values a field accepts.
type Type int

const (
	// TypeAny accepts anything and is never descended into.
	TypeAny Type = iota
	TypeString
	TypeInt
	TypeBool
	// TypeMap is a mapping with free keys; Elem constrains the values.
	TypeMap
	// TypeSequence is a list; Elem constrains the elements.
	TypeSequence
	// TypeObject is a mapping with declared fields.
	TypeObject
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeBool:
		return "boolean"
	case TypeMap:
		return "mapping"
	case TypeSequence:
		return "sequence"
	case TypeObject:
		return "object"
	}
	return "any"
}

// Formats name semantic checks applied to a field beyond its basic type.
const (
	FormatCron             = "cron"               // standard five-field cron expression
	FormatTimeZone         = "timezone"           // IANA time zone name
	FormatQuantity         = "quantity"           // Kubernetes resource quantity ("100m", "1Gi")
	FormatDNSLabel         = "dns-label"          // RFC 1123 label, at most 63 characters
	FormatLabels           = "labels"             // mapping of valid label keys to label values
	FormatHookTypes        = "hook-types"         // comma-separated Helm hook phases
	FormatHookDeletePolicy = "hook-delete-policy" // comma-separated Helm hook delete policies
	FormatIntegerString    = "integer-string"     // string holding a base-10 integer
)

// Field declares one named value inside an Object.
type Field struct {
	Name     string
	Type     Type
	Required bool
	Doc      string

	// Constraints. Zero values mean unconstrained.
	Enum       []string
	Pattern    string
	Format     string
	KeyFormat  string // format applied to the keys of a TypeMap field
	Min        *int
	Max        *int
	Deprecated string // non-empty marks the field deprecated; the text is the replacement hint

	Elem   *Field  // value schema for TypeMap and TypeSequence
	Object *Object // definition for TypeObject
}

// Object is a named set of fields in declaration order, plus the cross-field
// rules that cannot be expressed on a single field.
type Object struct {
	Name   string
	Doc    string
	Fields []*Field
	Rules  []Rule
}

// Field returns the declared field with the given name, or nil.
func (o *Object) Field(name string) *Field {
	for _, f := range o.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Rule is a cross-field constraint evaluated against one object value. When
// names a boolean field gating the rule: the rule applies only if that field
// is present and true. The remaining clauses are independent; empty clauses
// are skipped.
type Rule struct {
	When        string
	Require     []string  // every named field must be present
	ExactlyOne  []string  // exactly one of the named fields must be present
	AtMostOne   []string  // at most one of the named fields may be present
	LessOrEqual [2]string // both integer fields, when present, must satisfy first <= second
}

// HookTypes lists the Helm hook phases a hook entry's types field accepts.
func HookTypes() []string {
	return []string{
		"pre-install", "post-install",
		"pre-upgrade", "post-upgrade",
		"pre-delete", "post-delete",
		"pre-rollback", "post-rollback",
	}
}

// HookDeletePolicies lists the accepted hook delete policies.
func HookDeletePolicies() []string {
	return []string{"before-hook-creation", "hook-succeeded", "hook-failed"}
}

// Kind identifies one resource map in the values document. Top-level kinds
// sit directly under the root; the istio kinds are nested one level down and
// addressed with a dotted path.
type Kind string

const (
	KindDeployments      Kind = "deployments"
	KindServices         Kind = "services"
	KindConfigMaps       Kind = "configMaps"
	KindSecrets          Kind = "secrets"
	KindPVCs             Kind = "persistentVolumeClaims"
	KindCronJobs         Kind = "cronjobs"
	KindHooks            Kind = "hooks"
	KindGateways         Kind = "istio.gateways"
	KindVirtualServices  Kind = "istio.virtualServices"
	KindDestinationRules Kind = "istio.destinationRules"
)

// Kinds lists every resource map in canonical order. Rendering and reports
// follow this order; entries within one map keep document order.
func Kinds() []Kind {
	return []Kind{
		KindDeployments,
		KindServices,
		KindConfigMaps,
		KindSecrets,
		KindPVCs,
		KindCronJobs,
		KindHooks,
		KindGateways,
		KindVirtualServices,
		KindDestinationRules,
	}
}

// Path returns the field steps addressing the kind's map from the root.
func (k Kind) Path() []string { return strings.Split(string(k), ".") }
