package schema

import (
	"encoding/json"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// Export serializes the golden chart schema as a JSON Schema draft-07
// document for editors and CI linters. Types, required fields, enums,
// patterns, and bounds carry over; cross-field rules stay engine-side
// (draft-07 cannot compare field values), except ungated at-most-one pairs,
// which become a "not both required" clause.
func Export() ([]byte, error) {
	return ExportObject(Document(), "Golden Helm Chart Values")
}

// ExportObject serializes one object schema under the given title.
func ExportObject(o *Object, title string) ([]byte, error) {
	root := objectSchema(o)
	root["$schema"] = "http://json-schema.org/draft-07/schema#"
	root["title"] = title
	b, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func objectSchema(o *Object) map[string]any {
	props := make(map[string]any, len(o.Fields))
	var required []string
	for _, f := range o.Fields {
		props[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if o.Doc != "" {
		s["description"] = o.Doc
	}
	if len(required) > 0 {
		s["required"] = required
	}
	for _, r := range o.Rules {
		if r.When == "" && len(r.AtMostOne) == 2 {
			s["not"] = map[string]any{"required": r.AtMostOne}
		}
	}
	return s
}

func fieldSchema(f *Field) map[string]any {
	var s map[string]any
	switch f.Type {
	case TypeString:
		s = map[string]any{"type": "string"}
	case TypeInt:
		s = map[string]any{"type": "integer"}
	case TypeBool:
		s = map[string]any{"type": "boolean"}
	case TypeMap:
		s = map[string]any{"type": "object"}
		if f.Elem != nil {
			s["additionalProperties"] = fieldSchema(f.Elem)
		}
	case TypeSequence:
		s = map[string]any{"type": "array"}
		if f.Elem != nil {
			s["items"] = fieldSchema(f.Elem)
		}
	case TypeObject:
		s = objectSchema(f.Object)
	default:
		// TypeAny: the empty schema accepts anything.
		s = map[string]any{}
	}

	if f.Doc != "" {
		s["description"] = f.Doc
	}
	if len(f.Enum) > 0 {
		s["enum"] = f.Enum
	}
	if f.Pattern != "" {
		s["pattern"] = f.Pattern
	}
	if f.Min != nil {
		s["minimum"] = *f.Min
	}
	if f.Max != nil {
		s["maximum"] = *f.Max
	}

	switch f.Format {
	case FormatDNSLabel:
		// Mirrors apimachinery's unexported dns1123LabelFmt.
		s["pattern"] = "^[a-z0-9]([-a-z0-9]*[a-z0-9])?$"
		s["maxLength"] = validation.DNS1123LabelMaxLength
	case FormatIntegerString:
		s["pattern"] = `^-?\d+$`
	case FormatHookTypes:
		s["pattern"] = listPattern(HookTypes())
	case FormatHookDeletePolicy:
		s["pattern"] = listPattern(HookDeletePolicies())
	case FormatCron, FormatTimeZone, FormatQuantity:
		// Named formats draft-07 validators do not know are annotations only.
		s["format"] = f.Format
	}
	return s
}

// listPattern builds the pattern for a comma-separated list drawn from the
// given tokens.
func listPattern(tokens []string) string {
	alt := "(" + strings.Join(tokens, "|") + ")"
	return "^" + alt + "(," + alt + ")*$"
}
