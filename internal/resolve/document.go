package resolve

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goldenchart/goldengen/internal/schema"
)

// StructuralError reports input whose shape cannot be traversed at all: a
// document, resource map, or entry that is not a mapping. Anything less
// broken is reported as validation issues instead.
type StructuralError struct {
	Path    string
	Message string
}

func (e *StructuralError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Document is one parsed values file plus the key order its resource maps
// were written in. Rendering follows that order, so it is captured here
// before decoding flattens it away.
type Document struct {
	Tree  map[string]any
	order map[schema.Kind][]string
}

// Order returns the kind's entry keys in input order.
func (d *Document) Order(k schema.Kind) []string { return d.order[k] }

// Load reads and parses one values file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a values document and records resource map key order. An
// empty or all-null document parses to an empty tree. A resource map or
// entry that is not a mapping is a *StructuralError.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	doc := &Document{Tree: map[string]any{}, order: map[schema.Kind][]string{}}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	top := deref(root.Content[0])
	if isNull(top) {
		return doc, nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, &StructuralError{Message: "document is not a mapping"}
	}
	for _, k := range schema.Kinds() {
		keys, err := orderedKeys(top, k)
		if err != nil {
			return nil, err
		}
		if keys != nil {
			doc.order[k] = keys
		}
	}
	if err := top.Decode(&doc.Tree); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	return doc, nil
}

// orderedKeys walks one kind's path through the node tree and returns its
// entry keys in document order, nil when the map is absent.
func orderedKeys(top *yaml.Node, k schema.Kind) ([]string, error) {
	n := top
	path := k.Path()
	for i, step := range path {
		n = mappingValue(n, step)
		if n == nil || isNull(n) {
			return nil, nil
		}
		if n.Kind != yaml.MappingNode {
			return nil, &StructuralError{
				Path:    strings.Join(path[:i+1], "."),
				Message: "expected a mapping of named entries, got " + nodeKindName(n),
			}
		}
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := deref(n.Content[i+1])
		// A bare key is shorthand for an all-defaults entry.
		if !isNull(val) && val.Kind != yaml.MappingNode {
			return nil, &StructuralError{
				Path:    strings.Join(path, ".") + "." + key,
				Message: "expected a mapping, got " + nodeKindName(val),
			}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return deref(m.Content[i+1])
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func nodeKindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return fmt.Sprintf("scalar %q", n.Value)
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	}
	return "an unknown node"
}
