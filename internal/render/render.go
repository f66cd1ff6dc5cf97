// Package render projects a resolved values document into Kubernetes
// manifests. Renderers consume merged, validated data only; nothing here
// rejects input. Output order is fixed: kinds follow the install order helm
// uses, entries keep the order the values file wrote them in, so the same
// document always renders the same stream.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"

	"github.com/goldenchart/goldengen/internal/resolve"
	"github.com/goldenchart/goldengen/internal/schema"
)

// Manifest is one rendered object. Object is a typed API object, or a
// plain mapping for mesh resources and passthroughs.
type Manifest struct {
	Kind   string
	Name   string
	Object any
}

// Filename names the output file for one manifest.
func Filename(m Manifest) string {
	if m.Name == "" || m.Kind == "" {
		return "extra.yaml"
	}
	return m.Name + "-" + strings.ToLower(m.Kind) + ".yaml"
}

// RenderAll renders every enabled entry of the document.
func RenderAll(res *resolve.Resolved) ([]Manifest, error) {
	c, err := newContext(res)
	if err != nil {
		return nil, err
	}
	var out []Manifest
	if c.rootAccount != nil {
		out = append(out, *c.rootAccount)
	}
	if err := renderKind(&out, res, schema.KindSecrets, c.secret); err != nil {
		return nil, err
	}
	if err := renderKind(&out, res, schema.KindConfigMaps, c.configMap); err != nil {
		return nil, err
	}
	if err := renderKind(&out, res, schema.KindPVCs, c.persistentVolumeClaim); err != nil {
		return nil, err
	}
	if err := renderKind(&out, res, schema.KindServices, c.service); err != nil {
		return nil, err
	}

	var autoscalers []Manifest
	deployments := res.Kind(schema.KindDeployments)
	for _, key := range deployments.Keys {
		entry := deployments.Entries[key]
		if !enabled(entry) {
			continue
		}
		m, hpa, err := c.deployment(key, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		if hpa != nil {
			autoscalers = append(autoscalers, *hpa)
		}
	}
	out = append(out, autoscalers...)

	if err := renderKindMulti(&out, res, schema.KindCronJobs, c.cronJob); err != nil {
		return nil, err
	}
	if err := renderKindMulti(&out, res, schema.KindHooks, c.hook); err != nil {
		return nil, err
	}

	if istioEnabled(res.Values) {
		if err := renderKind(&out, res, schema.KindGateways, c.gateway); err != nil {
			return nil, err
		}
		if err := renderKind(&out, res, schema.KindVirtualServices, c.virtualService); err != nil {
			return nil, err
		}
		if err := renderKind(&out, res, schema.KindDestinationRules, c.destinationRule); err != nil {
			return nil, err
		}
	}

	out = append(out, extraResources(res.Values)...)
	return out, nil
}

func renderKind(out *[]Manifest, res *resolve.Resolved, k schema.Kind, fn func(string, map[string]any) (Manifest, error)) error {
	rm := res.Kind(k)
	for _, key := range rm.Keys {
		entry := rm.Entries[key]
		if !enabled(entry) {
			continue
		}
		m, err := fn(key, entry)
		if err != nil {
			return err
		}
		*out = append(*out, m)
	}
	return nil
}

func renderKindMulti(out *[]Manifest, res *resolve.Resolved, k schema.Kind, fn func(string, map[string]any) ([]Manifest, error)) error {
	rm := res.Kind(k)
	for _, key := range rm.Keys {
		entry := rm.Entries[key]
		if !enabled(entry) {
			continue
		}
		ms, err := fn(key, entry)
		if err != nil {
			return err
		}
		*out = append(*out, ms...)
	}
	return nil
}

// enabled reports whether an entry renders. Absent means enabled.
func enabled(entry map[string]any) bool {
	b, ok := entry["enabled"].(bool)
	return !ok || b
}

// istioEnabled is the one opt-in gate: the mesh block renders nothing
// unless switched on.
func istioEnabled(values map[string]any) bool {
	m, ok := values["istio"].(map[string]any)
	if !ok {
		return false
	}
	b, ok := m["enabled"].(bool)
	return ok && b
}

// extraResources passes raw manifests through untouched.
func extraResources(values map[string]any) []Manifest {
	raw, ok := values["extraResources"].([]any)
	if !ok {
		return nil
	}
	out := make([]Manifest, 0, len(raw))
	for _, item := range raw {
		m := Manifest{Object: item}
		if obj, ok := item.(map[string]any); ok {
			m.Kind, _ = obj["kind"].(string)
			if meta, ok := obj["metadata"].(map[string]any); ok {
				m.Name, _ = meta["name"].(string)
			}
		}
		out = append(out, m)
	}
	return out
}

// Encode writes manifests as one multi-document YAML stream.
func Encode(w io.Writer, manifests []Manifest) error {
	for _, m := range manifests {
		data, err := marshal(m.Object)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", m.Kind, m.Name, err)
		}
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// marshal picks the encoder by shape: raw mappings go through yaml.v3 so
// their scalars survive untouched, typed API objects through sigs yaml,
// which honors their json tags.
func marshal(obj any) ([]byte, error) {
	switch obj.(type) {
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := yamlv3.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(obj); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(obj)
}
