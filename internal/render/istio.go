package render

import (
	"github.com/goldenchart/goldengen/internal/names"
)

// Mesh objects render as plain mappings: the route and server stanzas are
// istio's own schema and pass through untouched, while entry keys are
// swapped for the names the referenced resources actually render under.

const istioAPIVersion = "networking.istio.io/v1beta1"

func (c *renderContext) gateway(key string, entry map[string]any) (Manifest, error) {
	name := names.Resource(c.baseName, key)
	spec := map[string]any{}
	copyFields(spec, entry, "selector", "servers")
	return Manifest{Kind: "Gateway", Name: name, Object: c.istioObject("Gateway", name, key, entry, spec)}, nil
}

func (c *renderContext) virtualService(key string, entry map[string]any) (Manifest, error) {
	name := names.Resource(c.baseName, key)
	spec := map[string]any{}
	copyFields(spec, entry, "hosts", "exportTo", "http", "tcp", "tls")
	if raw, ok := entry["gateways"].([]any); ok {
		refs := make([]any, len(raw))
		for i, r := range raw {
			if s, ok := r.(string); ok && s != "mesh" {
				refs[i] = names.Resource(c.baseName, s)
			} else {
				refs[i] = r
			}
		}
		spec["gateways"] = refs
	}
	return Manifest{Kind: "VirtualService", Name: name, Object: c.istioObject("VirtualService", name, key, entry, spec)}, nil
}

func (c *renderContext) destinationRule(key string, entry map[string]any) (Manifest, error) {
	name := names.Resource(c.baseName, key)
	spec := map[string]any{}
	copyFields(spec, entry, "trafficPolicy", "subsets", "exportTo")
	if host, ok := entry["host"].(string); ok && host != "" {
		spec["host"] = names.Resource(c.baseName, host)
	}
	return Manifest{Kind: "DestinationRule", Name: name, Object: c.istioObject("DestinationRule", name, key, entry, spec)}, nil
}

func (c *renderContext) istioObject(kind, name, component string, entry map[string]any, spec map[string]any) map[string]any {
	return map[string]any{
		"apiVersion": istioAPIVersion,
		"kind":       kind,
		"metadata":   c.metaMap(name, component, toStringMap(entry["labels"]), toStringMap(entry["annotations"])),
		"spec":       spec,
	}
}

func copyFields(dst, src map[string]any, fields ...string) {
	for _, f := range fields {
		if v, ok := src[f]; ok && v != nil {
			dst[f] = v
		}
	}
}

func toStringMap(raw any) map[string]string {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
