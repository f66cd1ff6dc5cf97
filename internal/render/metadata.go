package render

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const managedBy = "goldengen"

// standardLabels are stamped on every rendered object.
func (c *renderContext) standardLabels(component string) map[string]string {
	l := map[string]string{
		"app.kubernetes.io/name":       c.nameLabel,
		"app.kubernetes.io/instance":   c.instance,
		"app.kubernetes.io/managed-by": managedBy,
	}
	if component != "" {
		l["app.kubernetes.io/component"] = component
	}
	return l
}

// selectorLabels identify one workload's pods. Selectors are immutable
// once applied, so this set stays minimal and stable.
func (c *renderContext) selectorLabels(component string) map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":      c.nameLabel,
		"app.kubernetes.io/instance":  c.instance,
		"app.kubernetes.io/component": component,
	}
}

// objectMeta assembles one object's metadata: standard labels under global
// labels under the entry's own, global annotations under the entry's.
func (c *renderContext) objectMeta(name, component string, labels, annotations map[string]string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:        name,
		Namespace:   c.namespace,
		Labels:      mergeStringMaps(c.standardLabels(component), c.global.Labels, labels),
		Annotations: mergeStringMaps(c.global.Annotations, annotations),
	}
}

// metaMap is objectMeta for objects rendered as plain mappings.
func (c *renderContext) metaMap(name, component string, labels, annotations map[string]string) map[string]any {
	meta := map[string]any{
		"name":   name,
		"labels": mergeStringMaps(c.standardLabels(component), c.global.Labels, labels),
	}
	if c.namespace != "" {
		meta["namespace"] = c.namespace
	}
	if ann := mergeStringMaps(c.global.Annotations, annotations); ann != nil {
		meta["annotations"] = ann
	}
	return meta
}

// mergeStringMaps overlays left to right; later maps win. Returns nil when
// empty so metadata fields stay omitted.
func mergeStringMaps(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
