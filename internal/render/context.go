package render

import (
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/goldenchart/goldengen/internal/resolve"
)

// renderContext carries the release-wide data every renderer needs: derived
// names, global metadata, pull secrets, and the shared service account.
type renderContext struct {
	baseName    string
	nameLabel   string
	instance    string
	namespace   string
	global      globalValues
	pullSecrets []corev1.LocalObjectReference
	accountName string
	rootAccount *Manifest
}

type globalValues struct {
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
}

type serviceAccountValues struct {
	Create                       *bool             `json:"create"`
	Name                         string            `json:"name"`
	Annotations                  map[string]string `json:"annotations"`
	AutomountServiceAccountToken *bool             `json:"automountServiceAccountToken"`
}

func newContext(res *resolve.Resolved) (*renderContext, error) {
	nameLabel := stringValue(res.Values, "nameOverride")
	if nameLabel == "" {
		nameLabel = res.ChartName
	}
	c := &renderContext{
		baseName:  res.BaseName,
		nameLabel: nameLabel,
		instance:  res.Release.Name,
		namespace: res.Namespace,
	}
	if g, ok := res.Values["global"].(map[string]any); ok {
		if err := decode(g, &c.global); err != nil {
			return nil, fmt.Errorf("global: %w", err)
		}
	}
	if raw, ok := res.Values["imagePullSecrets"]; ok {
		if err := decode(raw, &c.pullSecrets); err != nil {
			return nil, fmt.Errorf("imagePullSecrets: %w", err)
		}
	}

	// One service account per release, shared by all workloads, unless the
	// values opt out or point at an existing one.
	var sa serviceAccountValues
	if raw, ok := res.Values["serviceAccount"].(map[string]any); ok {
		if err := decode(raw, &sa); err != nil {
			return nil, fmt.Errorf("serviceAccount: %w", err)
		}
	}
	name := sa.Name
	if name == "" {
		name = res.BaseName
	}
	switch {
	case sa.Create == nil || *sa.Create:
		m := c.serviceAccount(name, "", sa.Annotations, sa.AutomountServiceAccountToken)
		c.rootAccount = &m
		c.accountName = name
	case sa.Name != "":
		c.accountName = sa.Name
	}
	return c, nil
}

// decode copies a values subtree into a typed struct through JSON. The
// subtree was already validated, so leftover unknown fields just drop.
func decode(v any, into any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}

func stringValue(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
