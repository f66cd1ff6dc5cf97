package render

import (
	corev1 "k8s.io/api/core/v1"
)

// Shared value shapes the entry renderers decode into. Field names follow
// the values.yaml convention, which is also the Kubernetes JSON convention,
// so most of them decode straight into API types.

type imageValues struct {
	Repository string            `json:"repository"`
	Tag        string            `json:"tag"`
	PullPolicy corev1.PullPolicy `json:"pullPolicy"`
}

// ref builds the container image reference. No tag means the runtime
// default applies.
func (v imageValues) ref() string {
	if v.Repository == "" {
		return ""
	}
	if v.Tag == "" {
		return v.Repository
	}
	return v.Repository + ":" + v.Tag
}

type metaValues struct {
	Labels         map[string]string `json:"labels"`
	Annotations    map[string]string `json:"annotations"`
	PodLabels      map[string]string `json:"podLabels"`
	PodAnnotations map[string]string `json:"podAnnotations"`
}

type probeValues struct {
	Enabled bool `json:"enabled"`
	corev1.Probe
}

// render returns the probe when switched on, nil otherwise.
func (p *probeValues) render() *corev1.Probe {
	if p == nil || !p.Enabled {
		return nil
	}
	return &p.Probe
}

type serviceAccountRefValues struct {
	Create bool   `json:"create"`
	Name   string `json:"name"`
}

// The deployment securityContext block mixes pod and container settings
// the way many charts do. Each side decodes the same mapping into its own
// API type and takes the fields it knows; the rest drop.

func podSecurity(raw any) (*corev1.PodSecurityContext, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, nil
	}
	var sc corev1.PodSecurityContext
	if err := decode(m, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func containerSecurity(raw any) (*corev1.SecurityContext, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, nil
	}
	var sc corev1.SecurityContext
	if err := decode(m, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
