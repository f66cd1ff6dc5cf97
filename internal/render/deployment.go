package render

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/goldenchart/goldengen/internal/names"
)

type deploymentValues struct {
	Image                     imageValues                       `json:"image"`
	Replicas                  *int32                            `json:"replicas"`
	Autoscaling               *autoscalingValues                `json:"autoscaling"`
	Strategy                  *appsv1.DeploymentStrategy        `json:"strategy"`
	Command                   []string                          `json:"command"`
	Args                      []string                          `json:"args"`
	Ports                     []corev1.ContainerPort            `json:"ports"`
	Env                       []corev1.EnvVar                   `json:"env"`
	EnvFrom                   []corev1.EnvFromSource            `json:"envFrom"`
	Resources                 corev1.ResourceRequirements       `json:"resources"`
	LivenessProbe             *probeValues                      `json:"livenessProbe"`
	ReadinessProbe            *probeValues                      `json:"readinessProbe"`
	StartupProbe              *probeValues                      `json:"startupProbe"`
	Lifecycle                 *corev1.Lifecycle                 `json:"lifecycle"`
	VolumeMounts              []corev1.VolumeMount              `json:"volumeMounts"`
	Volumes                   []corev1.Volume                   `json:"volumes"`
	InitContainers            []corev1.Container                `json:"initContainers"`
	SidecarContainers         []corev1.Container                `json:"sidecarContainers"`
	NodeSelector              map[string]string                 `json:"nodeSelector"`
	Tolerations               []corev1.Toleration               `json:"tolerations"`
	Affinity                  *corev1.Affinity                  `json:"affinity"`
	TopologySpreadConstraints []corev1.TopologySpreadConstraint `json:"topologySpreadConstraints"`
	metaValues
}

// deployment renders one Deployment and, when the entry autoscales, its
// HorizontalPodAutoscaler.
func (c *renderContext) deployment(key string, entry map[string]any) (Manifest, *Manifest, error) {
	var v deploymentValues
	if err := decode(entry, &v); err != nil {
		return Manifest{}, nil, fmt.Errorf("deployments[%s]: %w", key, err)
	}
	podSC, err := podSecurity(entry["securityContext"])
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("deployments[%s]: securityContext: %w", key, err)
	}
	ctrSC, err := containerSecurity(entry["securityContext"])
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("deployments[%s]: securityContext: %w", key, err)
	}

	name := names.Resource(c.baseName, key)
	selector := c.selectorLabels(key)

	container := corev1.Container{
		Name:            key,
		Image:           v.Image.ref(),
		ImagePullPolicy: v.Image.PullPolicy,
		Command:         v.Command,
		Args:            v.Args,
		Ports:           v.Ports,
		Env:             v.Env,
		EnvFrom:         v.EnvFrom,
		Resources:       v.Resources,
		VolumeMounts:    v.VolumeMounts,
		Lifecycle:       v.Lifecycle,
		LivenessProbe:   v.LivenessProbe.render(),
		ReadinessProbe:  v.ReadinessProbe.render(),
		StartupProbe:    v.StartupProbe.render(),
		SecurityContext: ctrSC,
	}

	replicas := v.Replicas
	autoscaled := v.Autoscaling != nil && v.Autoscaling.Enabled
	if autoscaled {
		// The autoscaler owns the replica count.
		replicas = nil
	}

	dep := appsv1.Deployment{
		TypeMeta:   metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: c.objectMeta(name, key, v.Labels, v.Annotations),
		Spec: appsv1.DeploymentSpec{
			Replicas: replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels:      mergeStringMaps(selector, c.global.Labels, v.PodLabels),
					Annotations: mergeStringMaps(v.PodAnnotations),
				},
				Spec: corev1.PodSpec{
					Containers:                append([]corev1.Container{container}, v.SidecarContainers...),
					InitContainers:            v.InitContainers,
					Volumes:                   v.Volumes,
					ImagePullSecrets:          c.pullSecrets,
					ServiceAccountName:        c.accountName,
					SecurityContext:           podSC,
					NodeSelector:              v.NodeSelector,
					Tolerations:               v.Tolerations,
					Affinity:                  v.Affinity,
					TopologySpreadConstraints: v.TopologySpreadConstraints,
				},
			},
		},
	}
	if v.Strategy != nil {
		dep.Spec.Strategy = *v.Strategy
	}

	manifest := Manifest{Kind: "Deployment", Name: name, Object: dep}
	if !autoscaled {
		return manifest, nil, nil
	}
	hpa := c.autoscaler(key, name, v.Autoscaling)
	return manifest, &hpa, nil
}
