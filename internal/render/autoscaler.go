package render

import (
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type autoscalingValues struct {
	Enabled     bool                                           `json:"enabled"`
	MinReplicas *int32                                         `json:"minReplicas"`
	MaxReplicas int32                                          `json:"maxReplicas"`
	Metrics     []autoscalingv2.MetricSpec                     `json:"metrics"`
	Behavior    *autoscalingv2.HorizontalPodAutoscalerBehavior `json:"behavior"`
	Labels      map[string]string                              `json:"labels"`
	Annotations map[string]string                              `json:"annotations"`
}

// autoscaler renders the HPA for one autoscaled deployment. It shares the
// deployment's name, so the pairing is visible in listings. Without
// explicit metrics the API default applies.
func (c *renderContext) autoscaler(key, deploymentName string, v *autoscalingValues) Manifest {
	hpa := autoscalingv2.HorizontalPodAutoscaler{
		TypeMeta:   metav1.TypeMeta{APIVersion: "autoscaling/v2", Kind: "HorizontalPodAutoscaler"},
		ObjectMeta: c.objectMeta(deploymentName, key, v.Labels, v.Annotations),
		Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Name:       deploymentName,
			},
			MinReplicas: v.MinReplicas,
			MaxReplicas: v.MaxReplicas,
			Metrics:     v.Metrics,
			Behavior:    v.Behavior,
		},
	}
	return Manifest{Kind: "HorizontalPodAutoscaler", Name: deploymentName, Object: hpa}
}
