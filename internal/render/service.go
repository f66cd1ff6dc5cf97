package render

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/goldenchart/goldengen/internal/names"
)

type serviceValues struct {
	Type                     corev1.ServiceType                  `json:"type"`
	TargetDeployment         string                              `json:"targetDeployment"`
	Ports                    []servicePortValues                 `json:"ports"`
	ClusterIP                string                              `json:"clusterIP"`
	LoadBalancerIP           string                              `json:"loadBalancerIP"`
	LoadBalancerSourceRanges []string                            `json:"loadBalancerSourceRanges"`
	ExternalTrafficPolicy    corev1.ServiceExternalTrafficPolicy `json:"externalTrafficPolicy"`
	SessionAffinity          corev1.ServiceAffinity              `json:"sessionAffinity"`
	SessionAffinityConfig    *corev1.SessionAffinityConfig       `json:"sessionAffinityConfig"`
	ExtraSelectorLabels      map[string]string                   `json:"extraSelectorLabels"`
	NodePorts                map[string]int32                    `json:"nodePorts"`
	metaValues
}

type servicePortValues struct {
	Name       string             `json:"name"`
	Port       int32              `json:"port"`
	TargetPort intstr.IntOrString `json:"targetPort"`
	Protocol   corev1.Protocol    `json:"protocol"`
}

// service renders one Service. Its selector targets the deployment named
// by targetDeployment, or the deployment sharing the service's own key.
func (c *renderContext) service(key string, entry map[string]any) (Manifest, error) {
	var v serviceValues
	if err := decode(entry, &v); err != nil {
		return Manifest{}, fmt.Errorf("services[%s]: %w", key, err)
	}
	name := names.Resource(c.baseName, key)
	component := v.TargetDeployment
	if component == "" {
		component = key
	}

	ports := make([]corev1.ServicePort, 0, len(v.Ports))
	for _, p := range v.Ports {
		sp := corev1.ServicePort{
			Name:       p.Name,
			Port:       p.Port,
			TargetPort: p.TargetPort,
			Protocol:   p.Protocol,
		}
		if sp.TargetPort == (intstr.IntOrString{}) {
			sp.TargetPort = intstr.FromInt32(p.Port)
		}
		if np, ok := v.NodePorts[p.Name]; ok {
			sp.NodePort = np
		}
		ports = append(ports, sp)
	}

	svc := corev1.Service{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: c.objectMeta(name, component, v.Labels, v.Annotations),
		Spec: corev1.ServiceSpec{
			Type:                     v.Type,
			Ports:                    ports,
			ClusterIP:                v.ClusterIP,
			LoadBalancerIP:           v.LoadBalancerIP,
			LoadBalancerSourceRanges: v.LoadBalancerSourceRanges,
			ExternalTrafficPolicy:    v.ExternalTrafficPolicy,
			SessionAffinity:          v.SessionAffinity,
			SessionAffinityConfig:    v.SessionAffinityConfig,
		},
	}
	if v.Type != corev1.ServiceTypeExternalName {
		svc.Spec.Selector = mergeStringMaps(c.selectorLabels(component), v.ExtraSelectorLabels)
	}
	return Manifest{Kind: "Service", Name: name, Object: svc}, nil
}
