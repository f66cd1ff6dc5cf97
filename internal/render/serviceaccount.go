package render

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func (c *renderContext) serviceAccount(name, component string, annotations map[string]string, automount *bool) Manifest {
	sa := corev1.ServiceAccount{
		TypeMeta:                     metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta:                   c.objectMeta(name, component, nil, annotations),
		AutomountServiceAccountToken: automount,
	}
	return Manifest{Kind: "ServiceAccount", Name: name, Object: sa}
}
