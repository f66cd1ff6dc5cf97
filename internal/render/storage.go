package render

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/goldenchart/goldengen/internal/names"
)

type configMapValues struct {
	Data       map[string]string `json:"data"`
	BinaryData map[string][]byte `json:"binaryData"`
	metaValues
}

func (c *renderContext) configMap(key string, entry map[string]any) (Manifest, error) {
	var v configMapValues
	if err := decode(entry, &v); err != nil {
		return Manifest{}, fmt.Errorf("configMaps[%s]: %w", key, err)
	}
	name := names.Resource(c.baseName, key)
	cm := corev1.ConfigMap{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: c.objectMeta(name, key, v.Labels, v.Annotations),
		Data:       v.Data,
		BinaryData: v.BinaryData,
	}
	return Manifest{Kind: "ConfigMap", Name: name, Object: cm}, nil
}

type secretValues struct {
	Type       string            `json:"type"`
	Data       map[string][]byte `json:"data"`
	StringData map[string]string `json:"stringData"`
	metaValues
}

func (c *renderContext) secret(key string, entry map[string]any) (Manifest, error) {
	var v secretValues
	if err := decode(entry, &v); err != nil {
		return Manifest{}, fmt.Errorf("secrets[%s]: %w", key, err)
	}
	name := names.Resource(c.baseName, key)
	typ := corev1.SecretType(v.Type)
	if typ == "" {
		typ = corev1.SecretTypeOpaque
	}
	sec := corev1.Secret{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: c.objectMeta(name, key, v.Labels, v.Annotations),
		Type:       typ,
		Data:       v.Data,
		StringData: v.StringData,
	}
	return Manifest{Kind: "Secret", Name: name, Object: sec}, nil
}

type pvcValues struct {
	AccessModes      []corev1.PersistentVolumeAccessMode `json:"accessModes"`
	Resources        corev1.VolumeResourceRequirements   `json:"resources"`
	StorageClassName *string                             `json:"storageClassName"`
	Selector         *metav1.LabelSelector               `json:"selector"`
	VolumeName       string                              `json:"volumeName"`
	metaValues
}

func (c *renderContext) persistentVolumeClaim(key string, entry map[string]any) (Manifest, error) {
	var v pvcValues
	if err := decode(entry, &v); err != nil {
		return Manifest{}, fmt.Errorf("persistentVolumeClaims[%s]: %w", key, err)
	}
	name := names.Resource(c.baseName, key)
	pvc := corev1.PersistentVolumeClaim{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "PersistentVolumeClaim"},
		ObjectMeta: c.objectMeta(name, key, v.Labels, v.Annotations),
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes:      v.AccessModes,
			Resources:        v.Resources,
			StorageClassName: v.StorageClassName,
			Selector:         v.Selector,
			VolumeName:       v.VolumeName,
		},
	}
	return Manifest{Kind: "PersistentVolumeClaim", Name: name, Object: pvc}, nil
}
