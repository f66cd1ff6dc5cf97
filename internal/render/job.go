package render

import (
	"fmt"
	"strconv"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/goldenchart/goldengen/internal/names"
)

const defaultHookDeletePolicy = "before-hook-creation,hook-succeeded"

// jobValues is the pod surface cronjobs and hooks share.
type jobValues struct {
	Image                    imageValues                 `json:"image"`
	Command                  []string                    `json:"command"`
	Args                     []string                    `json:"args"`
	Env                      []corev1.EnvVar             `json:"env"`
	EnvFrom                  []corev1.EnvFromSource      `json:"envFrom"`
	Resources                corev1.ResourceRequirements `json:"resources"`
	PodSecurityContext       *corev1.PodSecurityContext  `json:"podSecurityContext"`
	ContainerSecurityContext *corev1.SecurityContext     `json:"containerSecurityContext"`
	VolumeMounts             []corev1.VolumeMount        `json:"volumeMounts"`
	Volumes                  []corev1.Volume             `json:"volumes"`
	NodeSelector             map[string]string           `json:"nodeSelector"`
	Tolerations              []corev1.Toleration         `json:"tolerations"`
	Affinity                 *corev1.Affinity            `json:"affinity"`
	ServiceAccount           *serviceAccountRefValues    `json:"serviceAccount"`
	RestartPolicy            corev1.RestartPolicy        `json:"restartPolicy"`
	BackoffLimit             *int32                      `json:"backoffLimit"`
	ActiveDeadlineSeconds    *int64                      `json:"activeDeadlineSeconds"`
	TTLSecondsAfterFinished  *int32                      `json:"ttlSecondsAfterFinished"`
	metaValues
}

type cronJobValues struct {
	Schedule                   string                    `json:"schedule"`
	TimeZone                   *string                   `json:"timeZone"`
	ConcurrencyPolicy          batchv1.ConcurrencyPolicy `json:"concurrencyPolicy"`
	Suspend                    *bool                     `json:"suspend"`
	StartingDeadlineSeconds    *int64                    `json:"startingDeadlineSeconds"`
	FailedJobsHistoryLimit     *int32                    `json:"failedJobsHistoryLimit"`
	SuccessfulJobsHistoryLimit *int32                    `json:"successfulJobsHistoryLimit"`
	Completions                *int32                    `json:"completions"`
	Parallelism                *int32                    `json:"parallelism"`
	jobValues
}

type hookValues struct {
	Types        string `json:"types"`
	Weight       string `json:"weight"`
	DeletePolicy string `json:"deletePolicy"`
	jobValues
}

func (c *renderContext) cronJob(key string, entry map[string]any) ([]Manifest, error) {
	var v cronJobValues
	if err := decode(entry, &v); err != nil {
		return nil, fmt.Errorf("cronjobs[%s]: %w", key, err)
	}
	name := names.Resource(c.baseName, key)
	saName, extra := c.jobAccount(name, key, v.ServiceAccount, nil)

	spec := c.jobSpec(key, &v.jobValues, saName, corev1.RestartPolicyOnFailure)
	spec.Completions = v.Completions
	spec.Parallelism = v.Parallelism

	cj := batchv1.CronJob{
		TypeMeta:   metav1.TypeMeta{APIVersion: "batch/v1", Kind: "CronJob"},
		ObjectMeta: c.objectMeta(name, key, v.Labels, v.Annotations),
		Spec: batchv1.CronJobSpec{
			Schedule:                   v.Schedule,
			TimeZone:                   v.TimeZone,
			ConcurrencyPolicy:          v.ConcurrencyPolicy,
			Suspend:                    v.Suspend,
			StartingDeadlineSeconds:    v.StartingDeadlineSeconds,
			FailedJobsHistoryLimit:     v.FailedJobsHistoryLimit,
			SuccessfulJobsHistoryLimit: v.SuccessfulJobsHistoryLimit,
			JobTemplate:                batchv1.JobTemplateSpec{Spec: spec},
		},
	}
	var out []Manifest
	if extra != nil {
		out = append(out, *extra)
	}
	return append(out, Manifest{Kind: "CronJob", Name: name, Object: cj}), nil
}

// hook renders one helm hook Job. A dedicated service account, when asked
// for, becomes a hook itself one weight earlier so it exists before the
// job starts.
func (c *renderContext) hook(key string, entry map[string]any) ([]Manifest, error) {
	var v hookValues
	if err := decode(entry, &v); err != nil {
		return nil, fmt.Errorf("hooks[%s]: %w", key, err)
	}
	name := names.Hook(c.baseName, key)

	policy := v.DeletePolicy
	if policy == "" {
		policy = defaultHookDeletePolicy
	}
	hookAnn := map[string]string{
		"helm.sh/hook":               v.Types,
		"helm.sh/hook-delete-policy": policy,
	}
	if v.Weight != "" {
		hookAnn["helm.sh/hook-weight"] = v.Weight
	}

	weight, _ := strconv.Atoi(v.Weight)
	saAnn := map[string]string{
		"helm.sh/hook":               v.Types,
		"helm.sh/hook-weight":        strconv.Itoa(weight - 1),
		"helm.sh/hook-delete-policy": "before-hook-creation",
	}
	saName, extra := c.jobAccount(name, key, v.ServiceAccount, saAnn)

	job := batchv1.Job{
		TypeMeta:   metav1.TypeMeta{APIVersion: "batch/v1", Kind: "Job"},
		ObjectMeta: c.objectMeta(name, key, v.Labels, mergeStringMaps(v.Annotations, hookAnn)),
		Spec:       c.jobSpec(key, &v.jobValues, saName, corev1.RestartPolicyNever),
	}
	var out []Manifest
	if extra != nil {
		out = append(out, *extra)
	}
	return append(out, Manifest{Kind: "Job", Name: name, Object: job}), nil
}

func (c *renderContext) jobSpec(key string, v *jobValues, accountName string, defaultRestart corev1.RestartPolicy) batchv1.JobSpec {
	restart := v.RestartPolicy
	if restart == "" {
		restart = defaultRestart
	}
	container := corev1.Container{
		Name:            key,
		Image:           v.Image.ref(),
		ImagePullPolicy: v.Image.PullPolicy,
		Command:         v.Command,
		Args:            v.Args,
		Env:             v.Env,
		EnvFrom:         v.EnvFrom,
		Resources:       v.Resources,
		VolumeMounts:    v.VolumeMounts,
		SecurityContext: v.ContainerSecurityContext,
	}
	return batchv1.JobSpec{
		BackoffLimit:            v.BackoffLimit,
		ActiveDeadlineSeconds:   v.ActiveDeadlineSeconds,
		TTLSecondsAfterFinished: v.TTLSecondsAfterFinished,
		Template: corev1.PodTemplateSpec{
			ObjectMeta: metav1.ObjectMeta{
				Labels:      mergeStringMaps(c.selectorLabels(key), c.global.Labels, v.PodLabels),
				Annotations: mergeStringMaps(v.PodAnnotations),
			},
			Spec: corev1.PodSpec{
				RestartPolicy:      restart,
				Containers:         []corev1.Container{container},
				Volumes:            v.Volumes,
				ImagePullSecrets:   c.pullSecrets,
				ServiceAccountName: accountName,
				SecurityContext:    v.PodSecurityContext,
				NodeSelector:       v.NodeSelector,
				Tolerations:        v.Tolerations,
				Affinity:           v.Affinity,
			},
		},
	}
}

// jobAccount picks the service account for a job pod. An explicit name
// wins; create makes a dedicated account named after the job itself;
// otherwise the release account applies.
func (c *renderContext) jobAccount(resourceName, component string, ref *serviceAccountRefValues, annotations map[string]string) (string, *Manifest) {
	switch {
	case ref == nil:
		return c.accountName, nil
	case ref.Name != "":
		return ref.Name, nil
	case ref.Create:
		m := c.serviceAccount(resourceName, component, annotations, nil)
		return resourceName, &m
	}
	return c.accountName, nil
}
