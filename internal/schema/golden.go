package schema

import "k8s.io/utils/ptr"

// Built once; every caller shares the tree and treats it as read-only.
var document = buildDocument()

// Document returns the schema for a complete golden chart values file. The
// shape mirrors the chart's values.yaml: name overrides and global metadata at
// the root, a shared defaults block, one map per resource kind keyed by
// component name, and an istio block carrying its own three maps.
func Document() *Object { return document }

func buildDocument() *Object {
	return &Object{
		Name: "values",
		Doc:  "Golden chart values document.",
		Fields: []*Field{
			str("nameOverride").format(FormatDNSLabel).doc("Replaces the chart name in derived resource names."),
			str("fullnameOverride").format(FormatDNSLabel).doc("Replaces the whole derived base name."),
			str("namespaceOverride").format(FormatDNSLabel).doc("Namespace for all resources instead of the release namespace."),
			seqOf("imagePullSecrets", elemMapStr()).doc("Pull secret references, e.g. [{name: regcred}]."),
			obj("global", globalObj()),
			obj("defaults", defaultsObj()),
			mapObj("deployments", deploymentEntry()).dnsKeys(),
			mapObj("services", serviceEntry()).dnsKeys(),
			mapObj("configMaps", configMapEntry()).dnsKeys(),
			mapObj("secrets", secretEntry()).dnsKeys(),
			mapObj("persistentVolumeClaims", pvcEntry()).dnsKeys(),
			mapObj("cronjobs", cronJobEntry()).dnsKeys(),
			mapObj("hooks", hookEntry()).dnsKeys(),
			obj("istio", istioObj()),
			obj("serviceAccount", serviceAccountObj()),
			seqAny("extraResources").doc("Raw manifests emitted verbatim, never validated."),
		},
	}
}

func globalObj() *Object {
	return &Object{
		Name: "global",
		Fields: []*Field{
			labelsField("labels").doc("Labels stamped on every rendered resource."),
			mapStr("annotations").doc("Annotations stamped on every rendered resource."),
		},
	}
}

// defaultsObj is the shared fallback block. Deployments deep-merge it;
// cronjobs and hooks take whole fields from it when theirs are absent.
func defaultsObj() *Object {
	return &Object{
		Name: "defaults",
		Fields: []*Field{
			obj("image", imageObj()),
			integer("replicas").atLeast(0),
			obj("resources", resourcesObj()),
			obj("securityContext", securityContextObj()),
			mapStr("nodeSelector"),
			seqAny("tolerations"),
			mapAny("affinity"),
		},
	}
}

func deploymentEntry() *Object {
	probe := probeObj()
	return &Object{
		Name: "deployment",
		Doc:  "One Deployment per key; the key becomes the name component.",
		Fields: []*Field{
			boolean("enabled").doc("Set false to skip rendering this entry."),
			obj("image", imageObj()),
			integer("replicas").atLeast(0).doc("Ignored when autoscaling is enabled."),
			obj("autoscaling", autoscalingObj()),
			mapAny("strategy"),
			seqStr("command"),
			seqStr("args"),
			seqOf("ports", elemObj(containerPortObj())),
			seqOf("env", elemObj(envVarObj())),
			seqAny("envFrom"),
			obj("resources", resourcesObj()),
			obj("securityContext", securityContextObj()),
			obj("livenessProbe", probe),
			obj("readinessProbe", probe),
			obj("startupProbe", probe),
			mapAny("lifecycle"),
			seqAny("volumeMounts"),
			seqAny("volumes"),
			seqAny("initContainers"),
			seqAny("sidecarContainers"),
			mapStr("nodeSelector"),
			seqAny("tolerations"),
			mapAny("affinity"),
			seqAny("topologySpreadConstraints"),
			labelsField("labels"),
			mapStr("annotations"),
			labelsField("podLabels"),
			mapStr("podAnnotations"),
		},
	}
}

// autoscalingObj folds the HPA settings into the deployment they scale.
// Enabling it makes the replica bounds mandatory.
func autoscalingObj() *Object {
	return &Object{
		Name: "autoscaling",
		Fields: []*Field{
			boolean("enabled"),
			integer("minReplicas").atLeast(1),
			integer("maxReplicas").atLeast(1),
			seqAny("metrics"),
			mapAny("behavior"),
			labelsField("labels"),
			mapStr("annotations"),
		},
		Rules: []Rule{
			{When: "enabled", Require: []string{"minReplicas", "maxReplicas"}},
			{LessOrEqual: [2]string{"minReplicas", "maxReplicas"}},
		},
	}
}

func serviceEntry() *Object {
	return &Object{
		Name: "service",
		Doc:  "One Service per key; targetDeployment picks the pods it selects.",
		Fields: []*Field{
			boolean("enabled"),
			str("type").pattern("^(ClusterIP|NodePort|LoadBalancer|ExternalName)$"),
			str("targetDeployment").doc("Key in deployments whose pods this service targets."),
			seqOf("ports", elemObj(servicePortObj())),
			str("clusterIP"),
			str("loadBalancerIP"),
			seqStr("loadBalancerSourceRanges"),
			str("externalTrafficPolicy").enum("Cluster", "Local"),
			str("sessionAffinity").enum("None", "ClientIP"),
			mapAny("sessionAffinityConfig"),
			labelsField("extraSelectorLabels"),
			mapOf("nodePorts", elemInt().between(1, 65535)),
			labelsField("labels"),
			mapStr("annotations"),
		},
	}
}

func servicePortObj() *Object {
	return &Object{
		Name: "servicePort",
		Fields: []*Field{
			str("name"),
			integer("port").req().between(1, 65535),
			anyVal("targetPort").doc("Port number or container port name."),
			str("protocol").enum("TCP", "UDP"),
		},
	}
}

func configMapEntry() *Object {
	return &Object{
		Name: "configMap",
		Fields: []*Field{
			boolean("enabled"),
			mapStr("data"),
			mapStr("binaryData").doc("Base64-encoded entries."),
			labelsField("labels"),
			mapStr("annotations"),
		},
	}
}

func secretEntry() *Object {
	return &Object{
		Name: "secret",
		Fields: []*Field{
			boolean("enabled"),
			str("type").doc("Secret type, Opaque when unset."),
			mapStr("data").doc("Base64-encoded entries."),
			mapStr("stringData"),
			labelsField("labels"),
			mapStr("annotations"),
		},
	}
}

func pvcEntry() *Object {
	return &Object{
		Name: "persistentVolumeClaim",
		Fields: []*Field{
			boolean("enabled"),
			seqOf("accessModes", elemStr().enum("ReadWriteOnce", "ReadOnlyMany", "ReadWriteMany", "ReadWriteOncePod")),
			mapAny("resources").doc("Claim resources, e.g. {requests: {storage: 10Gi}}."),
			str("storageClassName"),
			mapAny("selector"),
			str("volumeName"),
			labelsField("labels"),
			mapStr("annotations"),
		},
	}
}

func cronJobEntry() *Object {
	fields := []*Field{
		boolean("enabled"),
		str("schedule").req().format(FormatCron),
		str("timeZone").format(FormatTimeZone),
		str("concurrencyPolicy").enum("Allow", "Forbid", "Replace"),
		integer("failedJobsHistoryLimit").atLeast(0),
		integer("successfulJobsHistoryLimit").atLeast(0),
		integer("startingDeadlineSeconds").atLeast(0),
		boolean("suspend"),
		integer("backoffLimit").atLeast(0),
		integer("activeDeadlineSeconds").atLeast(1),
		integer("ttlSecondsAfterFinished").atLeast(0),
		integer("completions").atLeast(1),
		integer("parallelism").atLeast(0),
	}
	fields = append(fields, jobPodFields()...)
	fields = append(fields, str("restartPolicy").enum("OnFailure", "Never").doc("OnFailure when unset."))
	return &Object{
		Name:   "cronjob",
		Doc:    "One CronJob per key. Image, resources, and placement fall back to defaults field by field.",
		Fields: fields,
	}
}

func hookEntry() *Object {
	fields := []*Field{
		boolean("enabled"),
		str("types").req().format(FormatHookTypes).doc("Comma-separated hook phases, e.g. 'pre-install,pre-upgrade'."),
		str("weight").format(FormatIntegerString).doc("Hook ordering; lower runs first."),
		str("deletePolicy").format(FormatHookDeletePolicy).doc("'before-hook-creation,hook-succeeded' when unset."),
		integer("backoffLimit").atLeast(0),
		integer("activeDeadlineSeconds").atLeast(1),
		integer("ttlSecondsAfterFinished").atLeast(0),
	}
	fields = append(fields, jobPodFields()...)
	fields = append(fields, str("restartPolicy").enum("Never", "OnFailure").doc("Never when unset."))
	return &Object{
		Name:   "hook",
		Doc:    "One Helm hook Job per key, named '<base>-hook-<key>'.",
		Fields: fields,
	}
}

// jobPodFields is the pod template surface cronjobs and hooks share.
func jobPodFields() []*Field {
	return []*Field{
		obj("image", imageObj()),
		seqStr("command"),
		seqStr("args"),
		seqOf("env", elemObj(envVarObj())),
		seqAny("envFrom"),
		obj("resources", resourcesObj()),
		obj("podSecurityContext", securityContextObj()),
		obj("containerSecurityContext", securityContextObj()),
		seqAny("volumeMounts"),
		seqAny("volumes"),
		mapStr("nodeSelector"),
		seqAny("tolerations"),
		mapAny("affinity"),
		obj("serviceAccount", serviceAccountRefObj()),
		labelsField("labels"),
		mapStr("annotations"),
		labelsField("podLabels"),
		mapStr("podAnnotations"),
	}
}

func istioObj() *Object {
	return &Object{
		Name: "istio",
		Doc:  "Service mesh objects; nothing renders unless enabled is true.",
		Fields: []*Field{
			boolean("enabled"),
			mapObj("gateways", gatewayEntry()).dnsKeys(),
			mapObj("virtualServices", virtualServiceEntry()).dnsKeys(),
			mapObj("destinationRules", destinationRuleEntry()).dnsKeys(),
		},
	}
}

func gatewayEntry() *Object {
	return &Object{
		Name: "gateway",
		Fields: []*Field{
			boolean("enabled"),
			mapStr("selector").doc("Workload selector, e.g. {istio: ingressgateway}."),
			seqAny("servers"),
			labelsField("labels"),
			mapStr("annotations"),
		},
	}
}

func virtualServiceEntry() *Object {
	return &Object{
		Name: "virtualService",
		Fields: []*Field{
			boolean("enabled"),
			seqStr("hosts"),
			seqStr("gateways").doc("Gateway keys from istio.gateways, or 'mesh'."),
			seqStr("exportTo"),
			seqAny("http"),
			seqAny("tcp"),
			seqAny("tls"),
			labelsField("labels"),
			mapStr("annotations"),
		},
	}
}

func destinationRuleEntry() *Object {
	return &Object{
		Name: "destinationRule",
		Fields: []*Field{
			boolean("enabled"),
			str("host").doc("Service key this rule applies to."),
			mapAny("trafficPolicy"),
			seqAny("subsets"),
			seqStr("exportTo"),
			labelsField("labels"),
			mapStr("annotations"),
		},
	}
}

func serviceAccountObj() *Object {
	return &Object{
		Name: "serviceAccount",
		Fields: []*Field{
			boolean("create").doc("Create the account; true when unset."),
			str("name").format(FormatDNSLabel).doc("Existing account to use, or the name to create."),
			mapStr("annotations"),
			boolean("automountServiceAccountToken"),
		},
	}
}

func imageObj() *Object {
	return &Object{
		Name: "image",
		Fields: []*Field{
			str("repository"),
			str("tag"),
			str("pullPolicy").pattern("^(Always|Never|IfNotPresent)$"),
		},
	}
}

func resourcesObj() *Object {
	return &Object{
		Name: "resources",
		Fields: []*Field{
			mapOf("requests", elemStr().format(FormatQuantity)),
			mapOf("limits", elemStr().format(FormatQuantity)),
		},
	}
}

func securityContextObj() *Object {
	return &Object{
		Name: "securityContext",
		Fields: []*Field{
			boolean("runAsNonRoot"),
			integer("runAsUser").atLeast(0),
			integer("runAsGroup").atLeast(0),
			integer("fsGroup").atLeast(0),
			boolean("readOnlyRootFilesystem"),
			boolean("allowPrivilegeEscalation"),
			mapOf("capabilities", elemSeq(elemStr())).doc("e.g. {drop: [ALL], add: [NET_BIND_SERVICE]}."),
			mapStr("seccompProfile"),
		},
	}
}

func probeObj() *Object {
	return &Object{
		Name: "probe",
		Doc:  "An enabled probe carries exactly one handler.",
		Fields: []*Field{
			boolean("enabled"),
			mapAny("httpGet"),
			mapAny("exec"),
			mapAny("tcpSocket"),
			mapAny("grpc"),
			integer("initialDelaySeconds").atLeast(0),
			integer("periodSeconds").atLeast(1),
			integer("timeoutSeconds").atLeast(1),
			integer("successThreshold").atLeast(1),
			integer("failureThreshold").atLeast(1),
		},
		Rules: []Rule{
			{When: "enabled", ExactlyOne: []string{"httpGet", "tcpSocket", "exec", "grpc"}},
		},
	}
}

func containerPortObj() *Object {
	return &Object{
		Name: "containerPort",
		Fields: []*Field{
			str("name").req().doc("Referenced by services and probes."),
			integer("containerPort").req().between(1, 65535),
			str("protocol").enum("TCP", "UDP"),
		},
	}
}

func envVarObj() *Object {
	return &Object{
		Name: "envVar",
		Fields: []*Field{
			str("name").req(),
			str("value"),
			mapAny("valueFrom").doc("e.g. {secretKeyRef: {name: db, key: password}}."),
		},
		Rules: []Rule{
			{AtMostOne: []string{"value", "valueFrom"}},
		},
	}
}

func serviceAccountRefObj() *Object {
	return &Object{
		Name: "serviceAccountRef",
		Fields: []*Field{
			boolean("create"),
			str("name"),
		},
	}
}

// Field builders. The schema reads as one literal; these keep it flat.

func str(name string) *Field     { return &Field{Name: name, Type: TypeString} }
func integer(name string) *Field { return &Field{Name: name, Type: TypeInt} }
func boolean(name string) *Field { return &Field{Name: name, Type: TypeBool} }
func anyVal(name string) *Field  { return &Field{Name: name, Type: TypeAny} }

func mapAny(name string) *Field { return &Field{Name: name, Type: TypeMap} }
func mapStr(name string) *Field { return &Field{Name: name, Type: TypeMap, Elem: elemStr()} }
func seqAny(name string) *Field { return &Field{Name: name, Type: TypeSequence} }
func seqStr(name string) *Field { return &Field{Name: name, Type: TypeSequence, Elem: elemStr()} }

func mapOf(name string, elem *Field) *Field {
	return &Field{Name: name, Type: TypeMap, Elem: elem}
}

func seqOf(name string, elem *Field) *Field {
	return &Field{Name: name, Type: TypeSequence, Elem: elem}
}

func mapObj(name string, o *Object) *Field {
	return &Field{Name: name, Type: TypeMap, Elem: elemObj(o)}
}

func obj(name string, o *Object) *Field {
	return &Field{Name: name, Type: TypeObject, Object: o}
}

func labelsField(name string) *Field {
	return &Field{Name: name, Type: TypeMap, Format: FormatLabels, Elem: elemStr()}
}

// Anonymous element schemas for map values and sequence elements.

func elemStr() *Field          { return &Field{Type: TypeString} }
func elemInt() *Field          { return &Field{Type: TypeInt} }
func elemSeq(e *Field) *Field  { return &Field{Type: TypeSequence, Elem: e} }
func elemObj(o *Object) *Field { return &Field{Type: TypeObject, Object: o} }
func elemMapStr() *Field       { return &Field{Type: TypeMap, Elem: elemStr()} }

func (f *Field) req() *Field             { f.Required = true; return f }
func (f *Field) doc(s string) *Field     { f.Doc = s; return f }
func (f *Field) enum(v ...string) *Field { f.Enum = v; return f }
func (f *Field) pattern(p string) *Field { f.Pattern = p; return f }
func (f *Field) format(s string) *Field  { f.Format = s; return f }
func (f *Field) dnsKeys() *Field         { f.KeyFormat = FormatDNSLabel; return f }

func (f *Field) atLeast(n int) *Field { f.Min = ptr.To(n); return f }

func (f *Field) between(lo, hi int) *Field {
	f.Min, f.Max = ptr.To(lo), ptr.To(hi)
	return f
}
