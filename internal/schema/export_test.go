package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xeipuuv/gojsonschema"
	"sigs.k8s.io/yaml"
)

const validValues = `
nameOverride: golden
global:
  labels:
    team: platform
defaults:
  image:
    repository: registry.example.com/app
    tag: "1.2.3"
    pullPolicy: IfNotPresent
  replicas: 2
  resources:
    requests:
      cpu: 100m
      memory: 128Mi
deployments:
  api:
    ports:
      - name: http
        containerPort: 8080
    env:
      - name: MODE
        value: production
    livenessProbe:
      enabled: true
      httpGet:
        path: /healthz
        port: http
    autoscaling:
      enabled: true
      minReplicas: 2
      maxReplicas: 6
services:
  api:
    type: ClusterIP
    targetDeployment: api
    ports:
      - name: http
        port: 80
        targetPort: http
configMaps:
  app-config:
    data:
      LOG_LEVEL: info
secrets:
  credentials:
    stringData:
      password: hunter2
persistentVolumeClaims:
  data:
    accessModes: [ReadWriteOnce]
    resources:
      requests:
        storage: 10Gi
cronjobs:
  cleanup:
    schedule: "0 3 * * *"
hooks:
  migrate:
    types: pre-install,pre-upgrade
    weight: "-5"
istio:
  enabled: true
  gateways:
    public:
      selector:
        istio: ingressgateway
serviceAccount:
  create: true
extraResources:
  - apiVersion: v1
    kind: LimitRange
    metadata:
      name: limits
`

const invalidValues = `
defaults:
  image:
    pullPolicy: Sometimes
deployments:
  api:
    replicas: three
services:
  api:
    ports:
      - port: 99999
cronjobs:
  cleanup:
    timeZone: UTC
hooks:
  migrate:
    types: mid-install
`

func exportedSchema(t *testing.T) gojsonschema.JSONLoader {
	t.Helper()
	b, err := Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	return gojsonschema.NewBytesLoader(b)
}

func yamlLoader(t *testing.T, doc string) gojsonschema.JSONLoader {
	t.Helper()
	j, err := yaml.YAMLToJSON([]byte(doc))
	if err != nil {
		t.Fatalf("yaml to json: %v", err)
	}
	return gojsonschema.NewBytesLoader(j)
}

func TestExportHeader(t *testing.T) {
	b, err := Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("exported schema is not valid JSON: %v", err)
	}
	if doc["$schema"] != "http://json-schema.org/draft-07/schema#" {
		t.Fatalf("unexpected $schema %v", doc["$schema"])
	}
	if doc["title"] != "Golden Helm Chart Values" {
		t.Fatalf("unexpected title %v", doc["title"])
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatal("exported schema has no properties")
	}
	for _, name := range []string{"defaults", "deployments", "istio", "extraResources"} {
		if _, ok := props[name]; !ok {
			t.Fatalf("exported schema missing %q", name)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	res, err := gojsonschema.Validate(exportedSchema(t), yamlLoader(t, validValues))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.Valid() {
		for _, e := range res.Errors() {
			t.Logf("unexpected violation: %s: %s", e.Field(), e.Description())
		}
		t.Fatal("known-valid document rejected by exported schema")
	}
}

func TestExportCatchesViolations(t *testing.T) {
	res, err := gojsonschema.Validate(exportedSchema(t), yamlLoader(t, invalidValues))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Valid() {
		t.Fatal("invalid document accepted by exported schema")
	}

	want := []string{
		"defaults.image.pullPolicy",
		"deployments.api.replicas",
		"services.api.ports.0.port",
		"cronjobs.cleanup",
		"hooks.migrate.types",
	}
	for _, field := range want {
		var found bool
		for _, e := range res.Errors() {
			if strings.Contains(e.Field(), field) || strings.Contains(e.Context().String(), field) {
				found = true
				break
			}
		}
		if !found {
			for _, e := range res.Errors() {
				t.Logf("violation: %s: %s", e.Field(), e.Description())
			}
			t.Fatalf("expected a violation at %s", field)
		}
	}
}
