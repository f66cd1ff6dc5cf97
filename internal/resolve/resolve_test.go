package resolve

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goldenchart/goldengen/internal/merge"
	"github.com/goldenchart/goldengen/internal/schema"
	"github.com/goldenchart/goldengen/internal/validate"
)

func parse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func mustResolve(t *testing.T, src string, rel ReleaseOptions, opts Options) *Resolved {
	t.Helper()
	res, issues, err := Resolve(parse(t, src), rel, opts)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res == nil {
		t.Fatalf("document rejected: %v", issues)
	}
	return res
}

func dig(t *testing.T, m map[string]any, path ...string) any {
	t.Helper()
	cur := any(m)
	for _, step := range path {
		mm, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("%s: not a mapping at %q", strings.Join(path, "."), step)
		}
		cur = mm[step]
	}
	return cur
}

const mergeDoc = `
defaults:
  replicas: 2
  image:
    repository: registry.example.com/app
    tag: 1.2.3
  resources:
    requests:
      cpu: 100m
  nodeSelector:
    pool: general
deployments:
  api:
    enabled: false
    image:
      tag: 2.0.0
services:
  api:
    ports:
      - port: 80
cronjobs:
  cleanup:
    schedule: "@daily"
hooks:
  migrate:
    types: pre-install
    resources:
      requests:
        cpu: 250m
`

func TestResolveMergesDefaultsPerKind(t *testing.T) {
	res := mustResolve(t, mergeDoc, ReleaseOptions{Name: "prod"}, Options{})

	api := res.Kind(schema.KindDeployments).Entries["api"]
	if got := dig(t, api, "resources", "requests", "cpu"); got != "100m" {
		t.Errorf("deployment: expected defaults cpu to surface, got %v", got)
	}
	if got := dig(t, api, "image", "tag"); got != "2.0.0" {
		t.Errorf("deployment: expected override tag to win, got %v", got)
	}
	if got := dig(t, api, "image", "repository"); got != "registry.example.com/app" {
		t.Errorf("deployment: expected defaults repository inside merged image, got %v", got)
	}
	if api["enabled"] != false {
		t.Errorf("deployment: enabled flag lost, got %v", api["enabled"])
	}

	cleanup := res.Kind(schema.KindCronJobs).Entries["cleanup"]
	if got := dig(t, cleanup, "nodeSelector", "pool"); got != "general" {
		t.Errorf("cronjob: expected nodeSelector fallback, got %v", got)
	}
	if _, ok := cleanup["replicas"]; ok {
		t.Error("cronjob: replicas is not a fallback field and must not leak")
	}

	migrate := res.Kind(schema.KindHooks).Entries["migrate"]
	if got := dig(t, migrate, "resources", "requests", "cpu"); got != "250m" {
		t.Errorf("hook: expected own resources to win wholesale, got %v", got)
	}
	if got := dig(t, migrate, "image", "repository"); got != "registry.example.com/app" {
		t.Errorf("hook: expected image fallback, got %v", got)
	}

	svc := res.Kind(schema.KindServices).Entries["api"]
	if _, ok := svc["replicas"]; ok {
		t.Error("service: defaults must not merge into services")
	}
}

func TestResolveDerivesNames(t *testing.T) {
	tests := map[string]struct {
		src  string
		rel  ReleaseOptions
		want string
	}{
		"release plus chart": {
			src:  "",
			rel:  ReleaseOptions{Name: "prod", ChartName: "golden-chart"},
			want: "prod-golden-chart",
		},
		"name override": {
			src:  "nameOverride: api\n",
			rel:  ReleaseOptions{Name: "prod", ChartName: "golden-chart"},
			want: "prod-api",
		},
		"release containing name collapses": {
			src:  "nameOverride: myapp\n",
			rel:  ReleaseOptions{Name: "myapp-prod", ChartName: "golden-chart"},
			want: "myapp-prod",
		},
		"fullname override wins": {
			src:  "fullnameOverride: fixed\nnameOverride: api\n",
			rel:  ReleaseOptions{Name: "prod", ChartName: "golden-chart"},
			want: "fixed",
		},
		"empty chart name falls back": {
			src:  "",
			rel:  ReleaseOptions{Name: "prod"},
			want: "prod-golden-chart",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			res := mustResolve(t, tc.src, tc.rel, Options{})
			if res.BaseName != tc.want {
				t.Errorf("expected base name %q, got %q", tc.want, res.BaseName)
			}
		})
	}
}

func TestResolveNamespacePrecedence(t *testing.T) {
	rel := ReleaseOptions{Name: "prod", Namespace: "default"}
	res := mustResolve(t, "namespaceOverride: payments\n", rel, Options{})
	if res.Namespace != "payments" {
		t.Errorf("expected namespaceOverride to win, got %q", res.Namespace)
	}
	res = mustResolve(t, "", rel, Options{})
	if res.Namespace != "default" {
		t.Errorf("expected release namespace, got %q", res.Namespace)
	}
}

func TestResolveRejectsAndReportsEverything(t *testing.T) {
	doc := `
deployments:
  api:
    replicas: "three"
    autoscaling:
      enabled: true
      maxReplicas: 5
`
	res, issues, err := Resolve(parse(t, doc), ReleaseOptions{Name: "prod"}, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res != nil {
		t.Fatal("expected rejection")
	}
	wantPaths := []string{
		"deployments.api.replicas",
		"deployments.api.autoscaling.minReplicas",
	}
	for _, p := range wantPaths {
		found := false
		for _, is := range issues {
			if is.Path.String() == p {
				found = true
			}
		}
		if !found {
			t.Errorf("missing issue at %s, have %v", p, issues)
		}
	}
}

func TestResolveWarningsDoNotBlock(t *testing.T) {
	doc := "deployments:\n  api:\n    replica: 2\n"
	res, issues, err := Resolve(parse(t, doc), ReleaseOptions{Name: "prod"}, Options{Unknown: validate.UnknownWarn})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res == nil {
		t.Fatalf("warnings must not reject, got %v", issues)
	}
	if n := validate.Count(issues, validate.SeverityWarning); n != 1 {
		t.Errorf("expected one warning, got %d: %v", n, issues)
	}
}

func TestResolveReferenceChecks(t *testing.T) {
	tests := map[string]struct {
		src      string
		wantPath string
	}{
		"service target": {
			src: `
deployments:
  api: {}
services:
  web:
    targetDeployment: backend
`,
			wantPath: "services.web.targetDeployment",
		},
		"destination rule host": {
			src: `
istio:
  destinationRules:
    api:
      host: missing
`,
			wantPath: "istio.destinationRules.api.host",
		},
		"virtual service gateway": {
			src: `
istio:
  gateways:
    public: {}
  virtualServices:
    api:
      gateways: [public, internal]
`,
			wantPath: "istio.virtualServices.api.gateways.1",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			res, issues, err := Resolve(parse(t, tc.src), ReleaseOptions{Name: "prod"}, Options{})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if res != nil {
				t.Fatal("expected rejection")
			}
			if len(issues) != 1 {
				t.Fatalf("expected one issue, got %v", issues)
			}
			if issues[0].Path.String() != tc.wantPath {
				t.Errorf("expected path %s, got %s", tc.wantPath, issues[0].Path)
			}
			if !strings.Contains(issues[0].Message, "references unknown") {
				t.Errorf("unexpected message %q", issues[0].Message)
			}
		})
	}
}

func TestResolveReferenceChecksAccept(t *testing.T) {
	doc := `
deployments:
  api: {}
services:
  api:
    targetDeployment: api
istio:
  gateways:
    public: {}
  virtualServices:
    api:
      gateways: [public, mesh]
  destinationRules:
    api:
      host: api
`
	mustResolve(t, doc, ReleaseOptions{Name: "prod"}, Options{})
}

func TestResolveKeepsInputOrder(t *testing.T) {
	doc := parse(t, `
deployments:
  zeta: {}
  alpha: {}
`)
	// Simulate a key added after parse, the way --set does.
	doc.Tree["deployments"].(map[string]any)["added"] = map[string]any{}
	res, _, err := Resolve(doc, ReleaseOptions{Name: "prod"}, Options{})
	if err != nil || res == nil {
		t.Fatalf("resolve failed: %v", err)
	}
	want := []string{"zeta", "alpha", "added"}
	if diff := cmp.Diff(want, res.Kind(schema.KindDeployments).Keys); diff != "" {
		t.Errorf("key order (-want +got):\n%s", diff)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	doc := parse(t, mergeDoc+"\nconfigMaps:\n  settings:\n")
	snapshot := merge.Clone(doc.Tree)
	if _, _, err := Resolve(doc, ReleaseOptions{Name: "prod"}, Options{}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff(snapshot, doc.Tree); diff != "" {
		t.Errorf("input document changed (-before +after):\n%s", diff)
	}
}

func TestResolveAbsentKindIsEmpty(t *testing.T) {
	res := mustResolve(t, "", ReleaseOptions{Name: "prod"}, Options{})
	rm := res.Kind(schema.KindDeployments)
	if rm == nil || len(rm.Keys) != 0 {
		t.Fatalf("expected empty resource map, got %v", rm)
	}
}

func TestResolveNilDocument(t *testing.T) {
	if _, _, err := Resolve(nil, ReleaseOptions{Name: "prod"}, Options{}); err == nil {
		t.Fatal("expected an error")
	}
}
