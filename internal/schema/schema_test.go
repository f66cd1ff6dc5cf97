package schema

import "testing"

func TestDocumentDeclaresEveryKind(t *testing.T) {
	root := Document()
	for _, k := range Kinds() {
		o := root
		var f *Field
		for _, step := range k.Path() {
			if o == nil {
				t.Fatalf("%s: ran out of objects at %q", k, step)
			}
			f = o.Field(step)
			if f == nil {
				t.Fatalf("%s: field %q not declared", k, step)
			}
			o = f.Object
		}
		if f.Type != TypeMap {
			t.Fatalf("%s: expected a map field, got %s", k, f.Type)
		}
		if f.Elem == nil || f.Elem.Object == nil {
			t.Fatalf("%s: map entries have no object schema", k)
		}
		if f.KeyFormat != FormatDNSLabel {
			t.Fatalf("%s: entry keys must be DNS labels, got %q", k, f.KeyFormat)
		}
	}
}

func TestKindPath(t *testing.T) {
	p := KindVirtualServices.Path()
	if len(p) != 2 || p[0] != "istio" || p[1] != "virtualServices" {
		t.Fatalf("unexpected path %v", p)
	}
	if got := KindDeployments.Path(); len(got) != 1 || got[0] != "deployments" {
		t.Fatalf("unexpected path %v", got)
	}
}

func TestFieldLookup(t *testing.T) {
	root := Document()
	if root.Field("nameOverride") == nil {
		t.Fatal("nameOverride not declared")
	}
	if root.Field("noSuchField") != nil {
		t.Fatal("lookup of unknown field should return nil")
	}
}

func TestRequiredFields(t *testing.T) {
	root := Document()
	cases := []struct {
		kind  Kind
		field string
	}{
		{KindCronJobs, "schedule"},
		{KindHooks, "types"},
	}
	for _, tc := range cases {
		entry := root.Field(string(tc.kind)).Elem.Object
		f := entry.Field(tc.field)
		if f == nil {
			t.Fatalf("%s: %q not declared", tc.kind, tc.field)
		}
		if !f.Required {
			t.Fatalf("%s: %q must be required", tc.kind, tc.field)
		}
	}

	env := root.Field("deployments").Elem.Object.Field("env").Elem.Object
	if f := env.Field("name"); f == nil || !f.Required {
		t.Fatal("env var name must be required")
	}
}

func TestProbeRequiresExactlyOneHandler(t *testing.T) {
	dep := Document().Field("deployments").Elem.Object
	probe := dep.Field("livenessProbe").Object
	var found bool
	for _, r := range probe.Rules {
		if r.When == "enabled" && len(r.ExactlyOne) == 4 {
			found = true
		}
	}
	if !found {
		t.Fatalf("probe rules missing enabled-gated exactly-one handler rule: %+v", probe.Rules)
	}
}

func TestAutoscalingRules(t *testing.T) {
	as := Document().Field("deployments").Elem.Object.Field("autoscaling").Object
	var require, lessOrEqual bool
	for _, r := range as.Rules {
		if r.When == "enabled" && len(r.Require) == 2 {
			require = true
		}
		if r.LessOrEqual == [2]string{"minReplicas", "maxReplicas"} {
			lessOrEqual = true
		}
	}
	if !require || !lessOrEqual {
		t.Fatalf("autoscaling rules incomplete: %+v", as.Rules)
	}
}
