package versions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComponents(t *testing.T) {
	want := []string{"istio", "kubernetes"}
	if diff := cmp.Diff(want, Components()); diff != "" {
		t.Errorf("components (-want +got):\n%s", diff)
	}
}

func TestSupported(t *testing.T) {
	for _, name := range Components() {
		got, err := Supported(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(got) == 0 {
			t.Errorf("%s: expected at least one supported version", name)
		}
	}
	if _, err := Supported("openshift"); err == nil {
		t.Error("expected an error for an unknown component")
	}
}

func TestDefaultIsSupported(t *testing.T) {
	for _, name := range Components() {
		def, err := Default(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		supported, err := Supported(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		found := false
		for _, v := range supported {
			if v == def {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: default %q is not in the supported list %v", name, def, supported)
		}
	}
}

func TestDefaultPinnedIstio(t *testing.T) {
	got, err := Default("istio")
	if err != nil {
		t.Fatal(err)
	}
	if got != "1.24.0" {
		t.Errorf("expected pinned istio version 1.24.0, got %q", got)
	}
}
