package names

import (
	"strings"
	"testing"
)

func TestBase(t *testing.T) {
	cases := map[string]struct {
		release, chart, nameOverride, fullnameOverride string
		want                                           string
	}{
		"release plus chart": {
			release: "prod", chart: "golden-chart",
			want: "prod-golden-chart",
		},
		"name override": {
			release: "prod", chart: "golden-chart", nameOverride: "api",
			want: "prod-api",
		},
		"release contains name": {
			release: "myapp-prod", chart: "myapp",
			want: "myapp-prod",
		},
		"fullname override wins": {
			release: "prod", chart: "golden-chart", nameOverride: "api",
			fullnameOverride: "legacy-name",
			want:             "legacy-name",
		},
		"fullname override truncated": {
			fullnameOverride: strings.Repeat("a", 70),
			want:             strings.Repeat("a", 63),
		},
		"empty inputs degenerate": {
			want: "",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Base(tc.release, tc.chart, tc.nameOverride, tc.fullnameOverride)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResource(t *testing.T) {
	base := Base("prod", "golden-chart", "api", "")
	if base != "prod-api" {
		t.Fatalf("expected prod-api, got %q", base)
	}
	if got := Resource(base, "svc"); got != "prod-api-svc" {
		t.Fatalf("expected prod-api-svc, got %q", got)
	}
}

func TestHook(t *testing.T) {
	if got := Hook("prod-api", "migrate"); got != "prod-api-hook-migrate" {
		t.Fatalf("expected prod-api-hook-migrate, got %q", got)
	}
}

func TestBoundAndDeterminism(t *testing.T) {
	inputs := []struct {
		base, key string
	}{
		{"prod-api", "svc"},
		{strings.Repeat("x", 63), "worker"},
		{strings.Repeat("y", 61), "a"},
		{strings.Repeat("z", 62) + "-", "k"},
		{"", ""},
		{"release", strings.Repeat("long-key-", 12)},
	}
	for _, in := range inputs {
		got := Resource(in.base, in.key)
		if len(got) > MaxLength {
			t.Fatalf("Resource(%q, %q) = %q exceeds %d chars", in.base, in.key, got, MaxLength)
		}
		if strings.HasSuffix(got, "-") {
			t.Fatalf("Resource(%q, %q) = %q ends in a hyphen", in.base, in.key, got)
		}
		if again := Resource(in.base, in.key); again != got {
			t.Fatalf("Resource is not deterministic: %q then %q", got, again)
		}
	}
}

func TestTruncationStripsTrailingHyphen(t *testing.T) {
	// 62 chars of base leave room for exactly the joining hyphen.
	base := strings.Repeat("a", 62)
	got := Resource(base, "key")
	if got != base {
		t.Fatalf("expected %q, got %q", base, got)
	}
}
