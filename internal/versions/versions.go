// Package versions exposes the platform versions the chart is maintained
// against. The catalogue ships inside the binary, so version checks work
// without a repository checkout.
package versions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed supported-k8s-versions.json
var catalogueJSON []byte

type component struct {
	Versions []string `json:"versions"`
	Version  string   `json:"version"`
}

var catalogue = func() map[string]component {
	var m map[string]component
	if err := json.Unmarshal(catalogueJSON, &m); err != nil {
		panic(fmt.Sprintf("versions: embedded catalogue: %v", err))
	}
	return m
}()

// Components lists the catalogued components, sorted.
func Components() []string {
	out := make([]string, 0, len(catalogue))
	for name := range catalogue {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Supported returns the versions maintained for a component, oldest first.
func Supported(name string) ([]string, error) {
	c, ok := catalogue[name]
	if !ok {
		return nil, fmt.Errorf("unknown component %q", name)
	}
	return append([]string(nil), c.Versions...), nil
}

// Default returns the component's pinned version when the catalogue has
// one, otherwise the newest supported version.
func Default(name string) (string, error) {
	c, ok := catalogue[name]
	if !ok {
		return "", fmt.Errorf("unknown component %q", name)
	}
	if c.Version != "" {
		return c.Version, nil
	}
	if len(c.Versions) == 0 {
		return "", fmt.Errorf("component %q has no versions", name)
	}
	return c.Versions[len(c.Versions)-1], nil
}
