// Package names derives resource names from the release identity and entry
// keys, with the same rules chart helpers use: bounded to a DNS label,
// override-aware, deterministic.
package names

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// MaxLength is the hard bound on any derived name, the DNS label limit.
const MaxLength = validation.DNS1123LabelMaxLength

// Base derives the prefix shared by every resource of a release. A
// fullnameOverride is used verbatim, only truncated. Otherwise the chart name
// (or nameOverride in its place) is appended to the release name, unless the
// release name already contains it, which avoids doubled names like
// "myapp-myapp". Empty inputs yield degenerate but stable names; no input
// makes this fail.
func Base(releaseName, chartName, nameOverride, fullnameOverride string) string {
	if fullnameOverride != "" {
		return truncate(fullnameOverride)
	}
	name := chartName
	if nameOverride != "" {
		name = nameOverride
	}
	if strings.Contains(releaseName, name) {
		return truncate(releaseName)
	}
	return truncate(releaseName + "-" + name)
}

// Resource names one resource: the base plus the entry key.
func Resource(baseName, key string) string {
	return truncate(baseName + "-" + key)
}

// Hook names a hook job so it cannot collide with a workload of the same key.
func Hook(baseName, key string) string {
	return Resource(baseName, "hook-"+key)
}

// truncate bounds a name to MaxLength and strips any hyphens the cut leaves
// dangling.
func truncate(name string) string {
	if len(name) > MaxLength {
		name = name[:MaxLength]
	}
	return strings.TrimRight(name, "-")
}
