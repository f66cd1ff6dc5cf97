package validate

import (
	"fmt"
	"strings"
)

// Severity ranks an issue. Errors reject the document; warnings never do.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Path locates a value in the document, one field-access step per element.
// Sequence elements contribute their index as a step.
type Path []string

func (p Path) String() string { return strings.Join(p, ".") }

// child returns a fresh path extended by one step. Paths are stored in
// issues, so sharing backing arrays between siblings is not allowed.
func (p Path) child(step string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

// Issue is one located violation. Issues are plain data; a pass returns all
// of them rather than stopping at the first.
type Issue struct {
	Path     Path
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// UnknownFieldMode says what happens to fields the schema does not declare.
// The choice holds for a whole pass.
type UnknownFieldMode int

const (
	// UnknownIgnore accepts undeclared fields silently.
	UnknownIgnore UnknownFieldMode = iota
	// UnknownWarn reports each undeclared field as a warning.
	UnknownWarn
)

// Options configure one validation pass. The zero value ignores unknown
// fields.
type Options struct {
	Unknown UnknownFieldMode
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns how many issues carry the given severity.
func Count(issues []Issue, s Severity) int {
	n := 0
	for _, i := range issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}
