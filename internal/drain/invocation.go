package drain

import (
	"strings"
)

// Invocation describes one child process run. It is not modified after construction.
type Invocation struct {
	// Executable is resolved through PATH when it contains no separator.
	Executable string `yaml:"executable"`
	// Arguments are passed as an argument vector; no shell is involved.
	Arguments []string `yaml:"args"`
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string `yaml:"env,omitempty"`
}

// NewInvocation copies args so later changes by the caller do not leak in.
func NewInvocation(executable string, args ...string) Invocation {
	return Invocation{
		Executable: executable,
		Arguments:  append([]string(nil), args...),
	}
}

// String renders the invocation the way it would be typed in a shell.
// Arguments containing whitespace or quotes are quoted individually.
func (i Invocation) String() string {
	parts := make([]string, 0, len(i.Arguments)+1)
	parts = append(parts, Quote(i.Executable))

	for _, arg := range i.Arguments {
		parts = append(parts, Quote(arg))
	}

	return strings.Join(parts, " ")
}

// Quote wraps s in double quotes when it is empty or contains whitespace or quotes.
func Quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\r\"'") {
		return s
	}

	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
