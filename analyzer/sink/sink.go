// Package sink locates dangerous call sites by exact function name.
package sink

import (
	"sort"
	"strings"
)

// DefaultSinks lists dynamic evaluation, command execution, unsafe deserialization and dynamic import primitives
var DefaultSinks = []string{
	"eval",
	"exec",
	"os.system",
	"pickle.load",
	"pickle.loads",
	"importlib.import_module",
	"os.popen",
	"subprocess.call",
	"subprocess.run",
	"subprocess.Popen",
	"subprocess.check_output",
	"marshal.loads",
	"yaml.load",
	"__import__",
	"compile",
}

// Set represents a sink name set
type Set struct {
	names map[string]bool
}

// Match returns true if the resolved call name is a sink
func (s *Set) Match(name string) bool {
	if name == "" {
		return false
	}
	return s.names[name]
}

// MatchText matches rendered callee text of an unresolvable call, whitespace is ignored
func (s *Set) MatchText(text string) bool {
	return s.Match(strings.Join(strings.Fields(text), ""))
}

// Names returns sorted sink names
func (s *Set) Names() []string {
	result := make([]string, 0, len(s.names))
	for name := range s.names {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Len returns number of sinks
func (s *Set) Len() int {
	return len(s.names)
}

// New creates a sink set, an empty name list uses DefaultSinks
func New(names ...string) *Set {
	if len(names) == 0 {
		names = DefaultSinks
	}
	result := &Set{names: map[string]bool{}}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			result.names[name] = true
		}
	}
	return result
}
