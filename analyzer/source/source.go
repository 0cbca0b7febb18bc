// Package source defines resolved source expressions: the value a variable or argument was
// traced back to, with structural equality and containment.
package source

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a resolved source variant
type Kind int

const (
	// KindLiteral is a literal value
	KindLiteral Kind = iota + 1
	// KindName is a bare, unresolved variable name (parameter or external origin)
	KindName
	// KindBinding is {name: source} for a name with a known prior source
	KindBinding
	// KindCall is {function: name, args: [...]}
	KindCall
	// KindText is the rendered expression text fallback
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindName:
		return "name"
	case KindBinding:
		return "binding"
	case KindCall:
		return "call"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Source is a resolved source expression
type Source struct {
	Kind     Kind
	Value    interface{} // literal value: string, int64, float64, bool or nil
	Name     string      // name and binding key
	Bound    *Source     // binding value
	Function string      // call function name
	Args     []*Source   // call arguments
	Text     string      // rendered text
}

// Literal creates a literal source
func Literal(value interface{}) *Source {
	return &Source{Kind: KindLiteral, Value: value}
}

// Name creates an unresolved name source
func Name(name string) *Source {
	return &Source{Kind: KindName, Name: name}
}

// Bind creates a {name: bound} source
func Bind(name string, bound *Source) *Source {
	return &Source{Kind: KindBinding, Name: name, Bound: bound}
}

// Call creates a call descriptor source
func Call(function string, args ...*Source) *Source {
	return &Source{Kind: KindCall, Function: function, Args: args}
}

// Text creates a rendered text source
func Text(text string) *Source {
	return &Source{Kind: KindText, Text: text}
}

// Equal returns true if both sources are structurally equal
func (s *Source) Equal(other *Source) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Kind != other.Kind {
		return false
	}
	switch s.Kind {
	case KindLiteral:
		return s.Value == other.Value
	case KindName:
		return s.Name == other.Name
	case KindBinding:
		return s.Name == other.Name && s.Bound.Equal(other.Bound)
	case KindCall:
		if s.Function != other.Function || len(s.Args) != len(other.Args) {
			return false
		}
		for i := range s.Args {
			if !s.Args[i].Equal(other.Args[i]) {
				return false
			}
		}
		return true
	case KindText:
		return s.Text == other.Text
	}
	return false
}

// Contains returns true if other equals s or any source nested in s
func (s *Source) Contains(other *Source) bool {
	if s == nil {
		return false
	}
	if s.Equal(other) {
		return true
	}
	switch s.Kind {
	case KindBinding:
		return s.Bound.Contains(other)
	case KindCall:
		for _, arg := range s.Args {
			if arg.Contains(other) {
				return true
			}
		}
	}
	return false
}

// Names returns referenced variable names, outermost first
func (s *Source) Names() []string {
	var result []string
	seen := map[string]bool{}
	var visit func(src *Source)
	visit = func(src *Source) {
		if src == nil {
			return
		}
		switch src.Kind {
		case KindName:
			if !seen[src.Name] {
				seen[src.Name] = true
				result = append(result, src.Name)
			}
		case KindBinding:
			if !seen[src.Name] {
				seen[src.Name] = true
				result = append(result, src.Name)
			}
			visit(src.Bound)
		case KindCall:
			for _, arg := range src.Args {
				visit(arg)
			}
		}
	}
	visit(s)
	return result
}

// String renders the source for ledger labels
func (s *Source) String() string {
	if s == nil {
		return "<nil>"
	}
	switch s.Kind {
	case KindLiteral:
		return literalString(s.Value)
	case KindName:
		return s.Name
	case KindBinding:
		return "{" + s.Name + ": " + s.Bound.String() + "}"
	case KindCall:
		args := make([]string, len(s.Args))
		for i, arg := range s.Args {
			args[i] = arg.String()
		}
		return "{func: " + s.Function + ", args: [" + strings.Join(args, ", ") + "]}"
	case KindText:
		return s.Text
	}
	return "<unknown>"
}

func literalString(value interface{}) string {
	switch actual := value.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(actual)
	case bool:
		if actual {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(actual)
	}
}

// MarshalYAML renders the source as nested yaml nodes
func (s *Source) MarshalYAML() (interface{}, error) {
	if s == nil {
		return nil, nil
	}
	switch s.Kind {
	case KindLiteral:
		return s.Value, nil
	case KindName:
		return s.Name, nil
	case KindBinding:
		return map[string]*Source{s.Name: s.Bound}, nil
	case KindCall:
		args := s.Args
		if args == nil {
			args = []*Source{}
		}
		return struct {
			Func string    `yaml:"func"`
			Args []*Source `yaml:"args"`
		}{s.Function, args}, nil
	}
	return s.Text, nil
}
