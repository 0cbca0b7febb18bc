package ledger

import "github.com/viant/toa/analyzer/source"

// Variable represents a replayed variable trace
type Variable struct {
	Name    string    `yaml:"name"`
	Entries []*Record `yaml:"entries"`
}

// Record represents a replayed entry
type Record struct {
	Description string         `yaml:"description"`
	Value       *source.Source `yaml:"value"`
}
