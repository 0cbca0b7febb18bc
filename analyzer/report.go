package analyzer

import (
	"github.com/viant/toa/analyzer/backtrace"
	"github.com/viant/toa/analyzer/chain"
	"github.com/viant/toa/analyzer/ledger"
	"github.com/viant/toa/analyzer/source"
	"github.com/viant/toa/analyzer/vote"
	"github.com/viant/toa/inspector/repository"
)

// Report represents results of a single analysis run over one file
type Report struct {
	RunID      string                 `yaml:"runID"`
	Path       string                 `yaml:"path"`
	Project    *repository.Project    `yaml:"project,omitempty"`
	Repository *repository.Repository `yaml:"repository,omitempty"`
	Findings   []*Finding             `yaml:"findings"`
	Variables  []*ledger.Variable     `yaml:"variables,omitempty"` // ledger snapshot after all findings
}

// Finding represents a sink call with its reconstructed call chain and variable backtrace
type Finding struct {
	Sink      string            `yaml:"sink"`
	Location  CodeLocation      `yaml:"location"`
	Function  string            `yaml:"function"` // function enclosing the call
	Resolved  bool              `yaml:"resolved"`
	Arguments []*source.Source  `yaml:"arguments,omitempty"`
	Inputs    []string          `yaml:"inputs,omitempty"` // variables referenced by the resolved arguments
	Chain     chain.Path        `yaml:"chain,omitempty"`
	Origin    string            `yaml:"origin,omitempty"`
	Reentry   string            `yaml:"reentry,omitempty"`
	Ballots   []*vote.Ballot    `yaml:"ballots,omitempty"`
	Variable  string            `yaml:"variable,omitempty"`
	Backtrace []*backtrace.Step `yaml:"backtrace,omitempty"`
	Warnings  []string          `yaml:"warnings,omitempty"`
}

// CodeLocation represents a location in the code
type CodeLocation struct {
	FilePath    string `yaml:"filePath"`              // File path
	LineNumber  int    `yaml:"lineNumber"`            // Line number
	ColumnStart int    `yaml:"columnStart,omitempty"` // Starting column
}

// Origins returns distinct chain origins in finding order
func (r *Report) Origins() []string {
	var result []string
	seen := map[string]bool{}
	for _, finding := range r.Findings {
		if finding.Origin == "" || seen[finding.Origin] {
			continue
		}
		seen[finding.Origin] = true
		result = append(result, finding.Origin)
	}
	return result
}
