package callgraph

import (
	"github.com/viant/toa/analyzer/ledger"
	"github.com/viant/toa/analyzer/sink"
)

type Option func(*Index)

// WithLedger sets the ledger resolution records to
func WithLedger(l *ledger.Ledger) Option {
	return func(i *Index) {
		i.ledger = l
	}
}

// WithSinks sets sink names
func WithSinks(sinks *sink.Set) Option {
	return func(i *Index) {
		i.sinks = sinks
	}
}
