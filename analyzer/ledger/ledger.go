// Package ledger records per-variable, append-only histories of resolved sources.
package ledger

import (
	"iter"
	"sync"

	"github.com/viant/toa/analyzer/source"
)

// Entry represents a single trace entry
type Entry struct {
	Label string         // "<name>: <value>" description
	Value *source.Source // resolved source
	prev  *Entry
	next  *Entry
}

// Next returns the following entry or nil
func (e *Entry) Next() *Entry {
	return e.next
}

// Prev returns the preceding entry or nil
func (e *Entry) Prev() *Entry {
	return e.prev
}

// Trace is a doubly linked entry sequence of a single variable
type Trace struct {
	head *Entry
	tail *Entry
	size int
}

// Head returns the first entry
func (t *Trace) Head() *Entry {
	return t.head
}

// Tail returns the last entry
func (t *Trace) Tail() *Entry {
	return t.tail
}

// Len returns number of entries
func (t *Trace) Len() int {
	return t.size
}

func (t *Trace) append(entry *Entry) {
	if t.head == nil {
		t.head, t.tail = entry, entry
	} else {
		entry.prev = t.tail
		t.tail.next = entry
		t.tail = entry
	}
	t.size++
}

// Ledger holds variable traces of a single analysis run
type Ledger struct {
	mux    sync.RWMutex
	traces map[string]*Trace
	order  []string
}

// Record appends an entry to the variable trace
func (l *Ledger) Record(name string, value *source.Source) *Entry {
	entry := &Entry{Label: name + ": " + value.String(), Value: value}
	l.mux.Lock()
	defer l.mux.Unlock()
	trace, ok := l.traces[name]
	if !ok {
		trace = &Trace{}
		l.traces[name] = trace
		l.order = append(l.order, name)
	}
	trace.append(entry)
	return entry
}

// Trace returns the variable trace or nil
func (l *Ledger) Trace(name string) *Trace {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return l.traces[name]
}

// Iterate yields variable entries in insertion order
func (l *Ledger) Iterate(name string) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, entry := range l.entries(name) {
			if !yield(entry) {
				return
			}
		}
	}
}

func (l *Ledger) entries(name string) []*Entry {
	l.mux.RLock()
	defer l.mux.RUnlock()
	trace := l.traces[name]
	if trace == nil {
		return nil
	}
	result := make([]*Entry, 0, trace.size)
	for entry := trace.head; entry != nil; entry = entry.next {
		result = append(result, entry)
	}
	return result
}

// Variables returns variable names in first recorded order
func (l *Ledger) Variables() []string {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return append([]string{}, l.order...)
}

// Snapshot returns a copy of all traces
func (l *Ledger) Snapshot() []*Variable {
	var result []*Variable
	for _, name := range l.Variables() {
		variable := &Variable{Name: name}
		for entry := range l.Iterate(name) {
			variable.Entries = append(variable.Entries, &Record{Description: entry.Label, Value: entry.Value})
		}
		result = append(result, variable)
	}
	return result
}

// New creates a ledger
func New() *Ledger {
	return &Ledger{traces: map[string]*Trace{}}
}
