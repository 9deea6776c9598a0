// Package sink collects diagnostic rows produced while evaluating a relation.
//
// A Sink is append-only and has no internal locking: one evaluation pass owns
// it, and concurrent workers each fill their own Sink which the owner merges
// afterwards in a fixed order.
package sink

import (
	"github.com/specialistvlad/primcall/internal/value"
)

// Sink is an ordered, append-only collection of error rows.
type Sink struct {
	rows []value.Row
}

// New returns an empty sink.
func New() *Sink {
	return &Sink{}
}

// Append records one {source_locator, message} row.
func (s *Sink) Append(source, message string) {
	s.rows = append(s.rows, value.Row{value.Text(source), value.Text(message)})
}

// Merge appends the rows of others, in argument order, preserving each
// sink's own order.
func (s *Sink) Merge(others ...*Sink) {
	for _, o := range others {
		if o == nil || o == s {
			continue
		}
		s.rows = append(s.rows, o.rows...)
	}
}

// Rows returns a copy of the recorded rows.
func (s *Sink) Rows() []value.Row {
	out := make([]value.Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len reports how many rows were recorded.
func (s *Sink) Len() int {
	return len(s.rows)
}

// Source returns the source locator of an error row.
func Source(r value.Row) string {
	return r[0].AsString()
}

// Message returns the message of an error row.
func Message(r value.Row) string {
	return r[1].AsString()
}
