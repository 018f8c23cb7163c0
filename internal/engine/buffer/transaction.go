package buffer

import "errors"

// Errors returned by transaction construction.
var (
	ErrEditsOverlap   = errors.New("transaction edits overlap or are out of order")
	ErrEditOutOfRange = errors.New("transaction edit out of range")
)

// Transaction is an ordered set of non-overlapping edits describing one
// atomic mutation of a buffer. Edits are kept sorted by ascending start
// offset; ranges never overlap. Positions always refer to the buffer
// content as it was before the transaction is applied.
type Transaction struct {
	edits []Edit
}

// NewTransaction builds a transaction from the given edits.
// Edits must be sorted by ascending start offset and must not overlap;
// NewTransaction returns ErrEditsOverlap otherwise.
func NewTransaction(edits ...Edit) (Transaction, error) {
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.Start < edits[i-1].Range.End {
			return Transaction{}, ErrEditsOverlap
		}
	}
	for _, e := range edits {
		if !e.Range.IsValid() || e.Range.Start < 0 {
			return Transaction{}, ErrEditOutOfRange
		}
	}
	return Transaction{edits: edits}, nil
}

// InsertAt returns a single-edit transaction inserting text at offset.
func InsertAt(offset ByteOffset, text string) Transaction {
	return Transaction{edits: []Edit{NewInsert(offset, text)}}
}

// ReplaceRange returns a single-edit transaction replacing the range with text.
func ReplaceRange(r Range, text string) Transaction {
	return Transaction{edits: []Edit{NewEdit(r, text)}}
}

// Edits returns the transaction's edits in ascending offset order.
// The returned slice must not be modified.
func (t Transaction) Edits() []Edit {
	return t.edits
}

// IsEmpty returns true if the transaction contains no edits.
func (t Transaction) IsEmpty() bool {
	return len(t.edits) == 0
}

// Delta returns the total change in buffer length the transaction causes.
func (t Transaction) Delta() ByteOffset {
	var d ByteOffset
	for _, e := range t.edits {
		d += e.Delta()
	}
	return d
}

// ChangesAt returns the edits whose range touches the given offset,
// boundaries included. Callers use this to report which completion edits
// landed at the trigger position.
func (t Transaction) ChangesAt(offset ByteOffset) []Edit {
	var out []Edit
	for _, e := range t.edits {
		if e.Range.Touches(offset) {
			out = append(out, e)
		}
	}
	return out
}

// OverlapsRange returns true if any edit in the transaction overlaps r.
// Insert-only edits at the boundary of r do not count as overlapping.
func (t Transaction) OverlapsRange(r Range) bool {
	for _, e := range t.edits {
		if e.Range.Overlaps(r) {
			return true
		}
		if e.Range.IsEmpty() && r.Contains(e.Range.Start) {
			return true
		}
	}
	return false
}
