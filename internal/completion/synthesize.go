package completion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/lsp"
)

// ReplacePolicy selects which range of an insert+replace completion edit is
// applied. The caller fixes it once per session.
type ReplacePolicy int

const (
	// PreferReplace applies the replace range, consuming text after the
	// cursor that the item supersedes.
	PreferReplace ReplacePolicy = iota
	// PreferInsert applies the insert range, leaving text after the
	// cursor untouched.
	PreferInsert
)

// pathTokenRE matches the trailing filesystem-path-like token of a line
// prefix: one or more ./ or ../ segments followed by the rest of the token.
var pathTokenRE = regexp.MustCompile(`((?:\.{0,2}/)+.*)$`)

// Anchor is the replaceable region of a completion popup. Start is the
// leftmost offset the completion may replace; Trigger is the cursor offset
// at popup-open time.
type Anchor struct {
	Start   buffer.ByteOffset
	Trigger buffer.ByteOffset
}

// IsValid reports whether the anchor is well formed.
func (a Anchor) IsValid() bool { return a.Start >= 0 && a.Start <= a.Trigger }

// Synthesize builds the transaction that applies cand at anchor. It reads
// the document at call time and never mutates it.
func Synthesize(doc *buffer.Buffer, anchor Anchor, cand Candidate, policy ReplacePolicy) (buffer.Transaction, error) {
	switch c := cand.(type) {
	case ServerCandidate:
		return synthesizeServer(doc, anchor, c, policy)
	case PathCandidate:
		return synthesizePath(doc, anchor, c)
	default:
		return buffer.Transaction{}, fmt.Errorf("candidate %T: %w", cand, ErrSynthesisFailed)
	}
}

// synthesizeServer handles server items. Items carrying an explicit edit use
// it verbatim after encoding translation; items without one always insert at
// the cursor, trimming the typed-so-far fragment when it is a prefix. Typed
// characters are never deleted on this path, even when the fragment does not
// match the item.
func synthesizeServer(doc *buffer.Buffer, anchor Anchor, c ServerCandidate, policy ReplacePolicy) (buffer.Transaction, error) {
	if c.Item.TextEdit != nil {
		return synthesizeServerEdit(doc, c, policy)
	}

	text := c.Item.InsertText
	if text == "" {
		text = c.Item.Label
	}

	fragment := doc.TextRange(anchor.Start, anchor.Trigger)
	if rest, ok := strings.CutPrefix(text, fragment); ok {
		text = rest
	}
	return buffer.InsertAt(anchor.Trigger, text), nil
}

// synthesizeServerEdit translates the item's explicit edit range from the
// server's offset encoding into byte offsets.
func synthesizeServerEdit(doc *buffer.Buffer, c ServerCandidate, policy ReplacePolicy) (buffer.Transaction, error) {
	edit := c.Item.TextEdit
	pc := lsp.NewPositionConverter(doc.Text(), c.Encoding)

	switch {
	case edit.Edit != nil:
		start, end := pc.RangeToByteRange(edit.Edit.Range)
		r := buffer.Range{Start: buffer.ByteOffset(start), End: buffer.ByteOffset(end)}
		return buffer.ReplaceRange(r, edit.Edit.NewText), nil

	case edit.InsertReplace != nil:
		lr := edit.InsertReplace.Replace
		if policy == PreferInsert {
			lr = edit.InsertReplace.Insert
		}
		start, end := pc.RangeToByteRange(lr)
		r := buffer.Range{Start: buffer.ByteOffset(start), End: buffer.ByteOffset(end)}
		return buffer.ReplaceRange(r, edit.InsertReplace.NewText), nil

	default:
		return buffer.Transaction{}, fmt.Errorf("empty text edit for %q: %w", c.Item.Label, ErrSynthesisFailed)
	}
}

// synthesizePath completes a filesystem path. The trailing path token before
// the cursor identifies what the user already typed of the name; the rest of
// the candidate's file name is inserted at the cursor.
func synthesizePath(doc *buffer.Buffer, anchor Anchor, c PathCandidate) (buffer.Transaction, error) {
	line := doc.OffsetToPoint(anchor.Trigger).Line
	linePrefix := doc.TextRange(doc.LineStartOffset(line), anchor.Trigger)

	_, typed, ok := PathToken(linePrefix)
	if !ok {
		return buffer.Transaction{}, fmt.Errorf("no path token before cursor: %w", ErrSynthesisFailed)
	}

	return buffer.InsertAt(anchor.Trigger, strings.TrimPrefix(c.fileName(), typed)), nil
}
