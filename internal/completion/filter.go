package completion

import "github.com/dshills/quill/internal/engine/buffer"

// FilterResult is the outcome of RecomputeFilter.
type FilterResult int

const (
	// FilterActive keeps the popup open over the rescored list.
	FilterActive FilterResult = iota
	// FilterDismiss closes the popup: the cursor backed out of the
	// replaceable region.
	FilterDismiss
)

// RecomputeFilter rescores the live candidates against the fragment between
// the anchor start and cursor. A cursor left of the anchor start dismisses
// the popup, which behaves exactly like Abort.
func (s *Session) RecomputeFilter(cursor buffer.ByteOffset) FilterResult {
	if s.state != StateOpen {
		return FilterDismiss
	}
	if cursor < s.anchor.Start {
		s.Abort()
		return FilterDismiss
	}

	s.menu.Score(s.doc.TextRange(s.anchor.Start, cursor), true)
	return FilterActive
}
