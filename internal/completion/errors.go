package completion

import "errors"

// Errors returned by the completion engine.
var (
	// ErrSynthesisFailed marks a per-candidate edit synthesis failure.
	// The failing Update or Validate step no-ops; the buffer stays at its
	// restored baseline.
	ErrSynthesisFailed = errors.New("edit synthesis failed")

	// ErrInvalidAnchor is returned when the anchor's start lies after its
	// trigger offset or outside the document.
	ErrInvalidAnchor = errors.New("invalid completion anchor")

	// ErrSessionClosed is returned by lifecycle events after the session
	// reached a terminal state.
	ErrSessionClosed = errors.New("completion session closed")

	// ErrEditConflict marks additional edits that overlap the committed
	// completion's own range, a server policy violation.
	ErrEditConflict = errors.New("additional edit overlaps completion edit")
)
