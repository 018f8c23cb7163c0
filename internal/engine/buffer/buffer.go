package buffer

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrNoSavepoint      = errors.New("no savepoint set")
)

// Buffer is a thread-safe text buffer with byte-offset addressing,
// line/column conversion, atomic transactions and a single-slot savepoint
// used by the completion engine to roll previews back.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []ByteOffset // byte offset of every line start; always len >= 1
	revisionID RevisionID
	savepoint  *savepoint
}

// savepoint captures the buffer content at a point in time.
type savepoint struct {
	text     string
	revision RevisionID
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	b := &Buffer{
		revisionID: NewRevisionID(),
	}
	b.reindex()
	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string) *Buffer {
	b := &Buffer{
		text:       s,
		revisionID: NewRevisionID(),
	}
	b.reindex()
	return b
}

// reindex rebuilds the line-start index. Callers hold the write lock.
func (b *Buffer) reindex() {
	b.lineStarts = b.lineStarts[:0]
	b.lineStarts = append(b.lineStarts, 0)
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == '\n' {
			b.lineStarts = append(b.lineStarts, ByteOffset(i+1))
		}
	}
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// TextRange returns text in the given byte range, clamped to the buffer.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.slice(start, end)
}

// slice returns the clamped substring. Callers hold a lock.
func (b *Buffer) slice(start, end ByteOffset) string {
	n := ByteOffset(len(b.text))
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		return ""
	}
	return b.text[start:end]
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(len(b.text))
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(len(b.lineStarts))
}

// LineText returns the text of a specific line (without newline).
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.slice(b.lineStart(line), b.lineEnd(line))
}

// LineStartOffset returns the byte offset of the start of a line.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineStart(line)
}

// LineEndOffset returns the byte offset of the end of a line (before newline).
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnd(line)
}

func (b *Buffer) lineStart(line uint32) ByteOffset {
	if int(line) >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	return b.lineStarts[line]
}

func (b *Buffer) lineEnd(line uint32) ByteOffset {
	if int(line)+1 < len(b.lineStarts) {
		return b.lineStarts[line+1] - 1
	}
	return ByteOffset(len(b.text))
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset > ByteOffset(len(b.text)) {
		offset = ByteOffset(len(b.text))
	}

	line := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1

	return Point{
		Line:   uint32(line),
		Column: uint32(offset - b.lineStarts[line]),
	}
}

// PointToOffset converts line/column to byte offset.
func (b *Buffer) PointToOffset(point Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := b.lineStart(point.Line)
	end := b.lineEnd(point.Line)
	offset := start + ByteOffset(point.Column)
	if offset > end {
		offset = end
	}
	return offset
}

// OffsetToPointUTF16 converts a byte offset to UTF-16 line/column.
func (b *Buffer) OffsetToPointUTF16(offset ByteOffset) PointUTF16 {
	p := b.OffsetToPoint(offset)

	b.mu.RLock()
	defer b.mu.RUnlock()
	lineStart := b.lineStart(p.Line)
	prefix := b.slice(lineStart, lineStart+ByteOffset(p.Column))
	return PointUTF16{Line: p.Line, Column: utf16ColumnFromString(prefix)}
}

// PointUTF16ToOffset converts UTF-16 line/column to byte offset.
func (b *Buffer) PointUTF16ToOffset(point PointUTF16) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := b.lineStart(point.Line)
	end := b.lineEnd(point.Line)
	lineText := b.slice(start, end)
	return start + ByteOffset(byteOffsetFromUTF16Column(lineText, point.Column))
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > ByteOffset(len(b.text)) {
		return 0, ErrOffsetOutOfRange
	}

	b.text = b.text[:offset] + text + b.text[offset:]
	b.reindex()
	b.revisionID = NewRevisionID()

	return offset + ByteOffset(len(text)), nil
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > ByteOffset(len(b.text)) {
		return ErrRangeInvalid
	}

	b.text = b.text[:start] + b.text[end:]
	b.reindex()
	b.revisionID = NewRevisionID()

	return nil
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > ByteOffset(len(b.text)) {
		return 0, ErrRangeInvalid
	}

	b.text = b.text[:start] + text + b.text[end:]
	b.reindex()
	b.revisionID = NewRevisionID()

	return start + ByteOffset(len(text)), nil
}

// Apply applies a transaction atomically. All edit positions refer to the
// buffer content before the call. Returns ErrRangeInvalid if any edit falls
// outside the buffer; the buffer is unchanged on error.
func (b *Buffer) Apply(t Transaction) error {
	if t.IsEmpty() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := ByteOffset(len(b.text))
	for _, e := range t.Edits() {
		if e.Range.Start < 0 || !e.Range.IsValid() || e.Range.End > n {
			return ErrRangeInvalid
		}
	}

	// Build the result in one pass; edits are sorted ascending.
	var sb strings.Builder
	var last ByteOffset
	for _, e := range t.Edits() {
		sb.WriteString(b.text[last:e.Range.Start])
		sb.WriteString(e.NewText)
		last = e.Range.End
	}
	sb.WriteString(b.text[last:])

	b.text = sb.String()
	b.reindex()
	b.revisionID = NewRevisionID()
	return nil
}

// Savepoints

// Savepoint captures the current content so a later RestoreSavepoint can
// roll the buffer back to it. Only one savepoint exists at a time; taking a
// new one replaces the previous.
func (b *Buffer) Savepoint() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.savepoint = &savepoint{text: b.text, revision: b.revisionID}
}

// RestoreSavepoint rolls the buffer content back to the last savepoint.
// It is idempotent: restoring twice in a row leaves the same content. When
// no savepoint has been taken it is a no-op.
func (b *Buffer) RestoreSavepoint() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.savepoint == nil || b.text == b.savepoint.text {
		return
	}
	b.text = b.savepoint.text
	b.reindex()
	b.revisionID = NewRevisionID()
}

// ClearSavepoint drops the current savepoint, if any.
func (b *Buffer) ClearSavepoint() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.savepoint = nil
}

// HasSavepoint returns true if a savepoint is set.
func (b *Buffer) HasSavepoint() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.savepoint != nil
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// Helper functions for UTF-16 conversion

// utf16ColumnFromString counts UTF-16 code units in a string.
func utf16ColumnFromString(s string) uint32 {
	var col uint32
	for _, r := range s {
		if r >= 0x10000 {
			col += 2 // Surrogate pair (characters outside BMP)
		} else {
			col++
		}
	}
	return col
}

// byteOffsetFromUTF16Column converts a UTF-16 column to byte offset within a line.
func byteOffsetFromUTF16Column(line string, utf16Col uint32) int {
	var col uint32
	var byteOffset int

	for _, r := range line {
		if col >= utf16Col {
			break
		}
		if r >= 0x10000 {
			col += 2 // Surrogate pair
		} else {
			col++
		}
		byteOffset += utf8.RuneLen(r)
	}

	return byteOffset
}
