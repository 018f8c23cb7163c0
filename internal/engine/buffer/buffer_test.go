package buffer

import (
	"errors"
	"testing"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()

	if !b.IsEmpty() {
		t.Error("new buffer should be empty")
	}

	if b.Len() != 0 {
		t.Errorf("expected length 0, got %d", b.Len())
	}

	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
}

func TestNewBufferFromString(t *testing.T) {
	text := "Hello, World!"
	b := NewBufferFromString(text)

	if b.Text() != text {
		t.Errorf("expected %q, got %q", text, b.Text())
	}

	if b.Len() != int64(len(text)) {
		t.Errorf("expected length %d, got %d", len(text), b.Len())
	}
}

func TestBufferLines(t *testing.T) {
	b := NewBufferFromString("line1\nline2\nline3")

	if b.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", b.LineCount())
	}

	for i, want := range []string{"line1", "line2", "line3"} {
		if got := b.LineText(uint32(i)); got != want {
			t.Errorf("line %d: expected %q, got %q", i, want, got)
		}
	}

	if b.LineStartOffset(1) != 6 {
		t.Errorf("expected line 1 start 6, got %d", b.LineStartOffset(1))
	}

	if b.LineEndOffset(1) != 11 {
		t.Errorf("expected line 1 end 11, got %d", b.LineEndOffset(1))
	}
}

func TestBufferInsert(t *testing.T) {
	b := NewBufferFromString("Hello World")

	end, err := b.Insert(5, ",")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if end != 6 {
		t.Errorf("expected end position 6, got %d", end)
	}

	if b.Text() != "Hello, World" {
		t.Errorf("expected 'Hello, World', got %q", b.Text())
	}
}

func TestBufferInsertOutOfRange(t *testing.T) {
	b := NewBufferFromString("Hello")

	_, err := b.Insert(100, "X")
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}

	_, err = b.Insert(-1, "X")
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestBufferDelete(t *testing.T) {
	b := NewBufferFromString("Hello, World!")

	if err := b.Delete(5, 7); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if b.Text() != "HelloWorld!" {
		t.Errorf("expected 'HelloWorld!', got %q", b.Text())
	}
}

func TestBufferReplace(t *testing.T) {
	b := NewBufferFromString("Hello, World!")

	end, err := b.Replace(7, 12, "Gopher")
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if end != 13 {
		t.Errorf("expected end position 13, got %d", end)
	}

	if b.Text() != "Hello, Gopher!" {
		t.Errorf("expected 'Hello, Gopher!', got %q", b.Text())
	}
}

func TestBufferOffsetToPoint(t *testing.T) {
	b := NewBufferFromString("abc\ndef\nghi")

	tests := []struct {
		offset ByteOffset
		want   Point
	}{
		{0, Point{Line: 0, Column: 0}},
		{3, Point{Line: 0, Column: 3}},
		{4, Point{Line: 1, Column: 0}},
		{7, Point{Line: 1, Column: 3}},
		{8, Point{Line: 2, Column: 0}},
		{11, Point{Line: 2, Column: 3}},
	}

	for _, tt := range tests {
		got := b.OffsetToPoint(tt.offset)
		if got != tt.want {
			t.Errorf("OffsetToPoint(%d) = %v, want %v", tt.offset, got, tt.want)
		}
		if back := b.PointToOffset(got); back != tt.offset {
			t.Errorf("PointToOffset(%v) = %d, want %d", got, back, tt.offset)
		}
	}
}

func TestBufferUTF16Conversion(t *testing.T) {
	// "𝕊" is outside the BMP: 4 bytes in UTF-8, 2 code units in UTF-16.
	b := NewBufferFromString("a𝕊b\nxy")

	p := b.OffsetToPointUTF16(5) // offset of 'b'
	if p.Line != 0 || p.Column != 3 {
		t.Errorf("expected (0:3 utf16), got %v", p)
	}

	off := b.PointUTF16ToOffset(PointUTF16{Line: 0, Column: 3})
	if off != 5 {
		t.Errorf("expected offset 5, got %d", off)
	}

	off = b.PointUTF16ToOffset(PointUTF16{Line: 1, Column: 1})
	if off != 8 {
		t.Errorf("expected offset 8, got %d", off)
	}
}

func TestNewTransactionRejectsOverlap(t *testing.T) {
	_, err := NewTransaction(
		NewEdit(NewRange(0, 5), "x"),
		NewEdit(NewRange(3, 8), "y"),
	)
	if !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("expected ErrEditsOverlap, got %v", err)
	}

	// Out of order counts as overlap too.
	_, err = NewTransaction(
		NewEdit(NewRange(10, 12), "x"),
		NewEdit(NewRange(0, 2), "y"),
	)
	if !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("expected ErrEditsOverlap, got %v", err)
	}
}

func TestBufferApplyTransaction(t *testing.T) {
	b := NewBufferFromString("one two three")

	tx, err := NewTransaction(
		NewEdit(NewRange(0, 3), "ONE"),
		NewEdit(NewRange(8, 13), "3"),
	)
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	if err := b.Apply(tx); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if b.Text() != "ONE two 3" {
		t.Errorf("expected 'ONE two 3', got %q", b.Text())
	}
}

func TestBufferApplyOutOfRange(t *testing.T) {
	b := NewBufferFromString("short")

	tx, err := NewTransaction(NewEdit(NewRange(2, 99), "x"))
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	if err := b.Apply(tx); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}

	if b.Text() != "short" {
		t.Errorf("buffer modified on failed apply: %q", b.Text())
	}
}

func TestTransactionChangesAt(t *testing.T) {
	tx, err := NewTransaction(
		NewEdit(NewRange(0, 2), "a"),
		NewEdit(NewRange(5, 5), "ins"),
		NewEdit(NewRange(9, 12), "b"),
	)
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	at5 := tx.ChangesAt(5)
	if len(at5) != 1 || at5[0].NewText != "ins" {
		t.Errorf("expected single insert at 5, got %v", at5)
	}

	// Boundary of a replace counts.
	at2 := tx.ChangesAt(2)
	if len(at2) != 1 || at2[0].NewText != "a" {
		t.Errorf("expected replace edit at boundary 2, got %v", at2)
	}

	if got := tx.ChangesAt(7); got != nil {
		t.Errorf("expected no edits at 7, got %v", got)
	}
}

func TestBufferSavepointRestore(t *testing.T) {
	b := NewBufferFromString("base")

	// Restore before any savepoint is a no-op.
	b.RestoreSavepoint()
	if b.Text() != "base" {
		t.Errorf("restore without savepoint changed content: %q", b.Text())
	}

	b.Savepoint()
	if _, err := b.Insert(4, " plus preview"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	b.RestoreSavepoint()
	if b.Text() != "base" {
		t.Errorf("expected 'base' after restore, got %q", b.Text())
	}

	// Idempotent.
	b.RestoreSavepoint()
	if b.Text() != "base" {
		t.Errorf("second restore changed content: %q", b.Text())
	}
}

func TestBufferSavepointReplaced(t *testing.T) {
	b := NewBufferFromString("v1")

	b.Savepoint()
	if _, err := b.Replace(0, 2, "v2"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	// New savepoint captures v2; restore must not go back to v1.
	b.Savepoint()
	if _, err := b.Replace(0, 2, "v3"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	b.RestoreSavepoint()
	if b.Text() != "v2" {
		t.Errorf("expected 'v2' after restore, got %q", b.Text())
	}
}

func TestBufferClearSavepoint(t *testing.T) {
	b := NewBufferFromString("keep")

	b.Savepoint()
	b.ClearSavepoint()

	if _, err := b.Insert(4, "!"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	b.RestoreSavepoint()
	if b.Text() != "keep!" {
		t.Errorf("restore after clear should be a no-op, got %q", b.Text())
	}
}

func TestBufferRevisionChanges(t *testing.T) {
	b := NewBufferFromString("x")
	r1 := b.RevisionID()

	if _, err := b.Insert(1, "y"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if b.RevisionID() == r1 {
		t.Error("revision should change after insert")
	}
}
