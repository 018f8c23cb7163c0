package completion

import (
	"errors"
	"testing"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/lsp"
)

// applySynthesized synthesizes and applies in one step for content checks.
func applySynthesized(t *testing.T, doc *buffer.Buffer, anchor Anchor, cand Candidate, policy ReplacePolicy) {
	t.Helper()

	tx, err := Synthesize(doc, anchor, cand, policy)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if err := doc.Apply(tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
}

func TestSynthesizePrefixTrim(t *testing.T) {
	doc := buffer.NewBufferFromString("pri")
	anchor := Anchor{Start: 0, Trigger: 3}
	cand := ServerCandidate{Item: lsp.CompletionItem{Label: "private", InsertText: "private"}}

	tx, err := Synthesize(doc, anchor, cand, PreferReplace)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	edits := tx.Edits()
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	if edits[0].NewText != "vate" {
		t.Errorf("expected insert of %q, got %q", "vate", edits[0].NewText)
	}
	if !edits[0].IsInsert() || edits[0].Range.Start != 3 {
		t.Errorf("expected insert-only edit at cursor, got %v", edits[0])
	}

	if err := doc.Apply(tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if doc.Text() != "private" {
		t.Errorf("expected %q, got %q", "private", doc.Text())
	}
}

func TestSynthesizeLabelFallback(t *testing.T) {
	doc := buffer.NewBufferFromString("pri")
	cand := ServerCandidate{Item: lsp.CompletionItem{Label: "println"}}

	applySynthesized(t, doc, Anchor{Start: 0, Trigger: 3}, cand, PreferReplace)
	if doc.Text() != "println" {
		t.Errorf("expected %q, got %q", "println", doc.Text())
	}
}

func TestSynthesizeNonPrefixInsertsOnly(t *testing.T) {
	doc := buffer.NewBufferFromString("xyz")
	cand := ServerCandidate{Item: lsp.CompletionItem{Label: "private", InsertText: "private"}}

	tx, err := Synthesize(doc, Anchor{Start: 0, Trigger: 3}, cand, PreferReplace)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	edits := tx.Edits()
	if len(edits) != 1 || !edits[0].IsInsert() || edits[0].Range.Start != 3 {
		t.Fatalf("expected insert-only edit at cursor, got %v", edits)
	}

	if err := doc.Apply(tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if doc.Text() != "xyzprivate" {
		t.Errorf("typed fragment must survive a non-matching item: expected %q, got %q",
			"xyzprivate", doc.Text())
	}
}

func TestSynthesizeExplicitEditUTF16(t *testing.T) {
	// "𝕊" is 4 bytes and 2 UTF-16 code units, so character 2 is byte 4.
	doc := buffer.NewBufferFromString("𝕊pr")
	cand := ServerCandidate{
		Encoding: lsp.OffsetEncodingUTF16,
		Item: lsp.CompletionItem{
			Label: "print",
			TextEdit: &lsp.CompletionTextEdit{
				Edit: &lsp.TextEdit{
					Range: lsp.Range{
						Start: lsp.Position{Line: 0, Character: 2},
						End:   lsp.Position{Line: 0, Character: 4},
					},
					NewText: "print",
				},
			},
		},
	}

	applySynthesized(t, doc, Anchor{Start: 4, Trigger: 6}, cand, PreferReplace)
	if doc.Text() != "𝕊print" {
		t.Errorf("expected %q, got %q", "𝕊print", doc.Text())
	}
}

func TestSynthesizeInsertReplacePolicy(t *testing.T) {
	edit := &lsp.CompletionTextEdit{
		InsertReplace: &lsp.InsertReplaceEdit{
			NewText: "private",
			Insert: lsp.Range{
				Start: lsp.Position{Line: 0, Character: 0},
				End:   lsp.Position{Line: 0, Character: 3},
			},
			Replace: lsp.Range{
				Start: lsp.Position{Line: 0, Character: 0},
				End:   lsp.Position{Line: 0, Character: 6},
			},
		},
	}
	anchor := Anchor{Start: 0, Trigger: 3}

	doc := buffer.NewBufferFromString("prifoo")
	cand := ServerCandidate{Item: lsp.CompletionItem{Label: "private", TextEdit: edit}}
	applySynthesized(t, doc, anchor, cand, PreferReplace)
	if doc.Text() != "private" {
		t.Errorf("replace policy: expected %q, got %q", "private", doc.Text())
	}

	doc = buffer.NewBufferFromString("prifoo")
	applySynthesized(t, doc, anchor, cand, PreferInsert)
	if doc.Text() != "privatefoo" {
		t.Errorf("insert policy: expected %q, got %q", "privatefoo", doc.Text())
	}
}

func TestSynthesizePathCompletion(t *testing.T) {
	doc := buffer.NewBufferFromString("open ./src/ma")
	cand := PathCandidate{Path: "./src/main.rs", Kind: PathKindFile}

	tx, err := Synthesize(doc, Anchor{Start: 11, Trigger: 13}, cand, PreferReplace)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	edits := tx.Edits()
	if len(edits) != 1 || edits[0].NewText != "in.rs" {
		t.Fatalf("expected insert of %q, got %v", "in.rs", edits)
	}

	if err := doc.Apply(tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if doc.Text() != "open ./src/main.rs" {
		t.Errorf("expected %q, got %q", "open ./src/main.rs", doc.Text())
	}
}

func TestSynthesizePathDirectory(t *testing.T) {
	doc := buffer.NewBufferFromString("open ./sr")
	cand := PathCandidate{Path: "./src/", Kind: PathKindDirectory}

	applySynthesized(t, doc, Anchor{Start: 7, Trigger: 9}, cand, PreferReplace)
	if doc.Text() != "open ./src/" {
		t.Errorf("expected %q, got %q", "open ./src/", doc.Text())
	}
}

func TestSynthesizePathTokenMiss(t *testing.T) {
	doc := buffer.NewBufferFromString("hello")
	cand := PathCandidate{Path: "./src/main.rs", Kind: PathKindFile}

	_, err := Synthesize(doc, Anchor{Start: 0, Trigger: 5}, cand, PreferReplace)
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("expected ErrSynthesisFailed, got %v", err)
	}
}

func TestSynthesizeEmptyTextEdit(t *testing.T) {
	doc := buffer.NewBufferFromString("pri")
	cand := ServerCandidate{Item: lsp.CompletionItem{Label: "x", TextEdit: &lsp.CompletionTextEdit{}}}

	_, err := Synthesize(doc, Anchor{Start: 0, Trigger: 3}, cand, PreferReplace)
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("expected ErrSynthesisFailed, got %v", err)
	}
}
