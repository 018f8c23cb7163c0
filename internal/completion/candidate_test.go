package completion

import (
	"testing"

	"github.com/dshills/quill/internal/lsp"
)

func TestServerCandidateFilterKey(t *testing.T) {
	c := ServerCandidate{Item: lsp.CompletionItem{Label: "println"}}
	if c.FilterKey() != "println" {
		t.Errorf("expected label fallback, got %q", c.FilterKey())
	}

	c.Item.FilterText = "print"
	if c.FilterKey() != "print" {
		t.Errorf("expected filter text, got %q", c.FilterKey())
	}
}

func TestServerCandidateCategory(t *testing.T) {
	c := ServerCandidate{Item: lsp.CompletionItem{Label: "x", Kind: lsp.CompletionItemKindFunction}}
	if c.Category() != "function" {
		t.Errorf("expected function, got %q", c.Category())
	}

	c.Item.Kind = 0
	if c.Category() != "item" {
		t.Errorf("expected item fallback, got %q", c.Category())
	}
}

func TestServerCandidateEqual(t *testing.T) {
	a := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private"}}
	b := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private"}}
	if !a.Equal(b) {
		t.Error("identical candidates should be equal")
	}

	b.Resolved = true
	if a.Equal(b) {
		t.Error("resolved flag must participate in equality")
	}

	c := ServerCandidate{Server: 2, Item: lsp.CompletionItem{Label: "private"}}
	if a.Equal(c) {
		t.Error("server id must participate in equality")
	}

	if a.Equal(PathCandidate{Path: "private"}) {
		t.Error("cross-variant candidates are never equal")
	}
}

func TestPathCandidateFileName(t *testing.T) {
	tests := []struct {
		cand PathCandidate
		want string
	}{
		{PathCandidate{Path: "./src/main.rs", Kind: PathKindFile}, "main.rs"},
		{PathCandidate{Path: "./src/", Kind: PathKindDirectory}, "src/"},
		{PathCandidate{Path: "./src", Kind: PathKindDirectory}, "src/"},
		{PathCandidate{Path: "main.go", Kind: PathKindFile}, "main.go"},
		{PathCandidate{Path: "../lib/util.go", Kind: PathKindSymlink}, "util.go"},
	}

	for _, tt := range tests {
		if got := tt.cand.FilterKey(); got != tt.want {
			t.Errorf("FilterKey(%q) = %q, want %q", tt.cand.Path, got, tt.want)
		}
	}
}

func TestPathKindString(t *testing.T) {
	if PathKindDirectory.String() != "folder" {
		t.Errorf("unexpected kind name %q", PathKindDirectory.String())
	}
	if PathKind(99).String() != "unknown" {
		t.Errorf("unexpected kind name %q", PathKind(99).String())
	}
}
