package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/lsp"
)

// recordingScheduler hands posted callbacks to the test so delivery timing
// is controlled explicitly.
type recordingScheduler struct {
	posts chan func()
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{posts: make(chan func(), 4)}
}

func (r *recordingScheduler) Post(fn func()) error {
	r.posts <- fn
	return nil
}

func (r *recordingScheduler) next(t *testing.T) func() {
	t.Helper()
	select {
	case fn := <-r.posts:
		return fn
	case <-time.After(2 * time.Second):
		t.Fatal("no callback delivered")
		return nil
	}
}

func (r *recordingScheduler) expectNone(t *testing.T) {
	t.Helper()
	select {
	case <-r.posts:
		t.Fatal("unexpected callback delivered")
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeResolver answers resolve requests from canned data.
type fakeResolver struct {
	supported bool
	item      lsp.CompletionItem
	err       error
}

func (f *fakeResolver) ResolveSupported() bool { return f.supported }

func (f *fakeResolver) ResolveCompletionItem(ctx context.Context, item lsp.CompletionItem) (*lsp.CompletionItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	resolved := f.item
	return &resolved, nil
}

func resolverSource(r Resolver, ok bool) ResolverSource {
	return ResolverSourceFunc(func(id lsp.ServerID) (Resolver, bool) { return r, ok })
}

func newResolveSession(t *testing.T, content string, cand Candidate, r Resolver, sched *recordingScheduler) (*buffer.Buffer, *Session) {
	t.Helper()

	doc := buffer.NewBufferFromString(content)
	s, err := NewSession(doc, Anchor{Start: 0, Trigger: doc.Len()}, []Candidate{cand},
		WithResolverSource(resolverSource(r, r != nil)),
		WithScheduler(sched),
	)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return doc, s
}

func TestEnsureItemResolvedSwapsCandidate(t *testing.T) {
	unresolved := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private", InsertText: "private"}}
	resolved := unresolved.Item
	resolved.Detail = "fn private()"
	resolved.Documentation = "docs"

	sched := newRecordingScheduler()
	_, s := newResolveSession(t, "pri", unresolved, &fakeResolver{supported: true, item: resolved}, sched)

	if !s.EnsureItemResolved(context.Background()) {
		t.Fatal("expected a resolve request to be issued")
	}

	sched.next(t)()

	sel, ok := s.Menu().Selection()
	if !ok {
		t.Fatal("selection lost after swap")
	}
	sc := sel.(ServerCandidate)
	if !sc.Resolved || sc.Item.Detail != "fn private()" {
		t.Errorf("expected resolved candidate in place, got %+v", sc)
	}
	if s.Menu().Contains(unresolved) {
		t.Error("original unresolved candidate should be gone")
	}
}

func TestEnsureItemResolvedRaceAfterAbort(t *testing.T) {
	unresolved := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private"}}
	resolved := unresolved.Item
	resolved.Documentation = "docs"

	sched := newRecordingScheduler()
	doc, s := newResolveSession(t, "pri", unresolved, &fakeResolver{supported: true, item: resolved}, sched)

	if !s.EnsureItemResolved(context.Background()) {
		t.Fatal("expected a resolve request to be issued")
	}
	fn := sched.next(t)

	s.Abort()

	// The popup closed before delivery: the result must be discarded
	// without touching anything.
	fn()

	if !s.IsEmpty() {
		t.Error("aborted session must stay empty")
	}
	if doc.Text() != "pri" {
		t.Errorf("stale resolution must not touch the document, got %q", doc.Text())
	}
}

func TestEnsureItemResolvedStaleAfterSupersede(t *testing.T) {
	unresolved := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private"}}
	resolved := unresolved.Item
	resolved.Documentation = "docs"

	sched := newRecordingScheduler()
	_, s := newResolveSession(t, "pri", unresolved, &fakeResolver{supported: true, item: resolved}, sched)

	if !s.EnsureItemResolved(context.Background()) {
		t.Fatal("expected a resolve request to be issued")
	}
	fn := sched.next(t)

	// Replace the candidate set before delivery.
	s.Menu().Clear()
	s.AddCandidates(insertCand("other"))

	fn()

	sel, _ := s.Menu().Selection()
	if sel.DisplayLabel() != "other" {
		t.Errorf("stale result must not re-insert a superseded candidate, got %v", sel)
	}
}

func TestEnsureItemResolvedPreconditions(t *testing.T) {
	sched := newRecordingScheduler()

	// Already resolved.
	_, s := newResolveSession(t, "pri", insertCand("private"), &fakeResolver{supported: true}, sched)
	if s.EnsureItemResolved(context.Background()) {
		t.Error("resolved candidate should not trigger a request")
	}

	// Server lacks resolve support.
	unresolved := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private"}}
	_, s = newResolveSession(t, "pri", unresolved, &fakeResolver{supported: false}, sched)
	if s.EnsureItemResolved(context.Background()) {
		t.Error("unsupported server should not trigger a request")
	}

	// Server no longer registered.
	_, s = newResolveSession(t, "pri", unresolved, nil, sched)
	if s.EnsureItemResolved(context.Background()) {
		t.Error("missing server should not trigger a request")
	}

	// Path candidates have nothing to resolve.
	_, s = newResolveSession(t, "./x", PathCandidate{Path: "./x/y", Kind: PathKindFile}, &fakeResolver{supported: true}, sched)
	if s.EnsureItemResolved(context.Background()) {
		t.Error("path candidate should not trigger a request")
	}

	sched.expectNone(t)
}

func TestEnsureItemResolvedFailureIsSilent(t *testing.T) {
	unresolved := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private"}}
	sched := newRecordingScheduler()
	_, s := newResolveSession(t, "pri", unresolved, &fakeResolver{supported: true, err: errors.New("boom")}, sched)

	if !s.EnsureItemResolved(context.Background()) {
		t.Fatal("expected a resolve request to be issued")
	}

	// Failure never reaches the owner loop; the candidate stays unresolved.
	sched.expectNone(t)
	sel, _ := s.Menu().Selection()
	if sel.(ServerCandidate).Resolved {
		t.Error("failed resolution must leave the candidate unresolved")
	}
}

func TestValidateResolvesAdditionalEditsAsync(t *testing.T) {
	unresolved := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private", InsertText: "private"}}
	resolved := unresolved.Item
	resolved.AdditionalTextEdits = []lsp.TextEdit{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 1, Character: 0},
			End:   lsp.Position{Line: 1, Character: 0},
		},
		NewText: "use foo;\n",
	}}

	sched := newRecordingScheduler()
	doc := buffer.NewBufferFromString("pri\n")
	s, err := NewSession(doc, Anchor{Start: 0, Trigger: 3}, []Candidate{unresolved},
		WithResolverSource(resolverSource(&fakeResolver{supported: true, item: resolved}, true)),
		WithScheduler(sched),
	)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if _, err := s.Validate(context.Background()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if doc.Text() != "private\n" {
		t.Fatalf("commit should apply only the primary edit first, got %q", doc.Text())
	}

	sched.next(t)()

	if doc.Text() != "private\nuse foo;\n" {
		t.Errorf("resolved additional edits should apply after commit, got %q", doc.Text())
	}
}

func TestValidateResolvedEditsDroppedWhenBufferMovesOn(t *testing.T) {
	unresolved := ServerCandidate{Server: 1, Item: lsp.CompletionItem{Label: "private", InsertText: "private"}}
	resolved := unresolved.Item
	resolved.AdditionalTextEdits = []lsp.TextEdit{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 0, Character: 0},
			End:   lsp.Position{Line: 0, Character: 0},
		},
		NewText: "use foo;\n",
	}}

	sched := newRecordingScheduler()
	doc := buffer.NewBufferFromString("pri\n")
	s, err := NewSession(doc, Anchor{Start: 0, Trigger: 3}, []Candidate{unresolved},
		WithResolverSource(resolverSource(&fakeResolver{supported: true, item: resolved}, true)),
		WithScheduler(sched),
	)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if _, err := s.Validate(context.Background()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	fn := sched.next(t)

	// The user kept typing before the resolution arrived.
	if _, err := doc.Insert(doc.Len(), "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	fn()

	if doc.Text() != "private\nx" {
		t.Errorf("stale additional edits must be dropped, got %q", doc.Text())
	}
}
