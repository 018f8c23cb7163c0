package completion

import (
	"context"
	"fmt"
	"sort"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/event"
	"github.com/dshills/quill/internal/lsp"
)

// State is the lifecycle state of a completion session.
type State int

const (
	StateOpen State = iota
	StateCommitted
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return "open"
	}
}

// LastCompletion records the edits a completion applied at the trigger
// offset. Auto-pairing and indent logic consume it; the session only
// publishes it.
type LastCompletion struct {
	TriggerOffset buffer.ByteOffset
	Changes       []buffer.Edit
}

// Resolver fetches lazy completion-item properties from a language server.
// *lsp.Server satisfies it.
type Resolver interface {
	ResolveSupported() bool
	ResolveCompletionItem(ctx context.Context, item lsp.CompletionItem) (*lsp.CompletionItem, error)
}

// ResolverSource looks up the resolver for a server id. A false return
// means the server is no longer registered; the session proceeds without
// resolution.
type ResolverSource interface {
	ResolverFor(id lsp.ServerID) (Resolver, bool)
}

// ResolverSourceFunc adapts a lookup function to ResolverSource.
type ResolverSourceFunc func(id lsp.ServerID) (Resolver, bool)

// ResolverFor calls f.
func (f ResolverSourceFunc) ResolverFor(id lsp.ServerID) (Resolver, bool) { return f(id) }

// Session drives one completion popup through preview, commit and abort.
// Every lifecycle event first restores the document to the popup baseline,
// so previews replace each other and never stack. All methods must be
// called from the owner goroutine that mutates the document.
type Session struct {
	doc    *buffer.Buffer
	anchor Anchor
	menu   *Menu
	state  State
	policy ReplacePolicy

	servers ResolverSource
	sched   event.Scheduler

	last *LastCompletion
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithReplacePolicy fixes which range of insert+replace edits is applied.
func WithReplacePolicy(p ReplacePolicy) SessionOption {
	return func(s *Session) { s.policy = p }
}

// WithResolverSource provides language-server lookup for item resolution.
func WithResolverSource(src ResolverSource) SessionOption {
	return func(s *Session) { s.servers = src }
}

// WithScheduler provides the owner-loop scheduler resolution results are
// delivered on. Without one, resolution is disabled.
func WithScheduler(sched event.Scheduler) SessionOption {
	return func(s *Session) { s.sched = sched }
}

// NewSession opens a popup over doc with an initial candidate batch and
// takes the savepoint every later preview restores to.
func NewSession(doc *buffer.Buffer, anchor Anchor, cands []Candidate, opts ...SessionOption) (*Session, error) {
	if !anchor.IsValid() || anchor.Trigger > doc.Len() {
		return nil, fmt.Errorf("anchor %d..%d: %w", anchor.Start, anchor.Trigger, ErrInvalidAnchor)
	}

	s := &Session{
		doc:    doc,
		anchor: anchor,
		menu:   NewMenu(cands...),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc.Savepoint()
	return s, nil
}

// Menu exposes the live candidate store for focus movement and rendering.
func (s *Session) Menu() *Menu { return s.menu }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Anchor returns the popup's replaceable region.
func (s *Session) Anchor() Anchor { return s.anchor }

// IsEmpty reports whether the session holds no candidates.
func (s *Session) IsEmpty() bool { return s.menu.IsEmpty() }

// LastCompletion returns the record of the most recent preview or commit,
// or nil when none was applied.
func (s *Session) LastCompletion() *LastCompletion { return s.last }

// AddCandidates appends a later batch from the provider.
func (s *Session) AddCandidates(cands ...Candidate) {
	if s.state != StateOpen {
		return
	}
	s.menu.Add(cands...)
}

// Update previews the focused candidate: the document is restored to the
// popup baseline and the candidate's transaction applied on top. The
// returned record describes the edits landing at the trigger offset; it is
// nil when nothing is focused.
func (s *Session) Update() (*LastCompletion, error) {
	if s.state != StateOpen {
		return nil, ErrSessionClosed
	}

	s.doc.RestoreSavepoint()

	sel, ok := s.menu.Selection()
	if !ok {
		return nil, nil
	}

	_, err := s.applyCandidate(sel)
	if err != nil {
		return nil, err
	}
	return s.last, nil
}

// Validate commits the focused candidate: preview exactly as Update, then
// finalize. Additional edits already on the item apply immediately; an
// unresolved item whose server supports resolution gets them fetched and
// applied asynchronously after the commit.
func (s *Session) Validate(ctx context.Context) (*LastCompletion, error) {
	if s.state != StateOpen {
		return nil, ErrSessionClosed
	}

	s.doc.RestoreSavepoint()

	sel, ok := s.menu.Selection()
	if !ok {
		s.close(StateCommitted)
		return nil, nil
	}

	tx, err := s.applyCandidate(sel)
	if err != nil {
		return nil, err
	}

	if sc, isServer := sel.(ServerCandidate); isServer {
		primary := appliedRange(tx)
		switch {
		case len(sc.Item.AdditionalTextEdits) > 0:
			if err := s.applyAdditionalEdits(sc.Item.AdditionalTextEdits, sc.Encoding, primary); err != nil {
				s.close(StateCommitted)
				return s.last, err
			}
		case !sc.Resolved:
			s.resolveAdditionalEdits(ctx, sc, primary)
		}
	}

	s.close(StateCommitted)
	return s.last, nil
}

// Abort discards the popup: the document returns to its pre-popup content
// and every candidate is dropped.
func (s *Session) Abort() {
	if s.state != StateOpen {
		return
	}
	s.doc.RestoreSavepoint()
	s.close(StateAborted)
}

// applyCandidate synthesizes sel's transaction on the restored baseline,
// re-takes the savepoint and applies. On synthesis failure the buffer stays
// at the baseline and the step no-ops.
func (s *Session) applyCandidate(sel Candidate) (buffer.Transaction, error) {
	tx, err := Synthesize(s.doc, s.anchor, sel, s.policy)
	if err != nil {
		return buffer.Transaction{}, err
	}

	s.doc.Savepoint()
	if err := s.doc.Apply(tx); err != nil {
		return buffer.Transaction{}, fmt.Errorf("apply completion: %w", err)
	}

	s.last = &LastCompletion{
		TriggerOffset: s.anchor.Trigger,
		Changes:       tx.ChangesAt(s.anchor.Trigger),
	}
	return tx, nil
}

// applyAdditionalEdits converts, validates and applies a server's additional
// edits (auto-imports and the like). They must not touch the committed
// completion's own range.
func (s *Session) applyAdditionalEdits(edits []lsp.TextEdit, enc lsp.OffsetEncoding, primary buffer.Range) error {
	pc := lsp.NewPositionConverter(s.doc.Text(), enc)

	converted := make([]buffer.Edit, 0, len(edits))
	for _, e := range edits {
		start, end := pc.RangeToByteRange(e.Range)
		r := buffer.Range{Start: buffer.ByteOffset(start), End: buffer.ByteOffset(end)}
		converted = append(converted, buffer.NewEdit(r, e.NewText))
	}
	sort.SliceStable(converted, func(i, j int) bool {
		return converted[i].Range.Start < converted[j].Range.Start
	})

	tx, err := buffer.NewTransaction(converted...)
	if err != nil {
		return fmt.Errorf("additional edits: %w", err)
	}
	if tx.OverlapsRange(primary) {
		return fmt.Errorf("additional edits touch %v: %w", primary, ErrEditConflict)
	}
	return s.doc.Apply(tx)
}

// appliedRange returns the region a single-edit transaction occupies after
// application.
func appliedRange(tx buffer.Transaction) buffer.Range {
	edits := tx.Edits()
	if len(edits) == 0 {
		return buffer.Range{}
	}
	e := edits[0]
	return buffer.Range{Start: e.Range.Start, End: e.Range.Start + buffer.ByteOffset(len(e.NewText))}
}

// close finishes the session in the given terminal state.
func (s *Session) close(st State) {
	s.state = st
	s.menu.Clear()
	s.doc.ClearSavepoint()
}
