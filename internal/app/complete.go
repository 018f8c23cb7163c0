package app

import (
	"context"
	"log"
	"sort"

	"github.com/dshills/quill/internal/completion"
	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/lsp"
)

// openCompletion opens a popup at the cursor. A trailing path token switches
// the popup into path mode; otherwise buffer words, the Lua source and the
// language server contribute candidates.
func (a *App) openCompletion() {
	line := a.doc.OffsetToPoint(a.cursor).Line
	linePrefix := a.doc.TextRange(a.doc.LineStartOffset(line), a.cursor)

	anchor, cands := a.gatherCandidates(linePrefix)
	if len(cands) == 0 && a.server == nil {
		return
	}

	opts := []completion.SessionOption{
		completion.WithScheduler(scheduler{loop: a.loop, screen: a.screen}),
	}
	if a.registry != nil {
		opts = append(opts, completion.WithResolverSource(registrySource{reg: a.registry}))
	}

	session, err := completion.NewSession(a.doc, anchor, cands, opts...)
	if err != nil {
		log.Printf("app: open completion: %v", err)
		return
	}
	a.session = session
	a.session.RecomputeFilter(a.cursor)

	if a.server != nil {
		a.requestServerCandidates()
	}
}

// gatherCandidates picks the anchor and collects the synchronous candidate
// batch for the popup.
func (a *App) gatherCandidates(linePrefix string) (completion.Anchor, []completion.Candidate) {
	if _, typed, ok := completion.PathToken(linePrefix); ok {
		anchor := completion.Anchor{
			Start:   a.cursor - buffer.ByteOffset(len(typed)),
			Trigger: a.cursor,
		}
		cands, err := completion.ScanPathCandidates(a.workDir, linePrefix)
		if err != nil {
			log.Printf("app: path candidates: %v", err)
		}
		return anchor, cands
	}

	start := wordStartBefore(a.doc.Text(), a.cursor)
	anchor := completion.Anchor{Start: start, Trigger: a.cursor}
	fragment := a.doc.TextRange(start, a.cursor)

	cands := wordCandidates(a.doc.Text(), fragment)
	if a.luaSource != nil {
		scripted, err := a.luaSource.Complete(fragment)
		if err != nil {
			log.Printf("app: lua source: %v", err)
		}
		cands = append(cands, scripted...)
	}
	return anchor, cands
}

// requestServerCandidates asks the language server for completions off-loop
// and delivers the batch back through the scheduler. A batch arriving after
// the session closed is dropped by AddCandidates.
func (a *App) requestServerCandidates() {
	var (
		server   = a.server
		session  = a.session
		uri      = a.docURI
		snapshot = a.doc.Text()
		cursor   = int(a.cursor)
		sched    = scheduler{loop: a.loop, screen: a.screen}
	)

	go func() {
		pc := lsp.NewPositionConverter(snapshot, server.OffsetEncoding())
		list, err := server.Completion(context.Background(), lsp.CompletionParams{
			TextDocumentPositionParams: lsp.TextDocumentPositionParams{
				TextDocument: lsp.TextDocumentIdentifier{URI: uri},
				Position:     pc.ByteOffsetToPosition(cursor),
			},
		})
		if err != nil {
			log.Printf("app: completion request: %v", err)
			return
		}

		cands := make([]completion.Candidate, 0, len(list.Items))
		for _, item := range list.Items {
			cands = append(cands, completion.ServerCandidate{
				Server:   server.ID(),
				Encoding: server.OffsetEncoding(),
				Item:     item,
			})
		}

		if err := sched.Post(func() { session.AddCandidates(cands...) }); err != nil {
			log.Printf("app: deliver candidates: %v", err)
		}
	}()
}

// registrySource adapts the server registry to the session's resolver lookup.
type registrySource struct {
	reg *lsp.Registry
}

// ResolverFor returns the registered server for id.
func (r registrySource) ResolverFor(id lsp.ServerID) (completion.Resolver, bool) {
	s, ok := r.reg.ByID(id)
	if !ok {
		return nil, false
	}
	return s, true
}

// wordStartBefore scans back from off over identifier bytes and returns the
// offset where the word under the cursor starts.
func wordStartBefore(text string, off buffer.ByteOffset) buffer.ByteOffset {
	start := off
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	return start
}

// wordCandidates collects the distinct identifier-like words of text as
// pre-resolved candidates, skipping the fragment being typed.
func wordCandidates(text, fragment string) []completion.Candidate {
	seen := make(map[string]struct{})
	var words []string
	for i := 0; i < len(text); {
		if !isWordStartByte(text[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isWordByte(text[j]) {
			j++
		}
		w := text[i:j]
		i = j
		if w == fragment {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	sort.Strings(words)

	cands := make([]completion.Candidate, 0, len(words))
	for _, w := range words {
		cands = append(cands, completion.ServerCandidate{
			Item:     lsp.CompletionItem{Label: w, Kind: lsp.CompletionItemKindText},
			Resolved: true,
		})
	}
	return cands
}

func isWordStartByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isWordByte(b byte) bool {
	return isWordStartByte(b) || ('0' <= b && b <= '9')
}
