package completion

import (
	"context"
	"log"

	"github.com/dshills/quill/internal/engine/buffer"
)

// EnsureItemResolved issues a background resolution request for the focused
// candidate and returns true when one was issued. The result is delivered
// on the owner loop, where the original candidate is swapped for its
// resolved version only if the session is still open and the candidate is
// still in the store; stale results are discarded silently.
func (s *Session) EnsureItemResolved(ctx context.Context) bool {
	if s.state != StateOpen || s.sched == nil || s.servers == nil {
		return false
	}

	sel, ok := s.menu.Selection()
	if !ok {
		return false
	}
	sc, ok := sel.(ServerCandidate)
	if !ok || sc.Resolved {
		return false
	}

	resolver, ok := s.servers.ResolverFor(sc.Server)
	if !ok || !resolver.ResolveSupported() {
		return false
	}

	original := sc
	go func() {
		resolved, err := resolver.ResolveCompletionItem(ctx, original.Item)
		if err != nil {
			log.Printf("completion: resolve %q: %v", original.Item.Label, err)
			return
		}

		err = s.sched.Post(func() {
			// Liveness is checked at delivery time: the popup may have
			// closed or the candidate been superseded since the request.
			if s.state != StateOpen || !s.menu.Contains(original) {
				return
			}
			next := original
			next.Item = *resolved
			next.Resolved = true
			s.menu.Replace(original, next)
		})
		if err != nil {
			log.Printf("completion: resolve %q: %v", original.Item.Label, err)
		}
	}()
	return true
}

// resolveAdditionalEdits fetches an unresolved item's additional edits after
// commit and applies them on the owner loop. The document must not have
// moved on in the meantime; a changed revision makes the result stale and
// it is dropped.
func (s *Session) resolveAdditionalEdits(ctx context.Context, sc ServerCandidate, primary buffer.Range) {
	if s.sched == nil || s.servers == nil {
		return
	}
	resolver, ok := s.servers.ResolverFor(sc.Server)
	if !ok || !resolver.ResolveSupported() {
		return
	}

	revision := s.doc.RevisionID()
	go func() {
		resolved, err := resolver.ResolveCompletionItem(ctx, sc.Item)
		if err != nil {
			log.Printf("completion: resolve %q: %v", sc.Item.Label, err)
			return
		}
		if len(resolved.AdditionalTextEdits) == 0 {
			return
		}

		err = s.sched.Post(func() {
			if s.doc.RevisionID() != revision {
				return
			}
			if err := s.applyAdditionalEdits(resolved.AdditionalTextEdits, sc.Encoding, primary); err != nil {
				log.Printf("completion: additional edits for %q: %v", sc.Item.Label, err)
			}
		})
		if err != nil {
			log.Printf("completion: resolve %q: %v", sc.Item.Label, err)
		}
	}()
}
