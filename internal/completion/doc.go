// Package completion implements the interactive completion-candidate
// lifecycle: a popup session over a document that previews the focused
// candidate in the buffer, re-filters the candidate list as the user types,
// and finalizes or discards the edit on commit or abort.
//
// The moving parts:
//
//   - Candidate: a server-sourced or path-sourced suggestion.
//   - Menu: the live candidate store with fuzzy scoring and focus.
//   - Synthesize: turns the focused candidate into a buffer transaction.
//   - Session: the state machine (Open, Committed, Aborted) owning the
//     savepoint/restore protocol so previews never compound.
//
// A session and its menu belong to a single owner goroutine. The only
// operation that leaves it is asynchronous item resolution; results come
// back as closures posted to the owner loop and are dropped when the
// session has moved on.
//
// Hosts editing the document while a popup is open must restore the live
// preview first and re-take the savepoint afterwards, so later previews
// roll back to the content the user actually typed:
//
//	doc.RestoreSavepoint()
//	doc.Insert(cursor, key)
//	doc.Savepoint()
//	session.RecomputeFilter(cursor + 1)
package completion
