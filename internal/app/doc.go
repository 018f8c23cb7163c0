// Package app is the interactive demo host for the completion engine: a
// single scratch buffer on a tcell screen wired to the session lifecycle.
// It owns the editing protocol the engine expects from its host: restore
// the preview savepoint before applying a keystroke, re-take the savepoint
// after it, then refilter the popup against the new cursor.
//
// Candidates come from four sources. Buffer words and filesystem paths are
// gathered synchronously at popup open; a Lua script source contributes
// when one is configured; a language server, when configured, answers
// asynchronously and its batch lands on the owner loop.
package app
