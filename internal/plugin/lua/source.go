package lua

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/quill/internal/completion"
	"github.com/dshills/quill/internal/lsp"
)

// DefaultCallTimeout bounds one complete() invocation. Best-effort: Lua code
// that never yields cannot be interrupted mid-instruction.
const DefaultCallTimeout = 2 * time.Second

// Source is a user-scripted completion source backed by a sandboxed Lua
// state. Candidates it produces are pre-resolved server-variant candidates
// with no server id and no explicit edit, so they take the insert-text
// synthesis path.
type Source struct {
	mu      sync.Mutex
	state   *lua.LState
	name    string
	timeout time.Duration
	closed  bool
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithCallTimeout bounds each complete() call.
func WithCallTimeout(d time.Duration) SourceOption {
	return func(s *Source) { s.timeout = d }
}

// NewSource loads a source script from a string. The script must define
// complete(fragment).
func NewSource(name, script string, opts ...SourceOption) (*Source, error) {
	s := &Source{name: name, timeout: DefaultCallTimeout}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	s.state = L

	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("load source %s: %w", name, err)
	}

	if L.GetGlobal("complete").Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("source %s: %w", name, ErrNoComplete)
	}
	return s, nil
}

// openSafeLibraries opens the safe subset of the Lua standard library.
// io, os, debug and the module loaders stay closed; load/dofile/loadfile
// are removed from base so scripts cannot pull code in at runtime.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Name returns the source's name.
func (s *Source) Name() string { return s.name }

// Complete calls the script's complete(fragment) and converts the returned
// tables into candidates. Entries without a label are skipped.
func (s *Source) Complete(fragment string) ([]completion.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSourceClosed
	}

	L := s.state
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()

	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("complete"),
		NRet:    1,
		Protect: true,
	}, lua.LString(fragment)); err != nil {
		return nil, fmt.Errorf("source %s: %w", s.name, err)
	}

	ret := L.Get(-1)
	L.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		if ret == lua.LNil {
			return nil, nil
		}
		return nil, fmt.Errorf("source %s returned %s: %w", s.name, ret.Type(), ErrBadResult)
	}

	var cands []completion.Candidate
	tbl.ForEach(func(_, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		if c, ok := candidateFromTable(entry); ok {
			cands = append(cands, c)
		}
	})
	return cands, nil
}

// candidateFromTable maps one {label=..., insert=..., detail=...} entry.
func candidateFromTable(tbl *lua.LTable) (completion.Candidate, bool) {
	label := lua.LVAsString(tbl.RawGetString("label"))
	if label == "" {
		return nil, false
	}

	item := lsp.CompletionItem{
		Label:      label,
		InsertText: lua.LVAsString(tbl.RawGetString("insert")),
		Detail:     lua.LVAsString(tbl.RawGetString("detail")),
		FilterText: lua.LVAsString(tbl.RawGetString("filter")),
	}
	if doc := lua.LVAsString(tbl.RawGetString("doc")); doc != "" {
		item.Documentation = doc
	}

	return completion.ServerCandidate{Item: item, Resolved: true}, true
}

// Close releases the Lua state. Further Complete calls fail.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.state.Close()
}
