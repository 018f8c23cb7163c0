package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

// ServerID identifies a registered language server instance.
type ServerID int64

// ServerConfig describes how to launch a language server.
type ServerConfig struct {
	// Command is the server executable.
	Command string
	// Args are passed to the executable.
	Args []string
	// Env adds to the inherited environment, as KEY=VALUE entries.
	Env map[string]string
	// WorkDir is the working directory for the process.
	WorkDir string
	// Timeout bounds individual requests. Defaults to 10s.
	Timeout time.Duration
	// InitializationOptions are sent during initialize.
	InitializationOptions any
}

// ServerStatus tracks the server lifecycle.
type ServerStatus int32

const (
	ServerStatusStopped ServerStatus = iota
	ServerStatusStarting
	ServerStatusReady
	ServerStatusError
)

// Server manages a single language server process and speaks the
// completion-relevant part of the protocol to it.
type Server struct {
	id     ServerID
	config ServerConfig
	status atomic.Int32

	workspaceFolders []WorkspaceFolder

	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    io.ReadCloser
	transport *Transport

	mu           sync.RWMutex
	capabilities ServerCapabilities
	serverInfo   *ServerInfo
	encoding     OffsetEncoding
	docVersions  map[DocumentURI]int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server from a config. Start must be called before use.
func NewServer(config ServerConfig, folders ...WorkspaceFolder) *Server {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Server{
		config:           config,
		workspaceFolders: folders,
		encoding:         OffsetEncodingUTF16,
		docVersions:      make(map[DocumentURI]int),
	}
}

// ID returns the registry-assigned id, or zero if unregistered.
func (s *Server) ID() ServerID {
	return s.id
}

// Status returns the current lifecycle status.
func (s *Server) Status() ServerStatus {
	return ServerStatus(s.status.Load())
}

// Start launches the server process and performs the initialize handshake.
func (s *Server) Start(ctx context.Context) error {
	s.status.Store(int32(ServerStatusStarting))
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.startProcess(); err != nil {
		s.status.Store(int32(ServerStatusError))
		return err
	}

	s.transport = NewTransport(s.stdout, s.stdin, nil)
	s.transport.Start(s.ctx)

	if err := s.initialize(s.ctx); err != nil {
		s.status.Store(int32(ServerStatusError))
		s.Stop()
		return fmt.Errorf("initialize: %w", err)
	}

	s.status.Store(int32(ServerStatusReady))
	return nil
}

// startProcess starts the language server executable.
func (s *Server) startProcess() error {
	cmd := exec.CommandContext(s.ctx, s.config.Command, s.config.Args...)

	cmd.Env = os.Environ()
	for k, v := range s.config.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if s.config.WorkDir != "" {
		cmd.Dir = s.config.WorkDir
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		return fmt.Errorf("start process: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = stdout
	return nil
}

// initialize performs the LSP initialize handshake and records the
// negotiated capabilities and position encoding.
func (s *Server) initialize(ctx context.Context) error {
	var rootURI DocumentURI
	if len(s.workspaceFolders) > 0 {
		rootURI = s.workspaceFolders[0].URI
	}

	params := InitializeParams{
		ProcessID:             os.Getpid(),
		RootURI:               rootURI,
		Capabilities:          DefaultClientCapabilities(),
		InitializationOptions: s.config.InitializationOptions,
		WorkspaceFolders:      s.workspaceFolders,
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var result InitializeResult
	if err := s.transport.Call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("initialize request: %w", err)
	}

	s.mu.Lock()
	s.capabilities = result.Capabilities
	s.serverInfo = result.ServerInfo
	if result.Capabilities.PositionEncoding != "" {
		s.encoding = EncodingFromKind(result.Capabilities.PositionEncoding)
	}
	s.mu.Unlock()

	if err := s.transport.Notify(ctx, "initialized", InitializedParams{}); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}

	return nil
}

// Stop shuts the server down and kills the process.
func (s *Server) Stop() {
	if s.transport != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		s.transport.Call(ctx, "shutdown", nil, nil)
		s.transport.Notify(ctx, "exit", nil)
		cancel()
		s.transport.Close()
	}
	if s.stdin != nil {
		s.stdin.Close()
	}
	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.status.Store(int32(ServerStatusStopped))
}

// Capabilities returns the server's negotiated capabilities.
func (s *Server) Capabilities() ServerCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capabilities
}

// ResolveSupported reports whether the server resolves completion items.
func (s *Server) ResolveSupported() bool {
	return s.Capabilities().ResolveSupported()
}

// OffsetEncoding returns the negotiated position encoding.
func (s *Server) OffsetEncoding() OffsetEncoding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encoding
}

// OpenDocument notifies the server that a document is open.
func (s *Server) OpenDocument(ctx context.Context, uri DocumentURI, languageID, text string) error {
	if s.Status() != ServerStatusReady {
		return ErrNotStarted
	}

	s.mu.Lock()
	s.docVersions[uri] = 1
	s.mu.Unlock()

	return s.transport.Notify(ctx, "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	})
}

// ChangeDocument sends a full-content change for the document.
func (s *Server) ChangeDocument(ctx context.Context, uri DocumentURI, text string) error {
	if s.Status() != ServerStatusReady {
		return ErrNotStarted
	}

	s.mu.Lock()
	s.docVersions[uri]++
	version := s.docVersions[uri]
	s.mu.Unlock()

	return s.transport.Notify(ctx, "textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
	})
}

// Completion requests completion items at the given position.
func (s *Server) Completion(ctx context.Context, params CompletionParams) (*CompletionList, error) {
	if s.Status() != ServerStatusReady {
		return nil, ErrNotStarted
	}
	if s.Capabilities().CompletionProvider == nil {
		return nil, ErrNotSupported
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	// The result may be a CompletionList or a bare item array.
	var raw json.RawMessage
	if err := s.transport.Call(ctx, "textDocument/completion", params, &raw); err != nil {
		return nil, err
	}

	if gjson.ParseBytes(raw).IsArray() {
		var items []CompletionItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("completion items: %w", err)
		}
		return &CompletionList{Items: items}, nil
	}

	var list CompletionList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	return &list, nil
}

// ResolveCompletionItem asks the server to fill in lazy item properties
// (documentation, detail, additional edits).
func (s *Server) ResolveCompletionItem(ctx context.Context, item CompletionItem) (*CompletionItem, error) {
	if s.Status() != ServerStatusReady {
		return nil, ErrNotStarted
	}
	if !s.Capabilities().ResolveSupported() {
		return nil, ErrNotSupported
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var resolved CompletionItem
	if err := s.transport.Call(ctx, "completionItem/resolve", item, &resolved); err != nil {
		return nil, err
	}
	return &resolved, nil
}
