package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/completion"
	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/event"
	"github.com/dshills/quill/internal/lsp"
	luasrc "github.com/dshills/quill/internal/plugin/lua"
	"github.com/dshills/quill/internal/renderer/popup"
)

// Options configures the demo editor.
type Options struct {
	// LuaSourcePath is an optional Lua completion source script.
	LuaSourcePath string
	// LSPCommand launches an optional language server; empty disables it.
	LSPCommand string
	// LSPArgs are passed to the language server executable.
	LSPArgs []string
	// LanguageID is reported to the language server for the scratch buffer.
	LanguageID string
}

// App is the demo editor: one scratch buffer, one cursor, at most one live
// completion session. All state is owned by the goroutine running Run;
// background work re-enters through the event loop.
type App struct {
	opts    Options
	workDir string

	screen tcell.Screen
	doc    *buffer.Buffer
	cursor buffer.ByteOffset
	loop   *event.Loop
	popup  *popup.Popup

	session *completion.Session
	// preview is the record of the on-screen preview, nil when the buffer
	// shows only typed text.
	preview *completion.LastCompletion

	luaSource *luasrc.Source
	registry  *lsp.Registry
	server    *lsp.Server
	docURI    lsp.DocumentURI

	quit bool
}

// New builds the editor and starts the configured language server.
func New(opts Options) (*App, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	a := &App{
		opts:    opts,
		workDir: workDir,
		doc:     buffer.NewBuffer(),
		loop:    event.NewLoop(),
		popup:   popup.New(),
	}

	if opts.LuaSourcePath != "" {
		script, err := os.ReadFile(opts.LuaSourcePath)
		if err != nil {
			return nil, fmt.Errorf("lua source: %w", err)
		}
		src, err := luasrc.NewSource(filepath.Base(opts.LuaSourcePath), string(script))
		if err != nil {
			return nil, err
		}
		a.luaSource = src
	}

	if opts.LSPCommand != "" {
		if err := a.startServer(); err != nil {
			a.Shutdown()
			return nil, err
		}
	}
	return a, nil
}

// startServer launches the language server, registers it and opens the
// scratch document with it.
func (a *App) startServer() error {
	folder := lsp.WorkspaceFolder{
		URI:  lsp.DocumentURI("file://" + a.workDir),
		Name: filepath.Base(a.workDir),
	}
	server := lsp.NewServer(lsp.ServerConfig{
		Command: a.opts.LSPCommand,
		Args:    a.opts.LSPArgs,
		WorkDir: a.workDir,
	}, folder)

	if err := server.Start(context.Background()); err != nil {
		return fmt.Errorf("language server %s: %w", a.opts.LSPCommand, err)
	}

	a.registry = lsp.NewRegistry()
	a.registry.Register(server)
	a.server = server

	a.docURI = lsp.DocumentURI("file://" + filepath.Join(a.workDir, "scratch"+extensionFor(a.opts.LanguageID)))
	if err := server.OpenDocument(context.Background(), a.docURI, a.opts.LanguageID, ""); err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	return nil
}

// extensionFor maps a language id to a plausible scratch file extension.
func extensionFor(languageID string) string {
	switch languageID {
	case "go":
		return ".go"
	case "rust":
		return ".rs"
	case "python":
		return ".py"
	case "typescript":
		return ".ts"
	case "javascript":
		return ".js"
	default:
		return ".txt"
	}
}

// Run initializes the screen and drives the input loop until quit.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	a.screen = screen

	for !a.quit {
		a.loop.Drain()
		a.draw()

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			a.handleKey(ev)
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			// Posted by the scheduler to wake the loop; the drain at the
			// top of the iteration does the work.
		}
	}
	return nil
}

// Shutdown releases the screen, the Lua source and the language server.
// Safe to call after a partial New.
func (a *App) Shutdown() {
	if a.screen != nil {
		a.screen.Fini()
		a.screen = nil
	}
	if a.luaSource != nil {
		a.luaSource.Close()
		a.luaSource = nil
	}
	if a.registry != nil {
		a.registry.StopAll()
		a.registry = nil
		a.server = nil
	}
	a.loop.Close()
}

// scheduler posts work onto the event loop and wakes the blocked input
// loop so the work runs without waiting for the next keystroke.
type scheduler struct {
	loop   *event.Loop
	screen tcell.Screen
}

// Post enqueues fn and interrupts PollEvent.
func (s scheduler) Post(fn func()) error {
	if err := s.loop.Post(fn); err != nil {
		return err
	}
	if s.screen != nil {
		if err := s.screen.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
			log.Printf("app: wake screen: %v", err)
		}
	}
	return nil
}

// syncDocument pushes the full buffer content to the language server.
func (a *App) syncDocument() {
	if a.server == nil {
		return
	}
	if err := a.server.ChangeDocument(context.Background(), a.docURI, a.doc.Text()); err != nil {
		log.Printf("app: didChange: %v", err)
	}
}
