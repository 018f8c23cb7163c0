// Package main is an interactive demo for the quill completion engine: a
// single scratch buffer on a tcell screen with a completion popup fed by
// buffer words, filesystem paths, an optional Lua source and an optional
// language server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/quill/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		luaPath     string
		lspCommand  string
		lspLanguage string
		showVersion bool
	)
	flag.StringVar(&luaPath, "lua", "", "Path to a Lua completion source script")
	flag.StringVar(&lspCommand, "lsp", "", "Language server command (e.g. \"gopls serve\")")
	flag.StringVar(&lspLanguage, "lang", "go", "Language id reported to the language server")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("quill %s (%s)\n", version, commit)
		return 0
	}

	var lspArgs []string
	if lspCommand != "" {
		fields := strings.Fields(lspCommand)
		lspCommand = fields[0]
		lspArgs = fields[1:]
	}

	ed, err := app.New(app.Options{
		LuaSourcePath: luaPath,
		LSPCommand:    lspCommand,
		LSPArgs:       lspArgs,
		LanguageID:    lspLanguage,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer ed.Shutdown()

	if err := ed.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, `quill - completion engine demo

Usage: quill [options]

Type into the scratch buffer. Ctrl+Space opens the completion popup;
arrows move the focus with a live preview, Enter or Tab commits, Esc
cancels. Ctrl+Q quits.

Options:
`)
	flag.PrintDefaults()
}
