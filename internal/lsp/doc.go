// Package lsp implements the language-server client surface the completion
// engine depends on: process lifecycle, the JSON-RPC base protocol over
// stdio, the completion-relevant protocol types, and translation between
// server position encodings (UTF-8/16/32) and byte offsets.
//
// The package is deliberately narrow. It speaks textDocument/didOpen,
// textDocument/didChange, textDocument/completion and completionItem/resolve;
// everything else a full client would implement is out of scope.
//
// Architecture:
//
//	Registry -> Server -> Transport -> language server process
//
// Server owns one process and its negotiated capabilities. Registry maps
// the server ids candidates carry back to live servers; a missing id means
// the server has gone away and callers degrade gracefully.
package lsp
