package lsp

import (
	"encoding/json"
	"fmt"
)

// DocumentURI represents a URI as used in LSP.
// It is typically a file:// URI.
type DocumentURI string

// Position in a text document expressed as zero-based line and character
// offset. The unit of the character offset depends on the negotiated
// position encoding; the protocol default is UTF-16 code units.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range in a text document expressed as start and end positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextDocumentIdentifier identifies a text document.
type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

// TextDocumentPositionParams passes a text document and a position inside it.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// TextEdit represents a textual edit applicable to a text document.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// InsertReplaceEdit is the insert+replace form of a completion edit: the
// server supplies two ranges and leaves the choice between them to the
// client's configured policy.
type InsertReplaceEdit struct {
	NewText string `json:"newText"`
	Insert  Range  `json:"insert"`
	Replace Range  `json:"replace"`
}

// CompletionTextEdit is the edit attached to a completion item. Exactly one
// of Edit or InsertReplace is set; the wire format distinguishes them by the
// presence of a "range" vs. "insert"/"replace" keys.
type CompletionTextEdit struct {
	Edit          *TextEdit
	InsertReplace *InsertReplaceEdit
}

// UnmarshalJSON decodes either edit shape.
func (c *CompletionTextEdit) UnmarshalJSON(data []byte) error {
	var probe struct {
		Range *Range `json:"range"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Range != nil {
		c.Edit = &TextEdit{}
		return json.Unmarshal(data, c.Edit)
	}
	c.InsertReplace = &InsertReplaceEdit{}
	return json.Unmarshal(data, c.InsertReplace)
}

// MarshalJSON encodes whichever edit shape is set.
func (c CompletionTextEdit) MarshalJSON() ([]byte, error) {
	if c.Edit != nil {
		return json.Marshal(c.Edit)
	}
	if c.InsertReplace != nil {
		return json.Marshal(c.InsertReplace)
	}
	return nil, fmt.Errorf("completion text edit: %w", ErrInvalidResponse)
}

// MarkupContent represents human readable text.
type MarkupContent struct {
	Kind  MarkupKind `json:"kind"`
	Value string     `json:"value"`
}

// MarkupKind describes the content type.
type MarkupKind string

const (
	MarkupKindPlainText MarkupKind = "plaintext"
	MarkupKindMarkdown  MarkupKind = "markdown"
)

// WorkspaceFolder represents a workspace folder.
type WorkspaceFolder struct {
	URI  DocumentURI `json:"uri"`
	Name string      `json:"name"`
}

// --- Initialize ---

// InitializeParams are the parameters sent in an initialize request.
type InitializeParams struct {
	ProcessID             int                `json:"processId"`
	RootURI               DocumentURI        `json:"rootUri,omitempty"`
	Capabilities          ClientCapabilities `json:"capabilities"`
	InitializationOptions any                `json:"initializationOptions,omitempty"`
	WorkspaceFolders      []WorkspaceFolder  `json:"workspaceFolders,omitempty"`
}

// InitializeResult is the server's response to initialize.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// InitializedParams is the (empty) initialized notification payload.
type InitializedParams struct{}

// ServerInfo identifies the server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ClientCapabilities define capabilities this client advertises.
type ClientCapabilities struct {
	TextDocument *TextDocumentClientCapabilities `json:"textDocument,omitempty"`
	General      *GeneralClientCapabilities      `json:"general,omitempty"`
}

// TextDocumentClientCapabilities define capabilities for text documents.
type TextDocumentClientCapabilities struct {
	Completion *CompletionClientCapabilities `json:"completion,omitempty"`
}

// CompletionClientCapabilities define the completion features we understand.
type CompletionClientCapabilities struct {
	CompletionItem *CompletionItemClientCapabilities `json:"completionItem,omitempty"`
}

// CompletionItemClientCapabilities define per-item completion features.
type CompletionItemClientCapabilities struct {
	DocumentationFormat  []MarkupKind                  `json:"documentationFormat,omitempty"`
	InsertReplaceSupport bool                          `json:"insertReplaceSupport,omitempty"`
	ResolveSupport       *CompletionItemResolveSupport `json:"resolveSupport,omitempty"`
}

// CompletionItemResolveSupport lists item properties the client can apply lazily.
type CompletionItemResolveSupport struct {
	Properties []string `json:"properties"`
}

// GeneralClientCapabilities define general client features.
type GeneralClientCapabilities struct {
	PositionEncodings []PositionEncodingKind `json:"positionEncodings,omitempty"`
}

// PositionEncodingKind names a position encoding negotiated at initialize.
type PositionEncodingKind string

const (
	PositionEncodingUTF8  PositionEncodingKind = "utf-8"
	PositionEncodingUTF16 PositionEncodingKind = "utf-16"
	PositionEncodingUTF32 PositionEncodingKind = "utf-32"
)

// DefaultClientCapabilities returns the capabilities this client sends.
func DefaultClientCapabilities() ClientCapabilities {
	return ClientCapabilities{
		TextDocument: &TextDocumentClientCapabilities{
			Completion: &CompletionClientCapabilities{
				CompletionItem: &CompletionItemClientCapabilities{
					DocumentationFormat:  []MarkupKind{MarkupKindMarkdown, MarkupKindPlainText},
					InsertReplaceSupport: true,
					ResolveSupport: &CompletionItemResolveSupport{
						Properties: []string{"documentation", "detail", "additionalTextEdits"},
					},
				},
			},
		},
		General: &GeneralClientCapabilities{
			PositionEncodings: []PositionEncodingKind{
				PositionEncodingUTF8, PositionEncodingUTF16, PositionEncodingUTF32,
			},
		},
	}
}

// ServerCapabilities is the completion-relevant subset of server capabilities.
type ServerCapabilities struct {
	PositionEncoding   PositionEncodingKind `json:"positionEncoding,omitempty"`
	CompletionProvider *CompletionOptions   `json:"completionProvider,omitempty"`
}

// ResolveSupported returns true if the server can resolve completion items.
func (c ServerCapabilities) ResolveSupported() bool {
	return c.CompletionProvider != nil && c.CompletionProvider.ResolveProvider
}

// CompletionOptions define the server's completion options.
type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
	ResolveProvider   bool     `json:"resolveProvider,omitempty"`
}

// --- Document sync ---

// TextDocumentItem is an item to transfer a text document to the server.
type TextDocumentItem struct {
	URI        DocumentURI `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int         `json:"version"`
	Text       string      `json:"text"`
}

// DidOpenTextDocumentParams are parameters for textDocument/didOpen.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// VersionedTextDocumentIdentifier identifies a document version.
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// TextDocumentContentChangeEvent describes a content change event.
type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// DidChangeTextDocumentParams are parameters for textDocument/didChange.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// --- Completion ---

// CompletionParams are parameters for textDocument/completion.
type CompletionParams struct {
	TextDocumentPositionParams
	Context *CompletionContext `json:"context,omitempty"`
}

// CompletionContext contains additional information about the trigger.
type CompletionContext struct {
	TriggerKind      CompletionTriggerKind `json:"triggerKind"`
	TriggerCharacter string                `json:"triggerCharacter,omitempty"`
}

// CompletionTriggerKind defines how a completion was triggered.
type CompletionTriggerKind int

const (
	CompletionTriggerKindInvoked          CompletionTriggerKind = 1
	CompletionTriggerKindTriggerCharacter CompletionTriggerKind = 2
	CompletionTriggerKindIncomplete       CompletionTriggerKind = 3
)

// CompletionList represents a collection of completion items.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// CompletionItem represents a completion suggestion.
type CompletionItem struct {
	Label               string              `json:"label"`
	Kind                CompletionItemKind  `json:"kind,omitempty"`
	Detail              string              `json:"detail,omitempty"`
	Documentation       any                 `json:"documentation,omitempty"` // string or MarkupContent
	Preselect           bool                `json:"preselect,omitempty"`
	SortText            string              `json:"sortText,omitempty"`
	FilterText          string              `json:"filterText,omitempty"`
	InsertText          string              `json:"insertText,omitempty"`
	TextEdit            *CompletionTextEdit `json:"textEdit,omitempty"`
	AdditionalTextEdits []TextEdit          `json:"additionalTextEdits,omitempty"`
	Data                any                 `json:"data,omitempty"`
}

// DocumentationString extracts the plain documentation text of an item,
// whether the server sent a bare string or a MarkupContent object.
func (ci CompletionItem) DocumentationString() string {
	switch doc := ci.Documentation.(type) {
	case string:
		return doc
	case map[string]any:
		if v, ok := doc["value"].(string); ok {
			return v
		}
	case MarkupContent:
		return doc.Value
	}
	return ""
}

// CompletionItemKind represents the type of completion item.
type CompletionItemKind int

const (
	CompletionItemKindText          CompletionItemKind = 1
	CompletionItemKindMethod        CompletionItemKind = 2
	CompletionItemKindFunction      CompletionItemKind = 3
	CompletionItemKindConstructor   CompletionItemKind = 4
	CompletionItemKindField         CompletionItemKind = 5
	CompletionItemKindVariable      CompletionItemKind = 6
	CompletionItemKindClass         CompletionItemKind = 7
	CompletionItemKindInterface     CompletionItemKind = 8
	CompletionItemKindModule        CompletionItemKind = 9
	CompletionItemKindProperty      CompletionItemKind = 10
	CompletionItemKindUnit          CompletionItemKind = 11
	CompletionItemKindValue         CompletionItemKind = 12
	CompletionItemKindEnum          CompletionItemKind = 13
	CompletionItemKindKeyword       CompletionItemKind = 14
	CompletionItemKindSnippet       CompletionItemKind = 15
	CompletionItemKindColor         CompletionItemKind = 16
	CompletionItemKindFile          CompletionItemKind = 17
	CompletionItemKindReference     CompletionItemKind = 18
	CompletionItemKindFolder        CompletionItemKind = 19
	CompletionItemKindEnumMember    CompletionItemKind = 20
	CompletionItemKindConstant      CompletionItemKind = 21
	CompletionItemKindStruct        CompletionItemKind = 22
	CompletionItemKindEvent         CompletionItemKind = 23
	CompletionItemKindOperator      CompletionItemKind = 24
	CompletionItemKindTypeParameter CompletionItemKind = 25
)

// String returns a human-readable name for a completion item kind.
func (k CompletionItemKind) String() string {
	switch k {
	case CompletionItemKindText:
		return "text"
	case CompletionItemKindMethod:
		return "method"
	case CompletionItemKindFunction:
		return "function"
	case CompletionItemKindConstructor:
		return "constructor"
	case CompletionItemKindField:
		return "field"
	case CompletionItemKindVariable:
		return "variable"
	case CompletionItemKindClass:
		return "class"
	case CompletionItemKindInterface:
		return "interface"
	case CompletionItemKindModule:
		return "module"
	case CompletionItemKindProperty:
		return "property"
	case CompletionItemKindUnit:
		return "unit"
	case CompletionItemKindValue:
		return "value"
	case CompletionItemKindEnum:
		return "enum"
	case CompletionItemKindKeyword:
		return "keyword"
	case CompletionItemKindSnippet:
		return "snippet"
	case CompletionItemKindColor:
		return "color"
	case CompletionItemKindFile:
		return "file"
	case CompletionItemKindReference:
		return "reference"
	case CompletionItemKindFolder:
		return "folder"
	case CompletionItemKindEnumMember:
		return "enum_member"
	case CompletionItemKindConstant:
		return "constant"
	case CompletionItemKindStruct:
		return "struct"
	case CompletionItemKindEvent:
		return "event"
	case CompletionItemKindOperator:
		return "operator"
	case CompletionItemKindTypeParameter:
		return "type_param"
	default:
		return ""
	}
}
