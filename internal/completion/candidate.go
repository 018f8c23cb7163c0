package completion

import (
	"io/fs"
	"reflect"
	"strings"

	"github.com/dshills/quill/internal/lsp"
)

// Candidate is one completion suggestion. The sum is closed: the only
// implementations are ServerCandidate and PathCandidate, and behavior
// differences live in exhaustive type switches, not in the interface.
type Candidate interface {
	// FilterKey is the text matched against the typed fragment.
	FilterKey() string
	// DisplayLabel is the text shown in the menu row.
	DisplayLabel() string
	// Category tags the row for rendering.
	Category() string
	// Equal reports value equality. The menu uses it for the
	// identity-preserving swap after asynchronous resolution.
	Equal(Candidate) bool

	isCandidate()
}

// ServerCandidate wraps a language-server completion item together with the
// identity and offset encoding of the server that produced it.
type ServerCandidate struct {
	Server   lsp.ServerID
	Encoding lsp.OffsetEncoding
	Item     lsp.CompletionItem

	// Resolved is true once documentation, detail and additional edits
	// have been fetched for the item.
	Resolved bool
}

func (c ServerCandidate) isCandidate() {}

// FilterKey returns the item's filter text, falling back to its label.
func (c ServerCandidate) FilterKey() string {
	if c.Item.FilterText != "" {
		return c.Item.FilterText
	}
	return c.Item.Label
}

// DisplayLabel returns the item's label.
func (c ServerCandidate) DisplayLabel() string { return c.Item.Label }

// Category returns the item kind name, or "item" when the server sent none.
func (c ServerCandidate) Category() string {
	if s := c.Item.Kind.String(); s != "" {
		return s
	}
	return "item"
}

// Equal reports field-for-field equality with another candidate.
func (c ServerCandidate) Equal(other Candidate) bool {
	o, ok := other.(ServerCandidate)
	if !ok {
		return false
	}
	return c.Server == o.Server &&
		c.Encoding == o.Encoding &&
		c.Resolved == o.Resolved &&
		reflect.DeepEqual(c.Item, o.Item)
}

// PathKind classifies a filesystem path candidate.
type PathKind int

const (
	PathKindUnknown PathKind = iota
	PathKindFile
	PathKindDirectory
	PathKindSymlink
)

// String returns the kind name used as the row category.
func (k PathKind) String() string {
	switch k {
	case PathKindFile:
		return "file"
	case PathKindDirectory:
		return "folder"
	case PathKindSymlink:
		return "link"
	default:
		return "unknown"
	}
}

// PathCandidate is a filesystem path suggestion.
type PathCandidate struct {
	Path string
	Perm fs.FileMode
	Kind PathKind
}

func (c PathCandidate) isCandidate() {}

// FilterKey returns the final path component.
func (c PathCandidate) FilterKey() string { return c.fileName() }

// DisplayLabel returns the final path component.
func (c PathCandidate) DisplayLabel() string { return c.fileName() }

// Category returns the path kind name.
func (c PathCandidate) Category() string { return c.Kind.String() }

// Equal reports field-for-field equality with another candidate.
func (c PathCandidate) Equal(other Candidate) bool {
	o, ok := other.(PathCandidate)
	return ok && c == o
}

// fileName returns the last path component. Directories keep a trailing
// separator so the typed prefix strips cleanly during synthesis: the typed
// component never contains a separator, so carrying it on the name here is
// equivalent to appending it to the typed prefix before stripping.
func (c PathCandidate) fileName() string {
	name := strings.TrimSuffix(c.Path, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if strings.HasSuffix(c.Path, "/") || c.Kind == PathKindDirectory {
		name += "/"
	}
	return name
}
