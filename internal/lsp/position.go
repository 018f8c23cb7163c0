package lsp

import "unicode/utf8"

// OffsetEncoding identifies the unit a server's Position.Character counts.
// LSP defaults to UTF-16 code units; servers negotiating "utf-8" or "utf-32"
// count bytes or code points instead.
type OffsetEncoding int

const (
	OffsetEncodingUTF16 OffsetEncoding = iota // protocol default
	OffsetEncodingUTF8
	OffsetEncodingUTF32
)

// String returns the position-encoding name used on the wire.
func (e OffsetEncoding) String() string {
	switch e {
	case OffsetEncodingUTF8:
		return "utf-8"
	case OffsetEncodingUTF32:
		return "utf-32"
	default:
		return "utf-16"
	}
}

// EncodingFromKind maps a negotiated PositionEncodingKind to an OffsetEncoding.
func EncodingFromKind(kind PositionEncodingKind) OffsetEncoding {
	switch kind {
	case PositionEncodingUTF8:
		return OffsetEncodingUTF8
	case PositionEncodingUTF32:
		return OffsetEncodingUTF32
	default:
		return OffsetEncodingUTF16
	}
}

// PositionConverter translates LSP positions in a given offset encoding to
// byte offsets in a document snapshot and back. It indexes the content once
// and answers lookups from the index.
type PositionConverter struct {
	content  string
	encoding OffsetEncoding
	lines    []lineInfo
}

// lineInfo stores per-line extents for position conversion.
type lineInfo struct {
	byteOffset int // byte offset of line start
	byteLen    int // length in bytes, excluding newline
}

// NewPositionConverter creates a converter for the given content and encoding.
func NewPositionConverter(content string, encoding OffsetEncoding) *PositionConverter {
	pc := &PositionConverter{content: content, encoding: encoding}
	pc.buildLineIndex()
	return pc
}

// buildLineIndex records the start and length of every line.
func (pc *PositionConverter) buildLineIndex() {
	lineStart := 0
	for i := 0; i < len(pc.content); i++ {
		if pc.content[i] == '\n' {
			pc.lines = append(pc.lines, lineInfo{byteOffset: lineStart, byteLen: i - lineStart})
			lineStart = i + 1
		}
	}
	pc.lines = append(pc.lines, lineInfo{byteOffset: lineStart, byteLen: len(pc.content) - lineStart})
}

// PositionToByteOffset converts an LSP Position to a byte offset,
// clamping out-of-range positions to the nearest valid offset.
func (pc *PositionConverter) PositionToByteOffset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(pc.lines) {
		return len(pc.content)
	}

	line := pc.lines[pos.Line]
	lineContent := pc.content[line.byteOffset : line.byteOffset+line.byteLen]
	return line.byteOffset + pc.characterToByte(lineContent, pos.Character)
}

// ByteOffsetToPosition converts a byte offset to an LSP Position.
func (pc *PositionConverter) ByteOffsetToPosition(byteOffset int) Position {
	if byteOffset < 0 {
		byteOffset = 0
	}
	if byteOffset > len(pc.content) {
		byteOffset = len(pc.content)
	}

	lineNum := len(pc.lines) - 1
	for i, line := range pc.lines {
		if byteOffset <= line.byteOffset+line.byteLen {
			lineNum = i
			break
		}
	}

	line := pc.lines[lineNum]
	col := byteOffset - line.byteOffset
	if col > line.byteLen {
		col = line.byteLen
	}

	lineContent := pc.content[line.byteOffset : line.byteOffset+line.byteLen]
	return Position{
		Line:      lineNum,
		Character: pc.byteToCharacter(lineContent, col),
	}
}

// RangeToByteRange converts an LSP Range to a (start, end) byte offset pair.
func (pc *PositionConverter) RangeToByteRange(r Range) (int, int) {
	return pc.PositionToByteOffset(r.Start), pc.PositionToByteOffset(r.End)
}

// characterToByte converts a character offset within a line to a byte offset.
func (pc *PositionConverter) characterToByte(line string, character int) int {
	if character <= 0 {
		return 0
	}

	switch pc.encoding {
	case OffsetEncodingUTF8:
		if character > len(line) {
			return len(line)
		}
		return character

	case OffsetEncodingUTF32:
		var count int
		for i := range line {
			if count == character {
				return i
			}
			count++
		}
		return len(line)

	default: // UTF-16
		var count int
		for i, r := range line {
			if count >= character {
				return i
			}
			if r >= 0x10000 {
				count += 2
			} else {
				count++
			}
		}
		return len(line)
	}
}

// byteToCharacter converts a byte offset within a line to a character offset.
func (pc *PositionConverter) byteToCharacter(line string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(line) {
		byteOffset = len(line)
	}

	switch pc.encoding {
	case OffsetEncodingUTF8:
		return byteOffset

	case OffsetEncodingUTF32:
		return utf8.RuneCountInString(line[:byteOffset])

	default: // UTF-16
		var count int
		for _, r := range line[:byteOffset] {
			if r >= 0x10000 {
				count += 2
			} else {
				count++
			}
		}
		return count
	}
}
