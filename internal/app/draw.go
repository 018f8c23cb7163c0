package app

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/engine/buffer"
)

// draw repaints the buffer, the cursor and the popup.
func (a *App) draw() {
	a.screen.Clear()

	style := tcell.StyleDefault
	for line := uint32(0); line < a.doc.LineCount(); line++ {
		x := 0
		for _, r := range a.doc.LineText(line) {
			a.screen.SetContent(x, int(line), r, nil, style)
			x++
		}
	}

	cx, cy := a.cursorCell()
	a.screen.ShowCursor(cx, cy)

	if a.sessionOpen() {
		a.popup.Draw(a.screen, a.session, cx, cy)
	}
	a.screen.Show()
}

// cursorCell returns the screen cell of the cursor. While a preview is on
// screen the cursor follows the inserted text; otherwise it sits at the
// typed position.
func (a *App) cursorCell() (int, int) {
	off := a.cursor
	if a.sessionOpen() && a.preview != nil && len(a.preview.Changes) > 0 {
		e := a.preview.Changes[0]
		off = e.Range.Start + buffer.ByteOffset(len(e.NewText))
	}

	p := a.doc.OffsetToPoint(off)
	lineStart := a.doc.LineStartOffset(p.Line)
	prefix := a.doc.TextRange(lineStart, off)
	return utf8.RuneCountInString(prefix), int(p.Line)
}
