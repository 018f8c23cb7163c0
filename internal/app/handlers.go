package app

import (
	"context"
	"log"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/completion"
	"github.com/dshills/quill/internal/engine/buffer"
)

// handleKey dispatches one key event to the popup or the plain editor.
func (a *App) handleKey(ev *tcell.EventKey) {
	if a.sessionOpen() {
		a.handlePopupKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		a.quit = true
	case tcell.KeyCtrlSpace:
		a.openCompletion()
	case tcell.KeyEnter:
		a.insertText("\n")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.deleteBack()
	case tcell.KeyLeft:
		a.moveCursor(-1)
	case tcell.KeyRight:
		a.moveCursor(1)
	case tcell.KeyUp:
		a.moveLine(-1)
	case tcell.KeyDown:
		a.moveLine(1)
	case tcell.KeyRune:
		a.insertText(string(ev.Rune()))
	}
}

// handlePopupKey handles input while the completion popup is open. Keys that
// edit the buffer first restore the preview savepoint, apply the keystroke,
// re-take the savepoint and refilter, so previews never leak into typed text.
func (a *App) handlePopupKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		a.closePopup()
		a.quit = true

	case tcell.KeyEscape:
		a.closePopup()

	case tcell.KeyDown, tcell.KeyCtrlN:
		a.moveFocus(1)
	case tcell.KeyUp, tcell.KeyCtrlP:
		a.moveFocus(-1)

	case tcell.KeyEnter, tcell.KeyTab:
		a.commitSelection()

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.editUnderPopup(func() {
			if a.cursor > 0 {
				start := prevRuneStart(a.doc.Text(), a.cursor)
				if err := a.doc.Delete(start, a.cursor); err == nil {
					a.cursor = start
				}
			}
		})

	case tcell.KeyRune:
		r := ev.Rune()
		a.editUnderPopup(func() {
			if end, err := a.doc.Insert(a.cursor, string(r)); err == nil {
				a.cursor = end
			}
		})
	}
}

// sessionOpen reports whether a popup is live.
func (a *App) sessionOpen() bool {
	return a.session != nil && a.session.State() == completion.StateOpen
}

// closePopup aborts the popup and drops the preview.
func (a *App) closePopup() {
	a.session.Abort()
	a.session = nil
	a.preview = nil
}

// moveFocus shifts the popup focus and previews the newly focused candidate.
func (a *App) moveFocus(delta int) {
	a.session.Menu().MoveFocus(delta)
	lc, err := a.session.Update()
	if err != nil {
		log.Printf("app: preview: %v", err)
	}
	a.preview = lc
	a.session.EnsureItemResolved(context.Background())
}

// commitSelection validates the focused candidate and moves the cursor to
// the end of the inserted text.
func (a *App) commitSelection() {
	lc, err := a.session.Validate(context.Background())
	if err != nil {
		log.Printf("app: commit: %v", err)
	}
	a.session = nil
	a.preview = nil

	if lc != nil && len(lc.Changes) > 0 {
		e := lc.Changes[0]
		a.cursor = e.Range.Start + buffer.ByteOffset(len(e.NewText))
	}
	a.syncDocument()
}

// editUnderPopup applies one keystroke beneath an open popup: restore the
// preview savepoint, run the edit, take a fresh savepoint, refilter.
func (a *App) editUnderPopup(edit func()) {
	a.doc.RestoreSavepoint()
	a.preview = nil
	edit()
	a.doc.Savepoint()

	if a.session.RecomputeFilter(a.cursor) == completion.FilterDismiss {
		a.session = nil
	}
	a.syncDocument()
}

// insertText inserts text at the cursor with no popup open.
func (a *App) insertText(text string) {
	end, err := a.doc.Insert(a.cursor, text)
	if err != nil {
		log.Printf("app: insert: %v", err)
		return
	}
	a.cursor = end
	a.syncDocument()
}

// deleteBack deletes the rune before the cursor.
func (a *App) deleteBack() {
	if a.cursor == 0 {
		return
	}
	start := prevRuneStart(a.doc.Text(), a.cursor)
	if err := a.doc.Delete(start, a.cursor); err != nil {
		log.Printf("app: delete: %v", err)
		return
	}
	a.cursor = start
	a.syncDocument()
}

// moveCursor shifts the cursor by one rune.
func (a *App) moveCursor(delta int) {
	text := a.doc.Text()
	if delta < 0 && a.cursor > 0 {
		a.cursor = prevRuneStart(text, a.cursor)
	}
	if delta > 0 && a.cursor < a.doc.Len() {
		_, size := utf8.DecodeRuneInString(text[a.cursor:])
		a.cursor += buffer.ByteOffset(size)
	}
}

// moveLine shifts the cursor one line up or down, keeping the column where
// the target line allows.
func (a *App) moveLine(delta int) {
	p := a.doc.OffsetToPoint(a.cursor)
	line := int(p.Line) + delta
	if line < 0 || line >= int(a.doc.LineCount()) {
		return
	}
	a.cursor = a.doc.PointToOffset(buffer.Point{Line: uint32(line), Column: p.Column})
}

// prevRuneStart returns the offset of the rune ending at off.
func prevRuneStart(s string, off buffer.ByteOffset) buffer.ByteOffset {
	_, size := utf8.DecodeLastRuneInString(s[:off])
	return off - buffer.ByteOffset(size)
}
