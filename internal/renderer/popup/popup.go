// Package popup renders the completion menu and its documentation panel on
// a tcell screen. Layout math is pure and unit-tested; drawing is a thin
// pass over the computed geometry.
package popup

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/completion"
)

// Popup draws a completion session's menu near the cursor.
type Popup struct {
	rowStyle   tcell.Style
	focusStyle tcell.Style
	catStyle   tcell.Style
	docStyle   tcell.Style
}

// New creates a popup with the default styles.
func New() *Popup {
	base := tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite)
	return &Popup{
		rowStyle:   base,
		focusStyle: base.Reverse(true),
		catStyle:   base.Foreground(tcell.ColorLightSkyBlue),
		docStyle:   tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightGray),
	}
}

// Draw renders the session's visible candidates next to the cursor cell.
// Nothing is drawn for a menu with no visible rows.
func (p *Popup) Draw(screen tcell.Screen, session *completion.Session, cursorX, cursorY int) {
	menu := session.Menu()
	visible := menu.Visible()
	if len(visible) == 0 {
		return
	}

	screenW, screenH := screen.Size()
	doc := focusedDocumentation(menu)
	layout := Compute(screenW, screenH, cursorX, cursorY, len(visible), rowWidth(visible), doc != "")

	focus := menu.FocusIndex()
	top := scrollTop(focus, len(visible), layout.MenuH)
	for row := 0; row < layout.MenuH; row++ {
		idx := top + row
		style := p.rowStyle
		if idx == focus {
			style = p.focusStyle
		}
		p.drawRow(screen, layout, row, visible[idx], style, idx == focus)
	}

	if layout.ShowDoc {
		p.drawDoc(screen, layout, doc)
	}
}

// drawRow paints one " label  category " row.
func (p *Popup) drawRow(screen tcell.Screen, l Layout, row int, cand completion.Candidate, style tcell.Style, focused bool) {
	y := l.MenuY + row
	label := cand.DisplayLabel()
	cat := cand.Category()

	x := l.MenuX
	putString(screen, x, y, " ", style)
	x++
	x = putString(screen, x, y, label, style)

	// Right-align the category tag.
	catX := l.MenuX + l.MenuW - len(cat) - 1
	for ; x < catX; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
	catStyle := p.catStyle
	if focused {
		catStyle = style
	}
	x = putString(screen, catX, y, cat, catStyle)
	putString(screen, x, y, " ", style)
}

// drawDoc paints the wrapped documentation panel.
func (p *Popup) drawDoc(screen tcell.Screen, l Layout, doc string) {
	lines := wrapText(doc, l.DocW-2)
	for row := 0; row < l.DocH; row++ {
		y := l.DocY + row
		for x := l.DocX; x < l.DocX+l.DocW; x++ {
			screen.SetContent(x, y, ' ', nil, p.docStyle)
		}
		if row < len(lines) {
			putString(screen, l.DocX+1, y, lines[row], p.docStyle)
		}
	}
}

// focusedDocumentation returns the focused candidate's documentation or
// detail text, when it has any.
func focusedDocumentation(menu *completion.Menu) string {
	sel, ok := menu.Selection()
	if !ok {
		return ""
	}
	sc, ok := sel.(completion.ServerCandidate)
	if !ok {
		return ""
	}
	if doc := sc.Item.DocumentationString(); doc != "" {
		return doc
	}
	return sc.Item.Detail
}

// rowWidth returns the cell width needed for the widest row.
func rowWidth(cands []completion.Candidate) int {
	w := 0
	for _, c := range cands {
		// Leading space, label, two-space gap, category, trailing space.
		if n := len(c.DisplayLabel()) + len(c.Category()) + 4; n > w {
			w = n
		}
	}
	return w
}

// scrollTop returns the first visible row index so the focused row stays
// inside a window of height rows.
func scrollTop(focus, total, height int) int {
	if height <= 0 || total <= height {
		return 0
	}
	top := focus - height/2
	return clamp(top, 0, total-height)
}

// putString draws s starting at (x, y) and returns the x after the last cell.
func putString(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
