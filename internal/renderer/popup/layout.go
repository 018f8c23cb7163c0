package popup

// Layout limits.
const (
	maxMenuHeight = 10
	minMenuWidth  = 20
	minDocWidth   = 30
	maxDocWidth   = 60
	maxDocHeight  = 12
)

// Layout is the computed placement of the completion menu and its
// documentation panel, in screen cells.
type Layout struct {
	MenuX, MenuY int
	MenuW, MenuH int

	ShowDoc                bool
	DocX, DocY, DocW, DocH int
}

// Compute places a menu of rowCount rows near the cursor, clamped to a
// screenW x screenH screen. The menu opens below the cursor when it fits,
// otherwise above. The documentation panel goes beside the menu when the
// screen is wide enough, below it otherwise, and is dropped when neither
// fits.
func Compute(screenW, screenH, cursorX, cursorY, rowCount, rowWidth int, wantDoc bool) Layout {
	var l Layout
	if screenW <= 0 || screenH <= 0 || rowCount <= 0 {
		return l
	}

	l.MenuH = min(rowCount, maxMenuHeight)
	l.MenuW = clamp(rowWidth, minMenuWidth, screenW)

	below := screenH - cursorY - 1
	above := cursorY
	switch {
	case below >= l.MenuH:
		l.MenuY = cursorY + 1
	case above >= l.MenuH:
		l.MenuY = cursorY - l.MenuH
	case below >= above:
		l.MenuH = below
		l.MenuY = cursorY + 1
	default:
		l.MenuH = above
		l.MenuY = 0
	}
	if l.MenuH <= 0 {
		return Layout{}
	}

	l.MenuX = clamp(cursorX, 0, screenW-l.MenuW)

	if wantDoc {
		l.placeDoc(screenW, screenH)
	}
	return l
}

// placeDoc positions the documentation panel relative to the menu.
func (l *Layout) placeDoc(screenW, screenH int) {
	// Beside the menu when there is room to the right.
	right := screenW - (l.MenuX + l.MenuW)
	if right >= minDocWidth {
		l.ShowDoc = true
		l.DocX = l.MenuX + l.MenuW
		l.DocY = l.MenuY
		l.DocW = min(right, maxDocWidth)
		l.DocH = min(maxDocHeight, screenH-l.MenuY)
		return
	}

	// Below the menu otherwise.
	bottom := screenH - (l.MenuY + l.MenuH)
	if bottom >= 3 {
		l.ShowDoc = true
		l.DocX = l.MenuX
		l.DocY = l.MenuY + l.MenuH
		l.DocW = min(screenW-l.MenuX, maxDocWidth)
		l.DocH = min(bottom, maxDocHeight)
	}
}

// wrapText breaks s into lines at most width cells wide, splitting on
// spaces where possible. Existing newlines are respected.
func wrapText(s string, width int) []string {
	if width <= 0 || s == "" {
		return nil
	}

	var out []string
	for _, para := range splitLines(s) {
		for len(para) > width {
			// Break at the last space within or just after the window,
			// hard-break when there is none.
			br := -1
			for i := width; i > 0; i-- {
				if para[i] == ' ' {
					br = i
					break
				}
			}
			if br == -1 {
				out = append(out, para[:width])
				para = para[width:]
				continue
			}
			out = append(out, para[:br])
			para = para[br+1:]
		}
		out = append(out, para)
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
