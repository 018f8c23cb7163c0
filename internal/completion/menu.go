package completion

import "sort"

// Menu is the live candidate store behind a completion popup. Candidates
// that fail the current filter are hidden, not discarded, so widening the
// fragment re-reveals them without re-querying the provider.
//
// A menu belongs to its session's owner goroutine and is not safe for
// concurrent use.
type Menu struct {
	entries  []menuEntry
	visible  []int // indexes into entries, display order
	focus    int   // index into visible; -1 when nothing is focused
	fragment string
}

type menuEntry struct {
	cand  Candidate
	score int
}

// NewMenu creates a menu seeded with the given candidates.
func NewMenu(cands ...Candidate) *Menu {
	m := &Menu{focus: -1}
	m.Add(cands...)
	return m
}

// Add appends a batch of candidates. Preselected server candidates sort
// before everything else, arrival order is preserved otherwise, and the
// current fragment is re-applied so new matches become visible immediately.
func (m *Menu) Add(cands ...Candidate) {
	if len(cands) == 0 {
		return
	}
	for _, c := range cands {
		m.entries = append(m.entries, menuEntry{cand: c})
	}
	sort.SliceStable(m.entries, func(i, j int) bool {
		return preselected(m.entries[i].cand) && !preselected(m.entries[j].cand)
	})
	m.Score(m.fragment, true)
}

func preselected(c Candidate) bool {
	sc, ok := c.(ServerCandidate)
	return ok && sc.Item.Preselect
}

// Score rescores every candidate's filter key against fragment. Candidates
// with no match are hidden; the rest are ordered by relevance with ties
// keeping their pre-scoring order. When preserveFocus is set and the
// previously focused candidate is still visible, it stays focused;
// otherwise focus falls back to the top row.
func (m *Menu) Score(fragment string, preserveFocus bool) {
	var focused Candidate
	if preserveFocus {
		focused, _ = m.Selection()
	}

	m.fragment = fragment
	m.visible = m.visible[:0]
	for i := range m.entries {
		key := m.entries[i].cand.FilterKey()
		if fragment != "" && !fuzzyMatch(key, fragment) {
			continue
		}
		m.entries[i].score = fuzzyScore(key, fragment)
		m.visible = append(m.visible, i)
	}
	sort.SliceStable(m.visible, func(a, b int) bool {
		return m.entries[m.visible[a]].score > m.entries[m.visible[b]].score
	})

	m.focus = -1
	if focused != nil {
		for vi, ei := range m.visible {
			if m.entries[ei].cand.Equal(focused) {
				m.focus = vi
				break
			}
		}
	}
	if m.focus == -1 && len(m.visible) > 0 {
		m.focus = 0
	}
}

// Replace swaps old for new in place, keeping the slot so a selection
// pointing at it remains valid. Returns false when old is not present.
func (m *Menu) Replace(old, new Candidate) bool {
	for i := range m.entries {
		if m.entries[i].cand.Equal(old) {
			m.entries[i].cand = new
			return true
		}
	}
	return false
}

// Contains reports whether a value-equal candidate is present, hidden or not.
func (m *Menu) Contains(c Candidate) bool {
	for i := range m.entries {
		if m.entries[i].cand.Equal(c) {
			return true
		}
	}
	return false
}

// Selection returns the focused candidate.
func (m *Menu) Selection() (Candidate, bool) {
	if m.focus < 0 || m.focus >= len(m.visible) {
		return nil, false
	}
	return m.entries[m.visible[m.focus]].cand, true
}

// MoveFocus moves the focus by delta rows, wrapping at either end.
func (m *Menu) MoveFocus(delta int) {
	n := len(m.visible)
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
}

// Visible returns the visible candidates in display order.
func (m *Menu) Visible() []Candidate {
	out := make([]Candidate, len(m.visible))
	for vi, ei := range m.visible {
		out[vi] = m.entries[ei].cand
	}
	return out
}

// FocusIndex returns the focused row within Visible, or -1.
func (m *Menu) FocusIndex() int {
	if len(m.visible) == 0 {
		return -1
	}
	return m.focus
}

// Clear discards every candidate.
func (m *Menu) Clear() {
	m.entries = nil
	m.visible = nil
	m.focus = -1
	m.fragment = ""
}

// IsEmpty reports whether the menu holds no candidates at all.
func (m *Menu) IsEmpty() bool { return len(m.entries) == 0 }

// Len returns the total candidate count, hidden included.
func (m *Menu) Len() int { return len(m.entries) }

// VisibleLen returns the number of candidates passing the current filter.
func (m *Menu) VisibleLen() int { return len(m.visible) }
