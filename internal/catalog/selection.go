package catalog

import "github.com/iliyamo/pos-quick-sale/internal/model"

// Selection is the keyboard cursor over a MatchSet during interactive
// disambiguation.  The index starts at -1 ("none selected"), moves
// circularly on Next/Prev, and must be reset whenever the query text
// changes or the match list is dismissed.  It is a pure index
// operation with no reference to session state.
type Selection struct {
	matches MatchSet
	index   int
}

// NewSelection returns a cursor over matches with nothing selected.
func NewSelection(matches MatchSet) Selection {
	return Selection{matches: matches, index: -1}
}

// Reset replaces the match list and clears the cursor back to "none
// selected".  Used when the operator edits the query or dismisses the
// suggestion list.
func (s *Selection) Reset(matches MatchSet) {
	s.matches = matches
	s.index = -1
}

// Next moves the cursor forward, wrapping from the last entry to the
// first.  On an empty match set the cursor stays at -1.
func (s *Selection) Next() {
	if len(s.matches) == 0 {
		s.index = -1
		return
	}
	s.index = (s.index + 1) % len(s.matches)
}

// Prev moves the cursor backwards, wrapping from the first entry to
// the last.  Calling Prev with nothing selected lands on the last
// entry, mirroring the wrap-around of Next.
func (s *Selection) Prev() {
	if len(s.matches) == 0 {
		s.index = -1
		return
	}
	if s.index <= 0 {
		s.index = len(s.matches) - 1
		return
	}
	s.index--
}

// Index returns the current cursor position, -1 when nothing is
// selected.
func (s *Selection) Index() int { return s.index }

// Current returns the highlighted catalog item.  The second return
// value is false when nothing is selected.
func (s *Selection) Current() (model.CatalogItem, bool) {
	if s.index < 0 || s.index >= len(s.matches) {
		return model.CatalogItem{}, false
	}
	return s.matches[s.index], true
}
