package deck

import "github.com/youruser/deckbuilder/internal/cards"

// View is everything the presentation layer derives from a deck: totals,
// per-faction counts and which playable cards can currently be added.
type View struct {
	Total          int                   `json:"total"`
	SecondaryCount int                   `json:"secondaryCount"`
	ByFaction      map[cards.Faction]int `json:"byFaction"`
	Allowed        map[string]bool       `json:"allowed"`
}

type cachedView struct {
	state   *State
	version uint64
	view    View
}

// View derives the deck view of s. The last result is reused until s changes.
// Callers must not modify the returned maps.
func (e *Engine) View(s *State) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.view.state == s && e.view.version == s.Version() {
		return e.view.view
	}
	v := e.deriveView(s)
	e.view = cachedView{state: s, version: s.Version(), view: v}
	return v
}

func (e *Engine) deriveView(s *State) View {
	v := View{
		ByFaction: map[cards.Faction]int{},
		Allowed:   map[string]bool{},
	}
	for p := s.m().Oldest(); p != nil; p = p.Next() {
		v.Total += p.Value
		if c, ok := e.catalog.Lookup(p.Key); ok {
			v.ByFaction[c.Faction] += p.Value
		}
	}
	if s.Secondary != "" {
		v.SecondaryCount = v.ByFaction[s.Secondary]
	}
	for _, c := range e.catalog.Playable() {
		v.Allowed[c.Name] = e.CanAdd(s, c.Name) == nil
	}
	return v
}
