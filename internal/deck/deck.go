// Package deck holds the deck state, the legality rules that guard it, and the
// URL fragment codec that makes a deck shareable.
package deck

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/youruser/deckbuilder/internal/cards"
)

// Deck limits.
const (
	MaxDeckSize        = 40
	MaxSecondaryCopies = 10
)

// Entry is one card of a deck and its copy count.
type Entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// State is the deck being built. Entries keep their insertion order; a card
// keeps its position when its count changes. Counts are never stored as zero.
//
// State is mutated only through Engine. The zero value is an empty deck.
type State struct {
	Name      string
	Primary   cards.Faction
	Secondary cards.Faction

	entries *orderedmap.OrderedMap[string, int]
	version uint64
}

// New returns an empty deck.
func New() *State {
	return &State{entries: orderedmap.New[string, int]()}
}

func (s *State) m() *orderedmap.OrderedMap[string, int] {
	if s.entries == nil {
		s.entries = orderedmap.New[string, int]()
	}
	return s.entries
}

// Count returns the copies of name in the deck.
func (s *State) Count(name string) int {
	n, _ := s.m().Get(name)
	return n
}

// Total returns the number of copies across the deck.
func (s *State) Total() int {
	total := 0
	for p := s.m().Oldest(); p != nil; p = p.Next() {
		total += p.Value
	}
	return total
}

// Len returns the number of distinct cards.
func (s *State) Len() int { return s.m().Len() }

// Empty reports whether the deck has no cards and no metadata.
func (s *State) Empty() bool {
	return s.Len() == 0 && s.Name == "" && s.Primary == "" && s.Secondary == ""
}

// Entries lists the deck in insertion order.
func (s *State) Entries() []Entry {
	out := make([]Entry, 0, s.m().Len())
	for p := s.m().Oldest(); p != nil; p = p.Next() {
		out = append(out, Entry{Name: p.Key, Count: p.Value})
	}
	return out
}

// Version increases on every mutation.
func (s *State) Version() uint64 { return s.version }

// Clone returns an independent copy with the same entry order.
func (s *State) Clone() *State {
	c := &State{
		Name:      s.Name,
		Primary:   s.Primary,
		Secondary: s.Secondary,
		entries:   orderedmap.New[string, int](),
		version:   s.version,
	}
	for p := s.m().Oldest(); p != nil; p = p.Next() {
		c.entries.Set(p.Key, p.Value)
	}
	return c
}

// Equal reports whether two decks hold the same metadata and multiset of cards.
// Entry order is ignored.
func (s *State) Equal(o *State) bool {
	if s.Name != o.Name || s.Primary != o.Primary || s.Secondary != o.Secondary || s.Len() != o.Len() {
		return false
	}
	for p := s.m().Oldest(); p != nil; p = p.Next() {
		if o.Count(p.Key) != p.Value {
			return false
		}
	}
	return true
}

// set stores n copies of name; n <= 0 deletes the entry.
func (s *State) set(name string, n int) {
	if n <= 0 {
		s.m().Delete(name)
	} else {
		s.m().Set(name, n)
	}
	s.touch()
}

func (s *State) touch() { s.version++ }

type stateJSON struct {
	Name      string        `json:"name"`
	Primary   cards.Faction `json:"primary"`
	Secondary cards.Faction `json:"secondary"`
	Cards     []Entry       `json:"cards"`
	Total     int           `json:"total"`
}

func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Name:      s.Name,
		Primary:   s.Primary,
		Secondary: s.Secondary,
		Cards:     s.Entries(),
		Total:     s.Total(),
	})
}
