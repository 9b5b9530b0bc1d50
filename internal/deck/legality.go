package deck

import (
	"errors"
	"fmt"
	"sync"

	"github.com/youruser/deckbuilder/internal/cards"
)

// Rejection reasons. A *LegalityError wraps exactly one of them.
var (
	ErrUnknownCard                  = errors.New("unknown card")
	ErrNotPlayable                  = errors.New("card is not playable")
	ErrFactionNotAllowed            = errors.New("faction not allowed")
	ErrCopyLimitReached             = errors.New("copy limit reached")
	ErrDeckFull                     = errors.New("deck is full")
	ErrSecondaryFactionLimitReached = errors.New("secondary faction limit reached")
	ErrInvalidFaction               = errors.New("invalid faction")
)

var reasonCodes = map[error]string{
	ErrUnknownCard:                  "UnknownCard",
	ErrNotPlayable:                  "NotPlayable",
	ErrFactionNotAllowed:            "FactionNotAllowed",
	ErrCopyLimitReached:             "CopyLimitReached",
	ErrDeckFull:                     "DeckFull",
	ErrSecondaryFactionLimitReached: "SecondaryFactionLimitReached",
	ErrInvalidFaction:               "InvalidFaction",
}

// LegalityError is a rejected mutation. The deck is left unchanged.
type LegalityError struct {
	Reason error
	Card   string
	Limit  int
}

func (e *LegalityError) Error() string {
	return fmt.Sprintf("cannot add %q: %v", e.Card, e.Reason)
}

func (e *LegalityError) Unwrap() error { return e.Reason }

// Code is the stable identifier of the reason, e.g. "DeckFull".
func (e *LegalityError) Code() string { return reasonCodes[e.Reason] }

// Message is a short text suitable for showing to the user.
func (e *LegalityError) Message() string {
	switch e.Reason {
	case ErrUnknownCard:
		return fmt.Sprintf("%s is not in the catalog.", e.Card)
	case ErrNotPlayable:
		return fmt.Sprintf("%s cannot be put in a deck.", e.Card)
	case ErrFactionNotAllowed:
		return fmt.Sprintf("%s is not in your deck's factions.", e.Card)
	case ErrCopyLimitReached:
		return fmt.Sprintf("Maximum %d copies of %s.", e.Limit, e.Card)
	case ErrDeckFull:
		return fmt.Sprintf("Deck is full (%d cards).", e.Limit)
	case ErrSecondaryFactionLimitReached:
		return fmt.Sprintf("Maximum %d cards from the secondary faction.", e.Limit)
	case ErrInvalidFaction:
		return fmt.Sprintf("%s cannot be chosen as a deck faction.", e.Card)
	}
	return e.Error()
}

func reject(reason error, card string, limit int) *LegalityError {
	return &LegalityError{Reason: reason, Card: card, Limit: limit}
}

// Engine evaluates and applies deck mutations against a catalog. The rules
// themselves are pure; the engine only caches derived views.
type Engine struct {
	catalog *cards.Catalog

	mu   sync.Mutex
	view cachedView
}

func NewEngine(catalog *cards.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

func (e *Engine) Catalog() *cards.Catalog { return e.catalog }

// AllowedFactions is the set of factions a deck with the given selection may
// hold: the selected factions plus Neutral.
func AllowedFactions(primary, secondary cards.Faction) map[cards.Faction]bool {
	allowed := map[cards.Faction]bool{cards.FactionNeutral: true}
	if primary != "" {
		allowed[primary] = true
	}
	if secondary != "" {
		allowed[secondary] = true
	}
	return allowed
}

// SecondaryCount returns the copies in s belonging to its secondary faction.
func (e *Engine) SecondaryCount(s *State) int {
	if s.Secondary == "" {
		return 0
	}
	return e.factionCount(s, s.Secondary)
}

func (e *Engine) factionCount(s *State, f cards.Faction) int {
	n := 0
	for p := s.m().Oldest(); p != nil; p = p.Next() {
		if c, ok := e.catalog.Lookup(p.Key); ok && c.Faction == f {
			n += p.Value
		}
	}
	return n
}

// CanAdd reports whether one more copy of name may be added to s. Checks run
// in a fixed order so the reported reason is deterministic.
func (e *Engine) CanAdd(s *State, name string) error {
	card, ok := e.catalog.Lookup(name)
	if !ok {
		return reject(ErrUnknownCard, name, 0)
	}
	if !card.IsPlayable() {
		return reject(ErrNotPlayable, name, 0)
	}
	if !AllowedFactions(s.Primary, s.Secondary)[card.Faction] {
		return reject(ErrFactionNotAllowed, name, 0)
	}
	if limit := card.CopyLimit(); s.Count(name) >= limit {
		return reject(ErrCopyLimitReached, name, limit)
	}
	if s.Total() >= MaxDeckSize {
		return reject(ErrDeckFull, name, MaxDeckSize)
	}
	if s.Secondary != "" && card.Faction == s.Secondary && e.SecondaryCount(s) >= MaxSecondaryCopies {
		return reject(ErrSecondaryFactionLimitReached, name, MaxSecondaryCopies)
	}
	return nil
}

// AddCard adds one copy of name, or returns a *LegalityError and leaves s
// untouched.
func (e *Engine) AddCard(s *State, name string) error {
	if err := e.CanAdd(s, name); err != nil {
		return err
	}
	s.set(name, s.Count(name)+1)
	return nil
}

// RemoveCard removes one copy of name. Removing an absent card does nothing.
func (e *Engine) RemoveCard(s *State, name string) {
	n := s.Count(name)
	if n == 0 {
		return
	}
	s.set(name, n-1)
}

// SetDeckName sets the deck title.
func (e *Engine) SetDeckName(s *State, name string) {
	s.Name = name
	s.touch()
}

// SetPrimaryFaction selects the primary faction and reconciles the deck.
// The empty string clears the selection.
func (e *Engine) SetPrimaryFaction(s *State, f cards.Faction) error {
	if err := checkSelectable(f); err != nil {
		return err
	}
	s.Primary = f
	e.Reconcile(s)
	return nil
}

// SetSecondaryFaction selects the secondary faction and reconciles the deck.
// The empty string clears the selection.
func (e *Engine) SetSecondaryFaction(s *State, f cards.Faction) error {
	if err := checkSelectable(f); err != nil {
		return err
	}
	s.Secondary = f
	e.Reconcile(s)
	return nil
}

// SetFactions selects both factions at once and reconciles against the final
// pair only. Either code being invalid leaves s untouched.
func (e *Engine) SetFactions(s *State, primary, secondary cards.Faction) error {
	if err := checkSelectable(primary); err != nil {
		return err
	}
	if err := checkSelectable(secondary); err != nil {
		return err
	}
	s.Primary, s.Secondary = primary, secondary
	e.Reconcile(s)
	return nil
}

func checkSelectable(f cards.Faction) error {
	if f == "" {
		return nil
	}
	if _, err := cards.ParseFaction(string(f)); err != nil || !f.Selectable() {
		return reject(ErrInvalidFaction, string(f), 0)
	}
	return nil
}

// Clear empties the deck and its metadata.
func (e *Engine) Clear(s *State) {
	s.Name, s.Primary, s.Secondary = "", "", ""
	s.entries = nil
	s.touch()
}

// Reconcile restores the faction invariants after a faction change. Entries
// outside the allowed factions are deleted outright. If the secondary faction
// still exceeds its cap, its entries are shrunk newest first until the total
// is exactly MaxSecondaryCopies.
func (e *Engine) Reconcile(s *State) {
	allowed := AllowedFactions(s.Primary, s.Secondary)
	for _, entry := range s.Entries() {
		c, ok := e.catalog.Lookup(entry.Name)
		if ok && !allowed[c.Faction] {
			s.m().Delete(entry.Name)
		}
	}
	if s.Secondary != "" {
		excess := e.SecondaryCount(s) - MaxSecondaryCopies
		e.shrinkNewestFirst(s, excess, func(c cards.Card) bool { return c.Faction == s.Secondary })
	}
	s.touch()
}

// shrinkNewestFirst removes excess copies from entries accepted by match, walking
// from the most recently inserted entry backwards.
func (e *Engine) shrinkNewestFirst(s *State, excess int, match func(cards.Card) bool) {
	for p := s.m().Newest(); p != nil && excess > 0; {
		prev := p.Prev()
		c, ok := e.catalog.Lookup(p.Key)
		if ok && match(c) {
			cut := min(p.Value, excess)
			excess -= cut
			if p.Value == cut {
				s.m().Delete(p.Key)
			} else {
				s.m().Set(p.Key, p.Value-cut)
			}
		}
		p = prev
	}
}

// Restore makes an untrusted deck, typically one decoded from a URL, satisfy
// every invariant: unknown, unplayable and invalid faction selections are
// dropped, counts are clamped to each card's cap, factions are reconciled and
// the deck is trimmed newest first to MaxDeckSize.
func (e *Engine) Restore(s *State) {
	if checkSelectable(s.Primary) != nil {
		s.Primary = ""
	}
	if checkSelectable(s.Secondary) != nil {
		s.Secondary = ""
	}
	for _, entry := range s.Entries() {
		c, ok := e.catalog.Lookup(entry.Name)
		switch {
		case !ok || !c.IsPlayable():
			s.m().Delete(entry.Name)
		case entry.Count > c.CopyLimit():
			s.m().Set(entry.Name, c.CopyLimit())
		}
	}
	e.Reconcile(s)
	if excess := s.Total() - MaxDeckSize; excess > 0 {
		e.shrinkNewestFirst(s, excess, func(cards.Card) bool { return true })
	}
	s.touch()
}
