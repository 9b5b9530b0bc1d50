package cards

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the primary sort key of FilterAndSort.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByMana   SortKey = "mana"
	SortByRarity SortKey = "rarity"
	SortByType   SortKey = "type"
)

// ParseSortKey validates a sort key; the empty string means name.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByName, nil
	case SortByName, SortByMana, SortByRarity, SortByType:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Criteria describes a catalog query.
type Criteria struct {
	// Factions accepted by the query. Empty, or containing "", accepts all.
	Factions   []string `json:"factions" form:"faction"`
	Search     string   `json:"search" form:"q"`
	SortBy     SortKey  `json:"sort" form:"sort"`
	Descending bool     `json:"desc" form:"desc"`
}

// Counter reports how many copies of a card are in a deck.
type Counter interface {
	Count(name string) int
}

// Entry is a catalog card annotated with its quantity in the current deck.
type Entry struct {
	Card
	Quantity int `json:"quantity"`
}

func (c Criteria) acceptsFaction(f Faction) bool {
	if len(c.Factions) == 0 {
		return true
	}
	for _, a := range c.Factions {
		if a == "" || a == string(f) {
			return true
		}
	}
	return false
}

// Matches reports whether a card passes the filter part of the criteria.
func (c Criteria) Matches(card Card) bool {
	if !card.IsPlayable() || !c.acceptsFaction(card.Faction) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(c.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(card.Name), term) ||
		strings.Contains(strings.ToLower(card.Type), term) ||
		strings.Contains(strings.ToLower(card.Ability), term)
}

// FilterAndSort returns the playable cards matching criteria, ordered by it,
// each annotated with its quantity in deck. deck may be nil.
func FilterAndSort(catalog *Catalog, deck Counter, criteria Criteria) []Entry {
	out := []Entry{}
	for _, card := range catalog.cards {
		if !criteria.Matches(card) {
			continue
		}
		e := Entry{Card: card}
		if deck != nil {
			e.Quantity = deck.Count(card.Name)
		}
		out = append(out, e)
	}

	cmp := Comparator(criteria.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		r := cmp(out[i].Card, out[j].Card)
		if criteria.Descending {
			r = -r
		}
		return r < 0
	})
	return out
}

// Comparator returns a three-way comparison for key with name as tie-breaker.
// Unknown keys sort by name.
func Comparator(key SortKey) func(a, b Card) int {
	col := collate.New(language.English)
	byName := func(a, b Card) int { return col.CompareString(a.Name, b.Name) }
	switch key {
	case SortByMana:
		return func(a, b Card) int {
			if a.Cost != b.Cost {
				return compareInt(a.Cost, b.Cost)
			}
			return byName(a, b)
		}
	case SortByRarity:
		return func(a, b Card) int {
			if ra, rb := a.Rarity.Rank(), b.Rarity.Rank(); ra != rb {
				return compareInt(ra, rb)
			}
			return byName(a, b)
		}
	case SortByType:
		return func(a, b Card) int {
			if r := col.CompareString(a.Type, b.Type); r != 0 {
				return r
			}
			return byName(a, b)
		}
	default:
		return byName
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
