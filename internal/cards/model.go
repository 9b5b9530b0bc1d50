package cards

import (
	"fmt"
	"strings"
)

// Faction is one of the closed set of card factions.
type Faction string

const (
	FactionDM      Faction = "DM"
	FactionPG      Faction = "PG"
	FactionWH      Faction = "WH"
	FactionAO      Faction = "AO"
	FactionNeutral Faction = "Neutral"
)

// Factions lists every faction in display and export order.
var Factions = []Faction{FactionDM, FactionPG, FactionWH, FactionAO, FactionNeutral}

// ParseFaction validates a faction code. Matching is exact, codes are case sensitive.
func ParseFaction(s string) (Faction, error) {
	for _, f := range Factions {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown faction %q", s)
}

// Selectable reports whether a deck can pick f as its primary or secondary faction.
func (f Faction) Selectable() bool {
	return f != "" && f != FactionNeutral
}

// Rarity is a card's rarity tier. The empty string is a valid, unranked rarity.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
)

// Rank orders rarities Common < Uncommon < Rare < Legendary; anything else is 0.
func (r Rarity) Rank() int {
	switch r {
	case RarityCommon:
		return 1
	case RarityUncommon:
		return 2
	case RarityRare:
		return 3
	case RarityLegendary:
		return 4
	default:
		return 0
	}
}

// Copy caps per card.
const (
	MaxCopies          = 3
	MaxLegendaryCopies = 1
)

// unplayableTypes mark catalog rows that exist only as game pieces.
var unplayableTypes = []string{"token", "cantrip", "bane", "boon"}

// Card is a single catalog record. Cards are immutable once loaded.
type Card struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Cost       int     `json:"cost"`
	Faction    Faction `json:"faction"`
	Type       string  `json:"type"`
	Rarity     Rarity  `json:"rarity"`
	Statline   string  `json:"statline"`
	Attributes string  `json:"attributes"`
	Ability    string  `json:"ability"`
}

// IsPlayable reports whether the card may be put in a deck.
func (c Card) IsPlayable() bool {
	t := strings.ToLower(c.Type)
	for _, u := range unplayableTypes {
		if strings.Contains(t, u) {
			return false
		}
	}
	return true
}

// CopyLimit is the number of copies of c a deck may hold.
func (c Card) CopyLimit() int {
	if c.Rarity == RarityLegendary {
		return MaxLegendaryCopies
	}
	return MaxCopies
}
