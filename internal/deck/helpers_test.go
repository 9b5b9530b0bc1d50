package deck

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/youruser/deckbuilder/internal/cards"
)

// testCatalog has Mage/Ogre from the reference scenario, enough DM and PG
// commons to fill a deck, plus one card of each remaining kind.
func testCatalog() *cards.Catalog {
	list := []cards.Card{
		{Name: "Mage", Cost: 3, Faction: cards.FactionDM, Type: "Creature", Rarity: cards.RarityCommon},
		{Name: "Ogre", Cost: 5, Faction: cards.FactionPG, Type: "Creature", Rarity: cards.RarityLegendary},
		{Name: "Legendary Beast", Cost: 7, Faction: cards.FactionDM, Type: "Creature", Rarity: cards.RarityLegendary},
		{Name: "Fireball", Cost: 3, Faction: cards.FactionWH, Type: "Spell", Rarity: cards.RarityUncommon},
		{Name: "Tidecaller", Cost: 2, Faction: cards.FactionAO, Type: "Creature", Rarity: cards.RarityCommon},
		{Name: "Bandit", Cost: 2, Faction: cards.FactionNeutral, Type: "Creature", Rarity: cards.RarityCommon},
		{Name: "Spark", Cost: 0, Faction: cards.FactionNeutral, Type: "Token"},
	}
	for i := 1; i <= 14; i++ {
		list = append(list, cards.Card{Name: fmt.Sprintf("Adept %d", i), Cost: i % 6, Faction: cards.FactionDM, Type: "Creature", Rarity: cards.RarityCommon})
	}
	for i := 1; i <= 5; i++ {
		list = append(list, cards.Card{Name: fmt.Sprintf("Guard %d", i), Cost: i, Faction: cards.FactionPG, Type: "Creature", Rarity: cards.RarityCommon})
	}
	for i := range list {
		list[i].ID = i + 1
	}
	return cards.NewCatalog(list)
}

// addN adds n copies of name and fails the test on the first rejection.
func addN(t *testing.T, e *Engine, s *State, name string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, e.AddCard(s, name), "adding copy %d of %s", i+1, name)
	}
}

// fullDM returns a DM deck holding exactly MaxDeckSize cards.
func fullDM(t *testing.T, e *Engine) *State {
	t.Helper()
	s := New()
	require.NoError(t, e.SetPrimaryFaction(s, cards.FactionDM))
	for i := 1; i <= 13; i++ {
		addN(t, e, s, fmt.Sprintf("Adept %d", i), 3)
	}
	addN(t, e, s, "Mage", 1)
	require.Equal(t, MaxDeckSize, s.Total())
	return s
}
