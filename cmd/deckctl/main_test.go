package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
)

func testEngine() *deck.Engine {
	return deck.NewEngine(cards.NewCatalog([]cards.Card{
		{ID: 1, Name: "Mage", Cost: 3, Faction: cards.FactionDM, Type: "Creature"},
		{ID: 2, Name: "Ogre", Cost: 5, Faction: cards.FactionPG, Type: "Creature", Rarity: cards.RarityLegendary},
		{ID: 3, Name: "Fireball", Cost: 3, Faction: cards.FactionWH, Type: "Spell"},
	}))
}

func readFragment(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}

func TestEditWritesAcceptedMutations(t *testing.T) {
	engine := testEngine()
	path := filepath.Join(t.TempDir(), "deck.fragment")
	require.NoError(t, os.WriteFile(path, []byte("primary=DM&secondary=PG\n"), 0o644))
	o := options{file: path, set: map[string]bool{}}
	logger := zap.NewNop()

	for _, card := range []string{"Mage", "Mage", "Ogre"} {
		o.card = card
		_, err := edit(engine, "add", o, logger)
		require.NoError(t, err)
	}
	assert.Equal(t, "primary=DM&secondary=PG&cards=2xMage%2B1xOgre", readFragment(t, path))

	o.card = "Fireball"
	_, err := edit(engine, "add", o, logger)
	assert.ErrorContains(t, err, "FactionNotAllowed")
	assert.Equal(t, "primary=DM&secondary=PG&cards=2xMage%2B1xOgre", readFragment(t, path), "rejection is not written")

	o.primary, o.secondary = "PG", "DM"
	o.set = map[string]bool{"primary": true, "secondary": true}
	s, err := edit(engine, "faction", o, logger)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count("Mage"))
	assert.Equal(t, "primary=PG&secondary=DM&cards=2xMage%2B1xOgre", readFragment(t, path))

	o.set = map[string]bool{"secondary": true}
	o.secondary = ""
	_, err = edit(engine, "faction", o, logger)
	require.NoError(t, err)
	assert.Equal(t, "primary=PG&cards=1xOgre", readFragment(t, path), "only the given flag changes")

	o.card = "Ogre"
	_, err = edit(engine, "remove", o, logger)
	require.NoError(t, err)
	o.name = "Empty"
	_, err = edit(engine, "name", o, logger)
	require.NoError(t, err)
	assert.Equal(t, "name=Empty&primary=PG", readFragment(t, path))

	_, err = edit(engine, "clear", o, logger)
	require.NoError(t, err)
	assert.Equal(t, "", readFragment(t, path))
}

func TestEditRequiresCard(t *testing.T) {
	o := options{file: filepath.Join(t.TempDir(), "deck.fragment")}
	_, err := edit(testEngine(), "add", o, zap.NewNop())
	assert.Error(t, err)
}
