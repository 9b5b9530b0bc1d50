package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/deckbuilder/internal/cards"
)

func requireReason(t *testing.T, err error, reason error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, reason)
	var le *LegalityError
	require.True(t, errors.As(err, &le))
}

func TestReferenceScenario(t *testing.T) {
	e := NewEngine(testCatalog())
	s := New()
	require.NoError(t, e.SetPrimaryFaction(s, cards.FactionDM))
	require.NoError(t, e.SetSecondaryFaction(s, cards.FactionPG))

	addN(t, e, s, "Mage", 2)
	assert.Equal(t, []Entry{{Name: "Mage", Count: 2}}, s.Entries())

	require.NoError(t, e.AddCard(s, "Ogre"))
	requireReason(t, e.AddCard(s, "Ogre"), ErrCopyLimitReached)
	assert.Equal(t, []Entry{{Name: "Mage", Count: 2}, {Name: "Ogre", Count: 1}}, s.Entries())

	assert.Equal(t, "primary=DM&secondary=PG&cards=2xMage%2B1xOgre", EncodeURL(s))
}

func TestCopyLimits(t *testing.T) {
	e := NewEngine(testCatalog())
	s := New()
	require.NoError(t, e.SetPrimaryFaction(s, cards.FactionDM))

	addN(t, e, s, "Mage", 3)
	err := e.AddCard(s, "Mage")
	requireReason(t, err, ErrCopyLimitReached)
	assert.Equal(t, 3, s.Count("Mage"))

	var le *LegalityError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "CopyLimitReached", le.Code())
	assert.Equal(t, "Maximum 3 copies of Mage.", le.Message())

	addN(t, e, s, "Legendary Beast", 1)
	requireReason(t, e.AddCard(s, "Legendary Beast"), ErrCopyLimitReached)
	assert.Equal(t, 1, s.Count("Legendary Beast"))
}

func TestCanAddRejections(t *testing.T) {
	e := NewEngine(testCatalog())
	s := New()
	require.NoError(t, e.SetPrimaryFaction(s, cards.FactionDM))
	addN(t, e, s, "Mage", 1)
	before := s.Clone()

	requireReason(t, e.AddCard(s, "Nobody"), ErrUnknownCard)
	requireReason(t, e.AddCard(s, "Spark"), ErrNotPlayable)
	requireReason(t, e.AddCard(s, "Fireball"), ErrFactionNotAllowed)
	requireReason(t, e.AddCard(s, "Ogre"), ErrFactionNotAllowed)
	assert.True(t, s.Equal(before), "rejected mutations leave the deck unchanged")

	require.NoError(t, e.AddCard(s, "Bandit"), "Neutral is always allowed")
}

func TestNoFactionSelectedAllowsOnlyNeutral(t *testing.T) {
	e := NewEngine(testCatalog())
	s := New()
	requireReason(t, e.AddCard(s, "Mage"), ErrFactionNotAllowed)
	require.NoError(t, e.AddCard(s, "Bandit"))
}

func TestDeckFull(t *testing.T) {
	e := NewEngine(testCatalog())
	s := fullDM(t, e)
	requireReason(t, e.AddCard(s, "Adept 14"), ErrDeckFull)
	requireReason(t, e.AddCard(s, "Bandit"), ErrDeckFull)
	assert.Equal(t, MaxDeckSize, s.Total())
}

func TestCheckOrder(t *testing.T) {
	e := NewEngine(testCatalog())
	s := fullDM(t, e)

	// Capped and full: the per-card cap is reported first.
	requireReason(t, e.AddCard(s, "Adept 1"), ErrCopyLimitReached)
	// Wrong faction and full: faction is reported first.
	requireReason(t, e.AddCard(s, "Fireball"), ErrFactionNotAllowed)
	// Unplayable beats everything else.
	requireReason(t, e.AddCard(s, "Spark"), ErrNotPlayable)
}

func TestSecondaryFactionLimit(t *testing.T) {
	e := NewEngine(testCatalog())
	s := New()
	require.NoError(t, e.SetPrimaryFaction(s, cards.FactionDM))
	require.NoError(t, e.SetSecondaryFaction(s, cards.FactionPG))

	addN(t, e, s, "Guard 1", 3)
	addN(t, e, s, "Guard 2", 3)
	addN(t, e, s, "Guard 3", 3)
	addN(t, e, s, "Ogre", 1)
	assert.Equal(t, 10, e.SecondaryCount(s))

	requireReason(t, e.AddCard(s, "Guard 4"), ErrSecondaryFactionLimitReached)
	require.NoError(t, e.AddCard(s, "Mage"), "primary faction is not capped")
}

func TestRemoveCard(t *testing.T) {
	e := NewEngine(testCatalog())
	s := New()
	require.NoError(t, e.SetPrimaryFaction(s, cards.FactionDM))
	addN(t, e, s, "Mage", 2)

	e.RemoveCard(s, "Mage")
	assert.Equal(t, 1, s.Count("Mage"))
	e.RemoveCard(s, "Mage")
	assert.Equal(t, 0, s.Count("Mage"))
	assert.Equal(t, 0, s.Len(), "zero counts are not stored")

	v := s.Version()
	e.RemoveCard(s, "Mage")
	e.RemoveCard(s, "Nobody")
	assert.Equal(t, v, s.Version(), "removing an absent card is a no-op")
}

func TestReconcileDeletesOutOfFactionEntries(t *testing.T) {
	e := NewEngine(testCatalog())
	s := New()
	require.NoError(t, e.SetPrimaryFaction(s, cards.FactionDM))
	addN(t, e, s, "Mage", 3)
	addN(t, e, s, "Bandit", 2)

	require.NoError(t, e.SetPrimaryFaction(s, cards.FactionWH))
	assert.Equal(t, []Entry{{Name: "Bandit", Count: 2}}, s.Entries())
}

func TestReconcileShrinksSecondaryNewestFirst(t *testing.T) {
	tests := []struct {
		name   string
		guards []int // copies of Guard 1.., added in order
		want   []Entry
	}{
		{
			name:   "excess 2 trims the newest entry",
			guards: []int{3, 3, 3, 3},
			want: []Entry{
				{Name: "Guard 1", Count: 3},
				{Name: "Guard 2", Count: 3},
				{Name: "Guard 3", Count: 3},
				{Name: "Guard 4", Count: 1},
			},
		},
		{
			name:   "excess 4 deletes the newest and trims the next",
			guards: []int{3, 3, 3, 3, 2},
			want: []Entry{
				{Name: "Guard 1", Count: 3},
				{Name: "Guard 2", Count: 3},
				{Name: "Guard 3", Count: 3},
				{Name: "Guard 4", Count: 1},
			},
		},
		{
			name:   "under the cap is untouched",
			guards: []int{3, 3},
			want: []Entry{
				{Name: "Guard 1", Count: 3},
				{Name: "Guard 2", Count: 3},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(testCatalog())
			s := New()
			require.NoError(t, e.SetPrimaryFaction(s, cards.FactionPG))
			for i, n := range tt.guards {
				addN(t, e, s, fmt.Sprintf("Guard %d", i+1), n)
			}

			// PG becomes the secondary faction; DM takes over as primary.
			require.NoError(t, e.SetSecondaryFaction(s, cards.FactionPG))
			require.NoError(t, e.SetPrimaryFaction(s, cards.FactionDM))
			assert.Equal(t, tt.want, s.Entries())
			assert.LessOrEqual(t, e.SecondaryCount(s), MaxSecondaryCopies)
		})
	}
}

func TestRestoreShrinksOverRepresentedSecondary(t *testing.T) {
	e := NewEngine(testCatalog())
	s := DecodeURL("primary=DM&secondary=PG&cards=2xMage%2B3xGuard_1%2B3xGuard_2%2B3xGuard_3%2B3xGuard_4")
	e.Restore(s)
	assert.Equal(t, []Entry{
		{Name: "Mage", Count: 2},
		{Name: "Guard 1", Count: 3},
		{Name: "Guard 2", Count: 3},
		{Name: "Guard 3", Count: 3},
		{Name: "Guard 4", Count: 1},
	}, s.Entries())
	assert.Equal(t, MaxSecondaryCopies, e.SecondaryCount(s))
}

func TestRestoreSanitizes(t *testing.T) {
	e := NewEngine(testCatalog())
	s := DecodeURL("primary=Neutral&secondary=XX&cards=9xBandit%2B1xSpark%2B2xNobody")
	e.Restore(s)
	assert.Equal(t, cards.Faction(""), s.Primary)
	assert.Equal(t, cards.Faction(""), s.Secondary)
	assert.Equal(t, []Entry{{Name: "Bandit", Count: 3}}, s.Entries())

	var tokens []string
	for i := 1; i <= 14; i++ {
		tokens = append(tokens, fmt.Sprintf("3xAdept_%d", i))
	}
	s = DecodeURL("primary=DM&cards=" + strings.Join(tokens, "%2B"))
	e.Restore(s)
	assert.Equal(t, MaxDeckSize, s.Total())
	assert.Equal(t, 3, s.Count("Adept 13"))
	assert.Equal(t, 1, s.Count("Adept 14"), "trimmed newest first")
}

func TestInvalidFactionSelection(t *testing.T) {
	e := NewEngine(testCatalog())
	s := New()
	requireReason(t, e.SetPrimaryFaction(s, cards.FactionNeutral), ErrInvalidFaction)
	requireReason(t, e.SetSecondaryFaction(s, "XX"), ErrInvalidFaction)
	assert.True(t, s.Empty())
}

func TestSetFactions(t *testing.T) {
	e := NewEngine(testCatalog())
	s := DecodeURL("primary=DM&secondary=PG&cards=2xMage%2B1xOgre%2B1xBandit")

	before := s.Version()
	requireReason(t, e.SetFactions(s, cards.FactionWH, cards.FactionNeutral), ErrInvalidFaction)
	assert.Equal(t, "primary=DM&secondary=PG&cards=2xMage%2B1xOgre%2B1xBandit", EncodeURL(s))
	assert.Equal(t, before, s.Version(), "rejected selection does not touch the deck")

	require.NoError(t, e.SetFactions(s, cards.FactionPG, cards.FactionDM))
	assert.Equal(t, "primary=PG&secondary=DM&cards=2xMage%2B1xOgre%2B1xBandit", EncodeURL(s))
	assert.Equal(t, 2, e.SecondaryCount(s))

	require.NoError(t, e.SetFactions(s, cards.FactionWH, ""))
	assert.Equal(t, "primary=WH&cards=1xBandit", EncodeURL(s))
}

// TestInvariantsHoldUnderRandomMutations drives the engine with a seeded random
// sequence of adds, removes and faction changes.
func TestInvariantsHoldUnderRandomMutations(t *testing.T) {
	catalog := testCatalog()
	e := NewEngine(catalog)
	s := New()
	rng := rand.New(rand.NewSource(42))
	all := catalog.All()
	factions := []cards.Faction{"", cards.FactionDM, cards.FactionPG, cards.FactionWH, cards.FactionAO}

	for i := 0; i < 5000; i++ {
		switch r := rng.Intn(20); {
		case r == 0:
			_ = e.SetPrimaryFaction(s, factions[rng.Intn(len(factions))])
		case r == 1:
			_ = e.SetSecondaryFaction(s, factions[rng.Intn(len(factions))])
		case r < 6:
			e.RemoveCard(s, all[rng.Intn(len(all))].Name)
		default:
			_ = e.AddCard(s, all[rng.Intn(len(all))].Name)
		}

		require.LessOrEqual(t, s.Total(), MaxDeckSize)
		require.LessOrEqual(t, e.SecondaryCount(s), MaxSecondaryCopies)
		allowed := AllowedFactions(s.Primary, s.Secondary)
		for _, entry := range s.Entries() {
			c, ok := catalog.Lookup(entry.Name)
			require.True(t, ok)
			require.True(t, c.IsPlayable())
			require.Positive(t, entry.Count)
			require.LessOrEqual(t, entry.Count, c.CopyLimit())
			require.True(t, allowed[c.Faction], "%s in a %s/%s deck", c.Name, s.Primary, s.Secondary)
		}
	}
}
