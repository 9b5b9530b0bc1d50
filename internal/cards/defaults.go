package cards

// defaultCards is served when no catalog source could be read, so the
// builder stays usable offline.
var defaultCards = []Card{
	{Name: "Arcane Adept", Cost: 2, Faction: FactionDM, Type: "Creature", Rarity: RarityCommon, Statline: "2/2", Ability: "When played, draw a card."},
	{Name: "Runebound Sage", Cost: 4, Faction: FactionDM, Type: "Creature", Rarity: RarityRare, Statline: "3/4"},
	{Name: "Iron Sentinel", Cost: 3, Faction: FactionPG, Type: "Creature", Rarity: RarityCommon, Statline: "2/4"},
	{Name: "Bastion Warden", Cost: 6, Faction: FactionPG, Type: "Creature", Rarity: RarityLegendary, Statline: "5/7", Ability: "Allies take 1 less damage."},
	{Name: "Hollow Stalker", Cost: 2, Faction: FactionWH, Type: "Creature", Rarity: RarityUncommon, Statline: "3/1"},
	{Name: "Tidecaller", Cost: 3, Faction: FactionAO, Type: "Creature", Rarity: RarityCommon, Statline: "2/3", Ability: "Return a creature to its owner's hand."},
	{Name: "Wandering Merchant", Cost: 1, Faction: FactionNeutral, Type: "Creature", Rarity: RarityCommon, Statline: "1/1"},
	{Name: "Spark", Cost: 0, Faction: FactionNeutral, Type: "Token", Statline: "1/1"},
}

// DefaultCards returns the built-in catalog with IDs assigned from 1.
func DefaultCards() []Card {
	out := make([]Card, len(defaultCards))
	for i, c := range defaultCards {
		c.ID = i + 1
		out[i] = c
	}
	return out
}
