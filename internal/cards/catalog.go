package cards

// Catalog is the card index built by one load. It is never mutated after
// construction and is safe for concurrent reads.
type Catalog struct {
	cards  []Card
	byName map[string]int
	dupes  []string
}

// NewCatalog indexes cards by name. When two records share a name the first
// one owns the name; the rest stay listed by All and are reported by Duplicates.
func NewCatalog(cards []Card) *Catalog {
	c := &Catalog{
		cards:  append([]Card(nil), cards...),
		byName: make(map[string]int, len(cards)),
	}
	for i, card := range c.cards {
		if _, ok := c.byName[card.Name]; ok {
			c.dupes = append(c.dupes, card.Name)
			continue
		}
		c.byName[card.Name] = i
	}
	return c
}

// Lookup finds a card by exact name.
func (c *Catalog) Lookup(name string) (Card, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// All returns every record in load order.
func (c *Catalog) All() []Card {
	return append([]Card(nil), c.cards...)
}

// Playable returns the records that may be put in a deck, in load order.
func (c *Catalog) Playable() []Card {
	out := make([]Card, 0, len(c.cards))
	for _, card := range c.cards {
		if card.IsPlayable() {
			out = append(out, card)
		}
	}
	return out
}

func (c *Catalog) Len() int { return len(c.cards) }

// Duplicates lists names that appeared more than once during indexing.
func (c *Catalog) Duplicates() []string {
	return append([]string(nil), c.dupes...)
}
