package deck

import (
	"sort"
	"strconv"
	"strings"

	"github.com/youruser/deckbuilder/internal/cards"
)

// ExportDecklist renders s as plain text: one group per faction in the fixed
// faction order, cards by cost then name, "<count>x <name>" per line and a
// blank line between groups. Cards missing from the catalog are not listed.
func ExportDecklist(catalog *cards.Catalog, s *State) string {
	groups := map[cards.Faction][]cards.Card{}
	for _, e := range s.Entries() {
		c, ok := catalog.Lookup(e.Name)
		if !ok {
			continue
		}
		groups[c.Faction] = append(groups[c.Faction], c)
	}

	byMana := cards.Comparator(cards.SortByMana)
	var blocks []string
	for _, f := range cards.Factions {
		list := groups[f]
		if len(list) == 0 {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool { return byMana(list[i], list[j]) < 0 })
		lines := make([]string, 0, len(list))
		for _, c := range list {
			lines = append(lines, strconv.Itoa(s.Count(c.Name))+"x "+c.Name)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
