package cards

import (
	"math"
	"strconv"
	"strings"
)

// Column layout of a catalog row. Column 0 is unused and columns past
// colAbility are ignored.
const (
	colName = iota + 1
	colCost
	colType
	colRarity
	colStatline
	colAttributes
	colAbility
)

const minColumns = 3

// SplitRow splits one catalog line on commas. A double quote toggles quoting;
// commas inside a quoted span are literal and the quote itself is never copied.
func SplitRow(line string) []string {
	var (
		fields []string
		sb     strings.Builder
		quoted bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			fields = append(fields, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	return append(fields, sb.String())
}

// ParseCSV turns the text of one catalog source into cards of the given faction.
// The first non-empty line is the header. IDs start at firstID and increase by
// one per accepted row.
func ParseCSV(faction Faction, data string, firstID int) []Card {
	lines := strings.Split(data, "\n")
	out := []Card{}
	id := firstID
	header := true
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		row := SplitRow(line)
		if len(row) < minColumns || allEmpty(row) {
			continue
		}
		name := strings.TrimSpace(row[colName])
		if name == "" {
			continue
		}
		get := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		out = append(out, Card{
			ID:         id,
			Name:       name,
			Cost:       parseCost(get(colCost)),
			Faction:    faction,
			Type:       get(colType),
			Rarity:     Rarity(get(colRarity)),
			Statline:   get(colStatline),
			Attributes: get(colAttributes),
			Ability:    get(colAbility),
		})
		id++
	}
	return out
}

func allEmpty(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseCost reads the longest numeric prefix as a float and truncates it.
// Anything unreadable, negative or non-finite is 0.
func parseCost(s string) int {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err != nil {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0
		}
		if v > math.MaxInt32 {
			return math.MaxInt32
		}
		return int(v)
	}
	return 0
}
