package deck

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/youruser/deckbuilder/internal/cards"
)

// DeckFile represents the top-level YAML structure of a decks file.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name      string      `yaml:"name"`
	Primary   string      `yaml:"primary"`
	Secondary string      `yaml:"secondary"`
	Cards     []CardEntry `yaml:"cards"`
}

// CardEntry represents a card and its count in a deck.
type CardEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// ParseDeckFile reads a YAML decks file.
func ParseDeckFile(path string) (DeckFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DeckFile{}, err
	}
	return ParseDeckYAML(data)
}

func ParseDeckYAML(data []byte) (DeckFile, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DeckFile{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	return df, nil
}

// Build replays a deck entry through the rules, one copy at a time, exactly as
// a user would click through it. Rejected copies are returned, not applied.
func (e *Engine) Build(entry DeckEntry) (*State, []error) {
	s := New()
	var errs []error
	e.SetDeckName(s, entry.Name)
	if err := e.SetPrimaryFaction(s, cards.Faction(entry.Primary)); err != nil {
		errs = append(errs, err)
	}
	if err := e.SetSecondaryFaction(s, cards.Faction(entry.Secondary)); err != nil {
		errs = append(errs, err)
	}
	for _, c := range entry.Cards {
		for i := 0; i < c.Count; i++ {
			if err := e.AddCard(s, c.Name); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return s, errs
}
