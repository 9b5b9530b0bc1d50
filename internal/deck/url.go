package deck

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/youruser/deckbuilder/internal/cards"
)

// ErrMalformedURL is returned by ParseFragment for fragments that cannot be
// unescaped. DecodeURL swallows it and returns an empty deck.
var ErrMalformedURL = errors.New("malformed deck fragment")

// Fragment parameter names. They are part of every shared link and must not change.
const (
	paramName      = "name"
	paramPrimary   = "primary"
	paramSecondary = "secondary"
	paramCards     = "cards"
)

var cardToken = regexp.MustCompile(`^(\d+)x(.+)$`)

// EncodeURL renders s as a URL fragment, without the leading '#'. Empty values
// are omitted, so an empty deck encodes to "".
func EncodeURL(s *State) string {
	var params []string
	add := func(key, value string) {
		if value != "" {
			params = append(params, key+"="+url.QueryEscape(value))
		}
	}
	add(paramName, s.Name)
	add(paramPrimary, string(s.Primary))
	add(paramSecondary, string(s.Secondary))
	add(paramCards, EncodeCards(s.Entries()))
	return strings.Join(params, "&")
}

// EncodeCards renders entries as "<count>x<name>" tokens joined by '+', with
// spaces in names replaced by underscores.
func EncodeCards(entries []Entry) string {
	tokens := make([]string, 0, len(entries))
	for _, e := range entries {
		tokens = append(tokens, strconv.Itoa(e.Count)+"x"+strings.ReplaceAll(e.Name, " ", "_"))
	}
	return strings.Join(tokens, "+")
}

// ShareURL appends the fragment of s to base.
func ShareURL(base string, s *State) string {
	base, _, _ = strings.Cut(base, "#")
	frag := EncodeURL(s)
	if frag == "" {
		return base
	}
	return base + "#" + frag
}

// DecodeURL decodes a fragment and never fails: anything malformed yields an
// empty deck. The result has not been checked against a catalog; see
// Engine.Restore.
func DecodeURL(fragment string) *State {
	s, err := ParseFragment(fragment)
	if err != nil {
		return New()
	}
	return s
}

// ParseFragment decodes a fragment, with or without its leading '#'.
// Unrecognised parameters and card tokens are ignored. A fragment with no
// '=' at all is read as a bare card list, the format of the first deck links.
func ParseFragment(fragment string) (*State, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	s := New()
	if fragment == "" {
		return s, nil
	}
	if !strings.Contains(fragment, "=") {
		if err := decodeCards(s, fragment); err != nil {
			return nil, err
		}
		return s, nil
	}
	for _, pair := range strings.Split(fragment, "&") {
		if pair == "" {
			continue
		}
		key, raw, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
		}
		if key == paramCards {
			if err := decodeCards(s, raw); err != nil {
				return nil, err
			}
			continue
		}
		value, err := url.QueryUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
		}
		switch key {
		case paramName:
			s.Name = value
		case paramPrimary:
			s.Primary = cards.Faction(value)
		case paramSecondary:
			s.Secondary = cards.Faction(value)
		}
	}
	return s, nil
}

// decodeCards reads a raw (still escaped) cards value. '+' separates tokens
// whether it arrives literally or as %2B.
func decodeCards(s *State, raw string) error {
	value, err := url.PathUnescape(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	for _, token := range strings.Split(value, "+") {
		m := cardToken.FindStringSubmatch(strings.TrimSpace(token))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		s.m().Set(strings.ReplaceAll(m[2], "_", " "), n)
	}
	return nil
}
