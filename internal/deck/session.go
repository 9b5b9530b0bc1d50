package deck

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/metrics"
)

// Session is one user's deck-building session: the deck, the rules that guard
// it and the channel it is published on. Every accepted mutation publishes the
// new fragment; external changes on the channel replace the deck.
//
// Methods return snapshots; callers never see the live state.
type Session struct {
	engine  *Engine
	channel Channel
	logger  *zap.Logger

	mu       sync.Mutex
	state    *State
	onChange func(*State)
}

// NewSession starts a session from the fragment currently on the channel and
// subscribes to its external changes.
func NewSession(engine *Engine, channel Channel, initial string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{engine: engine, channel: channel, logger: logger}
	s.state = s.restore(initial)
	channel.OnExternalChange(s.resync)
	return s
}

// OnChange registers fn to be called with a snapshot after external changes.
func (s *Session) OnChange(fn func(*State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Session) restore(fragment string) *State {
	st, err := ParseFragment(fragment)
	if err != nil {
		s.logger.Warn("discarding malformed fragment", zap.String("fragment", fragment), zap.Error(err))
		st = New()
	}
	s.engine.Restore(st)
	return st
}

func (s *Session) resync(fragment string) {
	st := s.restore(fragment)
	s.mu.Lock()
	s.state = st
	fn := s.onChange
	snap := st.Clone()
	s.mu.Unlock()
	s.logger.Debug("deck resynchronised from channel", zap.Int("cards", snap.Total()))
	if fn != nil {
		fn(snap)
	}
}

// publish must be called with s.mu held.
func (s *Session) publish() {
	if err := s.channel.Publish(EncodeURL(s.state)); err != nil {
		s.logger.Warn("publish deck fragment", zap.Error(err))
	}
}

func (s *Session) mutate(op string, fn func(*State) error) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.state)
	RecordMutation(op, err)
	if err != nil {
		return s.state.Clone(), err
	}
	s.publish()
	return s.state.Clone(), nil
}

func (s *Session) AddCard(name string) (*State, error) {
	return s.mutate("add", func(st *State) error { return s.engine.AddCard(st, name) })
}

func (s *Session) RemoveCard(name string) *State {
	st, _ := s.mutate("remove", func(st *State) error {
		s.engine.RemoveCard(st, name)
		return nil
	})
	return st
}

func (s *Session) SetPrimaryFaction(f cards.Faction) (*State, error) {
	return s.mutate("primary", func(st *State) error { return s.engine.SetPrimaryFaction(st, f) })
}

func (s *Session) SetSecondaryFaction(f cards.Faction) (*State, error) {
	return s.mutate("secondary", func(st *State) error { return s.engine.SetSecondaryFaction(st, f) })
}

func (s *Session) SetFactions(primary, secondary cards.Faction) (*State, error) {
	return s.mutate("factions", func(st *State) error { return s.engine.SetFactions(st, primary, secondary) })
}

func (s *Session) SetDeckName(name string) *State {
	st, _ := s.mutate("name", func(st *State) error {
		s.engine.SetDeckName(st, name)
		return nil
	})
	return st
}

func (s *Session) Clear() *State {
	st, _ := s.mutate("clear", func(st *State) error {
		s.engine.Clear(st)
		return nil
	})
	return st
}

// State returns a snapshot of the deck.
func (s *Session) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Fragment returns the canonical encoding of the deck.
func (s *Session) Fragment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EncodeURL(s.state)
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.View(s.state)
}

// RecordMutation counts a mutation outcome by operation and rejection code.
func RecordMutation(op string, err error) {
	outcome := "ok"
	var le *LegalityError
	if errors.As(err, &le) {
		outcome = le.Code()
	} else if err != nil {
		outcome = "error"
	}
	metrics.DeckMutation(op, outcome)
}
