package game

import (
	"memory-match-server/matcherrors"
)

// PlayerNum identifies a seat. The zero value means "nobody".
type PlayerNum int

const (
	NoPlayer PlayerNum = 0
	Player1  PlayerNum = 1
	Player2  PlayerNum = 2
)

// Params describes a game to set up.
type Params struct {
	Players     int    `json:"players"`
	Player1Name string `json:"player1Name"`
	Player2Name string `json:"player2Name,omitempty"`
	CardCount   int    `json:"cardCount"`
}

// Validate rejects parameters the engine cannot play.
func (p Params) Validate() error {
	if p.Players != 1 && p.Players != 2 {
		return matcherrors.ErrInvalidPlayers
	}
	if p.CardCount < 1 {
		return matcherrors.ErrInvalidCardCount
	}
	return nil
}

// ImageCount is the number of distinct images requested for CardCount cards (half, rounded up).
func (p Params) ImageCount() int {
	return (p.CardCount + 1) / 2
}

// Selection is one entry of the selected list; insertion order is kept.
type Selection struct {
	CardID  string
	PairKey string
}

// State is an immutable snapshot of a game. The engine publishes a fresh
// snapshot for every transition and never mutates one after publishing it.
type State struct {
	Params
	Deck

	Disabled       bool
	CurrentPlayer  PlayerNum
	Selected       []Selection
	Player1Matches map[string]struct{}
	Player2Matches map[string]struct{}
}

// NewState returns the opening snapshot for a freshly built deck.
func NewState(p Params, d Deck) *State {
	return &State{
		Params:         p,
		Deck:           d,
		Disabled:       false,
		CurrentPlayer:  Player1,
		Selected:       nil,
		Player1Matches: make(map[string]struct{}),
		Player2Matches: make(map[string]struct{}),
	}
}

// clone copies the mutable parts of s. Cards and Order are shared since nothing writes to them.
func (s *State) clone() *State {
	next := *s
	next.Selected = append([]Selection(nil), s.Selected...)
	next.Player1Matches = copySet(s.Player1Matches)
	next.Player2Matches = copySet(s.Player2Matches)
	return &next
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

// IsSelected reports whether cardID is in the selected list.
func (s *State) IsSelected(cardID string) bool {
	for _, sel := range s.Selected {
		if sel.CardID == cardID {
			return true
		}
	}
	return false
}

// MatchedBy returns the player who matched cardID, or NoPlayer.
func (s *State) MatchedBy(cardID string) PlayerNum {
	if _, ok := s.Player1Matches[cardID]; ok {
		return Player1
	}
	if _, ok := s.Player2Matches[cardID]; ok {
		return Player2
	}
	return NoPlayer
}

// TotalMatched counts matched card ids across both players.
func (s *State) TotalMatched() int {
	return len(s.Player1Matches) + len(s.Player2Matches)
}

// Finished reports whether every matchable pair has been found. The orphan's pair can never
// be completed, so the game ends two cards short of the full deck.
func (s *State) Finished() bool {
	return s.TotalMatched() == len(s.Cards)-2
}

func (s *State) addMatch(p PlayerNum, ids ...string) {
	set := s.Player1Matches
	if p == Player2 {
		set = s.Player2Matches
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

// SwapPlayer returns whose turn comes after current. A single player always keeps the turn.
func SwapPlayer(current PlayerNum, players int) PlayerNum {
	if players == 1 {
		return Player1
	}
	if current == Player2 {
		return Player1
	}
	return Player2
}
