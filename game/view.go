package game

import "fmt"

// CardState is the visual state of a card.
type CardState int

const (
	CardUnselectedAndUnmatched CardState = iota
	CardSelected
	CardMatched
)

// String returns the protocol string for a CardState.
func (cs CardState) String() string {
	switch cs {
	case CardUnselectedAndUnmatched:
		return "unselectedAndUnmatched"
	case CardSelected:
		return "selected"
	case CardMatched:
		return "matched"
	default:
		return "unknown"
	}
}

// GameStatus tells whether any matchable pair is left.
type GameStatus int

const (
	InProgress GameStatus = iota
	Finished
)

// String returns the protocol string for a GameStatus.
func (gs GameStatus) String() string {
	switch gs {
	case InProgress:
		return "inProgress"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// DisplayCard is a Card with its derived state. It is recomputed for every snapshot, never stored.
type DisplayCard struct {
	Card
	State     CardState
	MatchedBy PlayerNum
}

// Details summarises scores and turn for the player panels.
type Details struct {
	Players           int
	Player1Name       string
	Player2Name       string
	Player1Score      int
	Player2Score      int
	CurrentPlayerName string
	TwoPlayers        bool
	GameStatus        GameStatus
	FinishedMessage   string
}

// ToDisplayCard derives the display card for cardID. A card selected in this turn shows as
// selected even if it is also recorded as matched.
func ToDisplayCard(s *State, cardID string) DisplayCard {
	matchedBy := s.MatchedBy(cardID)
	return DisplayCard{
		Card:      s.Cards[cardID],
		State:     cardState(s.IsSelected(cardID), matchedBy),
		MatchedBy: matchedBy,
	}
}

func cardState(selected bool, matchedBy PlayerNum) CardState {
	if selected {
		return CardSelected
	}
	if matchedBy != NoPlayer {
		return CardMatched
	}
	return CardUnselectedAndUnmatched
}

// ToDisplayCards maps the deck order through ToDisplayCard.
func ToDisplayCards(s *State) []DisplayCard {
	cards := make([]DisplayCard, 0, len(s.Order))
	for _, id := range s.Order {
		cards = append(cards, ToDisplayCard(s, id))
	}
	return cards
}

// ToDetails derives the score and turn summary for s.
func ToDetails(s *State) Details {
	d := Details{
		Players:      s.Players,
		Player1Name:  s.Player1Name,
		Player2Name:  s.Player2Name,
		Player1Score: len(s.Player1Matches) / 2,
		Player2Score: len(s.Player2Matches) / 2,
		TwoPlayers:   s.Players == 2,
		GameStatus:   InProgress,
	}
	d.CurrentPlayerName = d.Player1Name
	if s.CurrentPlayer == Player2 {
		d.CurrentPlayerName = d.Player2Name
	}
	if s.Finished() {
		d.GameStatus = Finished
		d.FinishedMessage = finishedMessage(d)
	}
	return d
}

func finishedMessage(d Details) string {
	switch {
	case d.Player1Score > d.Player2Score && !d.TwoPlayers:
		return fmt.Sprintf("Well done %s, you found all %d pairs!", d.Player1Name, d.Player1Score)
	case d.Player1Score > d.Player2Score:
		return fmt.Sprintf("%s wins %d to %d!", d.Player1Name, d.Player1Score, d.Player2Score)
	case d.Player2Score > d.Player1Score:
		return fmt.Sprintf("%s wins %d to %d!", d.Player2Name, d.Player2Score, d.Player1Score)
	default:
		return fmt.Sprintf("It's a draw, %d each!", d.Player1Score)
	}
}
