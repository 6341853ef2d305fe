package ws

import (
	"encoding/json"

	"memory-match-server/game"
)

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// SetupMsg starts a new game. CardCount 0 means the configured default.
type SetupMsg struct {
	Type        string `json:"type"`
	Players     int    `json:"players"`
	Player1Name string `json:"player1Name"`
	Player2Name string `json:"player2Name"`
	CardCount   int    `json:"cardCount"`
}

// SelectCardMsg reveals a card.
type SelectCardMsg struct {
	Type   string `json:"type"`
	CardID string `json:"cardId"`
}

// RestartMsg starts a new game with the last setup.
type RestartMsg struct {
	Type string `json:"type"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client message is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionMsg is the first message on every connection.
type SessionMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// StatusMsg reports the load status of the current setup.
type StatusMsg struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Loading bool   `json:"loading"`
}

// CardView is the client-facing representation of a card.
// Image urls are only included once the card is selected or matched.
type CardView struct {
	ID                string `json:"id"`
	State             string `json:"state"`
	MatchedBy         int    `json:"matchedBy,omitempty"`
	ImageURL          string `json:"imageUrl,omitempty"`
	GrayscaleImageURL string `json:"grayscaleImageUrl,omitempty"`
	Author            string `json:"author,omitempty"`
}

// DetailsView is the client-facing score and turn summary.
type DetailsView struct {
	Player1Name       string `json:"player1Name"`
	Player2Name       string `json:"player2Name"`
	Player1Score      int    `json:"player1Score"`
	Player2Score      int    `json:"player2Score"`
	CurrentPlayerName string `json:"currentPlayerName"`
	CurrentPlayer     int    `json:"currentPlayer"`
	TwoPlayers        bool   `json:"twoPlayers"`
	GameStatus        string `json:"gameStatus"`
	FinishedMessage   string `json:"finishedMessage,omitempty"`
}

// GameStateMsg carries everything the board needs to render. Details is null unless the game is ready.
type GameStateMsg struct {
	Type    string       `json:"type"`
	Cards   []CardView   `json:"cards"`
	Details *DetailsView `json:"details"`
}

// BuildCardViews constructs the client-facing card list in display order.
func BuildCardViews(cards []game.DisplayCard) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		cv := CardView{
			ID:        c.ID,
			State:     c.State.String(),
			MatchedBy: int(c.MatchedBy),
		}
		switch c.State {
		case game.CardSelected:
			cv.ImageURL = c.PrimaryImageRef
			cv.Author = c.Metadata["author"]
		case game.CardMatched:
			cv.ImageURL = c.PrimaryImageRef
			cv.GrayscaleImageURL = c.AltImageRef
			cv.Author = c.Metadata["author"]
		}
		views[i] = cv
	}
	return views
}

// BuildDetailsView converts game details; nil stays nil.
func BuildDetailsView(d *game.Details, current game.PlayerNum) *DetailsView {
	if d == nil {
		return nil
	}
	return &DetailsView{
		Player1Name:       d.Player1Name,
		Player2Name:       d.Player2Name,
		Player1Score:      d.Player1Score,
		Player2Score:      d.Player2Score,
		CurrentPlayerName: d.CurrentPlayerName,
		CurrentPlayer:     int(current),
		TwoPlayers:        d.TwoPlayers,
		GameStatus:        d.GameStatus.String(),
		FinishedMessage:   d.FinishedMessage,
	}
}
