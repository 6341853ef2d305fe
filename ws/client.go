package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"memory-match-server/game"
	"memory-match-server/matcherrors"
	"memory-match-server/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	defaultPlayer1Name = "P1"
	defaultPlayer2Name = "P2"
)

// Client is a middleman between the websocket connection and its engine.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string
	Engine    *game.Engine

	unsubscribe []func()
}

// attach forwards status and board changes to the connection.
func (c *Client) attach() {
	c.unsubscribe = append(c.unsubscribe,
		c.Engine.Status().Subscribe(func(st game.Status) {
			c.sendJSON(StatusMsg{Type: "status", Status: st.String(), Loading: st.Loading()})
		}),
		// Details is published last for every transition, so the cards read here are current.
		c.Engine.Details().Subscribe(func(d *game.Details) {
			current := game.NoPlayer
			if s := c.Engine.State().Value(); s != nil {
				current = s.CurrentPlayer
			}
			c.sendJSON(GameStateMsg{
				Type:    "game_state",
				Cards:   BuildCardViews(c.Engine.DisplayCards().Value()),
				Details: BuildDetailsView(d, current),
			})
		}),
	)
}

func (c *Client) detach() {
	for _, fn := range c.unsubscribe {
		fn()
	}
	c.unsubscribe = nil
}

// ReadPump pumps messages from the websocket connection to the engine.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "tag", "client", "session", c.SessionID, "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "setup":
		c.handleSetup(envelope.Raw)
	case "select_card":
		c.handleSelectCard(envelope.Raw)
	case "restart":
		c.handleRestart(envelope.Raw)
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleSetup(raw json.RawMessage) {
	var msg SetupMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid setup message.")
		return
	}

	params, err := c.setupParams(msg)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if err := c.Engine.Setup(params); err != nil {
		c.sendError(err.Error())
	}
}

// setupParams fills in defaults and checks the names; the engine validates the rest.
func (c *Client) setupParams(msg SetupMsg) (game.Params, error) {
	p := game.Params{
		Players:     msg.Players,
		Player1Name: msg.Player1Name,
		Player2Name: msg.Player2Name,
		CardCount:   msg.CardCount,
	}
	if p.Player1Name == "" {
		p.Player1Name = defaultPlayer1Name
	}
	if p.Players == 2 && p.Player2Name == "" {
		p.Player2Name = defaultPlayer2Name
	}
	if p.CardCount == 0 {
		p.CardCount = c.Hub.Config.DefaultCardCount
	}

	limit := c.Hub.Config.MaxNameLength
	if len([]rune(p.Player1Name)) > limit || len([]rune(p.Player2Name)) > limit {
		return p, fmt.Errorf("%w: at most %d characters", matcherrors.ErrNameTooLong, limit)
	}
	return p, nil
}

func (c *Client) handleSelectCard(raw json.RawMessage) {
	var msg SelectCardMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid select_card message.")
		return
	}
	if c.Engine.State().Value() == nil {
		c.sendError(matcherrors.ErrNoGame.Error())
		return
	}
	if err := c.Engine.SelectCard(msg.CardID); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleRestart(raw json.RawMessage) {
	var msg RestartMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid restart message.")
		return
	}
	if err := c.Engine.Restart(); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) sendError(message string) {
	c.sendJSON(ErrorMsg{Type: "error", Message: message})
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal outbound message", "tag", "client", "session", c.SessionID, "err", err)
		return
	}
	wsutil.SafeSend(c.Send, data)
}
