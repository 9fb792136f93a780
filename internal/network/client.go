package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"magnate/internal/domain/ledger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Minimum spacing between player actions from one connection.
	actionCooldown = 250 * time.Millisecond
)

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type    string          `json:"type"`    // "START_RESEARCH", "CLAIM_OFFER", etc.
	Payload json.RawMessage `json:"payload"` // Action-specific data
}

// actionResult is echoed back to the issuing client only.
type actionResult struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection into the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.metrics.RecordWSError()
				c.hub.logger.Errorf("WebSocket read error: %v", err)
			}
			break
		}

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket. err: " + err.Error())
			continue
		}

		c.handlePlayerAction(action)
	}
}

// idPayload covers every action whose payload is a single target id.
type idPayload struct {
	ID string `json:"id"`
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	// Rate limiting check
	if time.Since(c.lastActionTime) < actionCooldown {
		c.hub.logger.Warn("Rate limit exceeded for client action " + action.Type)
		return
	}
	c.lastActionTime = time.Now()

	eng := c.hub.engine
	ok := false

	switch action.Type {
	case "START_RESEARCH":
		if p, err := parseID(action.Payload); err == nil {
			ok = eng.StartResearch(p)
		}
	case "CLAIM_OFFER":
		if p, err := parseID(action.Payload); err == nil {
			ok = eng.ClaimOffer(p)
		}
	case "ACCEPT_CONTRACT":
		if p, err := parseID(action.Payload); err == nil {
			ok = eng.AcceptContract(p)
		}
	case "UPGRADE_VENTURE":
		if p, err := parseID(action.Payload); err == nil {
			ok = eng.UpgradeVenture(p)
		}
	case "BUILD_STRUCTURE":
		if p, err := parseID(action.Payload); err == nil {
			ok = eng.BuildStructure(p)
		}
	case "BUY_UPGRADE":
		if p, err := parseID(action.Payload); err == nil {
			ok = eng.BuyPermanentUpgrade(p)
		}
	case "BUY_PERK":
		if p, err := parseID(action.Payload); err == nil {
			ok = eng.BuyPerk(p)
		}
	case "HIRE_WORKER":
		ok = c.handleHire(action.Payload)
	case "SET_AUTOMATION":
		ok = c.handleAutomation(action.Payload)
	case "PRESTIGE":
		ok = c.handlePrestige(action.Payload)
	case "ASCEND":
		ok = eng.DoAscension()
	case "PAUSE":
		eng.Pause()
		ok = true
	case "RESUME":
		eng.Resume()
		ok = true
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
		return
	}

	c.reply(action.Type, ok)
}

func parseID(raw json.RawMessage) (string, error) {
	var p idPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", err
	}
	return p.ID, nil
}

func (c *Client) handleHire(raw json.RawMessage) bool {
	var p struct {
		VentureID string `json:"venture_id"`
		Tier      int    `json:"tier"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		c.hub.logger.Warn("Failed to parse hire payload")
		return false
	}
	return c.hub.engine.HireWorker(p.VentureID, ledger.WorkerTier(p.Tier))
}

func (c *Client) handleAutomation(raw json.RawMessage) bool {
	var p struct {
		Feature string `json:"feature"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		c.hub.logger.Warn("Failed to parse automation payload")
		return false
	}
	return c.hub.engine.SetAutomation(p.Feature, p.Enabled)
}

func (c *Client) handlePrestige(raw json.RawMessage) bool {
	var p struct {
		Tier string `json:"tier"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		c.hub.logger.Warn("Failed to parse prestige payload")
		return false
	}
	var tier ledger.PrestigeTier
	switch p.Tier {
	case "BRONZE":
		tier = ledger.PrestigeBronze
	case "SILVER":
		tier = ledger.PrestigeSilver
	case "GOLD":
		tier = ledger.PrestigeGold
	default:
		return false
	}
	return c.hub.engine.DoPrestige(tier)
}

// reply echoes the outcome of an action back to this client only.
func (c *Client) reply(actionType string, ok bool) {
	payload, err := json.Marshal(wsFrame{Kind: "result", Payload: actionResult{Type: actionType, OK: ok}})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
