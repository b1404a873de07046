package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matemat13/ha-s-charge/internal/wire"
)

func (c *Controller) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.log.Printf("WARNING: websocket upgrade failed: %v", err)
		return
	}

	c.mu.Lock()
	if c.ws != nil {
		c.mu.Unlock()
		c.log.Printf("WARNING: rejecting connection from %s, one is already active", r.RemoteAddr)
		conn.Close()
		return
	}
	c.ws = conn
	c.mu.Unlock()

	c.connectOnce.Do(func() { close(c.connected) })
	c.log.Printf("SUCCESS: charger %s connected from %s", c.serial, r.RemoteAddr)

	c.readLoop(conn)
}

func (c *Controller) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.ws == conn {
			c.ws = nil
		}
		c.mu.Unlock()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.log.Printf("WARNING: websocket read error, session ending: %v", err)
			return
		}

		decoded, err := wire.Decode(raw)
		if err != nil {
			c.log.Printf("WARNING: dropping malformed frame: %v", err)
			continue
		}
		if decoded.Ack != nil {
			c.pending.Resolve(decoded.Ack.UniqueID, decoded.Ack.Result)
			continue
		}
		if decoded.Msg == nil {
			continue
		}
		if decoded.Msg.ChargeBoxSN != "" && decoded.Msg.ChargeBoxSN != c.serial {
			c.log.Printf("WARNING: dropping %s for unexpected serial %s", decoded.Msg.Action, decoded.Msg.ChargeBoxSN)
			continue
		}

		go c.sendAck(decoded.Msg.ChargeBoxSN, decoded.Msg.UniqueID)
		if c.OnMessage != nil {
			c.OnMessage(decoded.Msg)
		}
	}
}

func (c *Controller) sendAck(serial, uniqueID string) {
	raw, err := wire.Ack{ChargeBoxSN: serial, UniqueID: uniqueID}.Encode()
	if err != nil {
		c.log.Printf("ERROR: encode ack: %v", err)
		return
	}
	if err := c.send(raw); err != nil {
		c.log.Printf("WARNING: send ack failed: %v", err)
	}
}

// send writes one text frame on the live connection. gorilla/websocket
// requires a single writer at a time, so every send shares this mutex with
// the connection's own assignment in handleUpgrade/readLoop.
func (c *Controller) send(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return fmt.Errorf("session: no active connection")
	}
	return c.ws.WriteMessage(websocket.TextMessage, []byte(raw))
}

func (c *Controller) handshakeLoop(ctx context.Context) {
	ticker := time.NewTicker(handshakePeriod)
	defer ticker.Stop()
	for {
		msg := wire.HandShake{
			CurrentTimeUnix: time.Now(),
			UserID:          1,
			ChargeBoxSN:     c.serial,
			ConnectionKey:   c.serial,
		}
		raw, err := msg.Encode()
		if err != nil {
			c.log.Printf("ERROR: encode handshake: %v", err)
		} else if err := c.send(raw); err != nil {
			c.log.Printf("WARNING: handshake send failed, session ending: %v", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
