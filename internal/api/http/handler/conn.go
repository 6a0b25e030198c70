package handler

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/wall"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 32
)

var _ wall.View = (*wallConn)(nil)

// wallConn is the page side of a wall: View calls become websocket messages.
// A single writer goroutine owns all writes to the socket.
type wallConn struct {
	ws     *websocket.Conn
	send   chan serverMessage
	done   chan struct{}
	once   sync.Once
	logger *logger.Logger
}

func newWallConn(ws *websocket.Conn, logger *logger.Logger) *wallConn {
	return &wallConn{
		ws:     ws,
		send:   make(chan serverMessage, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *wallConn) SetUserLabel(label string) {
	c.push(serverMessage{Type: msgLabel, Text: label})
}

func (c *wallConn) SetControls(federated, signOut bool) {
	c.push(serverMessage{Type: msgControls, Federated: federated, SignOut: signOut})
}

func (c *wallConn) RenderWall(markup string) {
	c.push(serverMessage{Type: msgWall, HTML: markup})
}

func (c *wallConn) ResetForm() {
	c.push(serverMessage{Type: msgReset})
}

func (c *wallConn) Alert(message string) {
	c.push(serverMessage{Type: msgAlert, Message: message})
}

func (c *wallConn) Redirect(url string) {
	c.push(serverMessage{Type: msgRedirect, URL: url})
}

func (c *wallConn) StoreToken(token string) {
	c.push(serverMessage{Type: msgToken, Value: token})
}

func (c *wallConn) push(msg serverMessage) {
	select {
	case c.send <- msg:
	case <-c.done:
	}
}

func (c *wallConn) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *wallConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.Debug("Wall connection: write failed", "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.flush()
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever was queued before the connection was closed.
func (c *wallConn) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.ws.WriteJSON(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

// readLoop forwards decoded client messages until the socket fails. It closes incoming on exit.
func (c *wallConn) readLoop(incoming chan<- clientMessage) {
	defer close(incoming)

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("Wall connection: read failed", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("Wall connection: malformed message", "error", err)
			continue
		}

		select {
		case incoming <- msg:
		case <-c.done:
			return
		}
	}
}
