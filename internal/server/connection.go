package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client. Its ID doubles
// as the player ID inside whichever room it joins.
type Connection struct {
	id          string
	conn        *websocket.Conn
	send        chan *Message
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(id string, conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:          id,
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn").With("conn", id),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// ID returns the connection identifier.
func (c *Connection) ID() string {
	return c.id
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches one inbound message. Malformed or unknown
// messages are answered with an error and otherwise ignored.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	switch msg.Type {
	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.reply(c.gameService.Join(c.id, data))

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom()

	case MessageTypeSetReady:
		var data SetReadyData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse ready data")
			return
		}
		c.reply(c.gameService.SetReady(c.id, data.Ready))

	case MessageTypeStartGame:
		c.reply(c.gameService.StartGame(c.id))

	case MessageTypeMakeBid:
		var data MakeBidData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_bid", "Bid must carry integer quantity and faceValue")
			return
		}
		c.reply(c.gameService.MakeBid(c.id, data.Quantity, data.FaceValue))

	case MessageTypeCallBluff:
		c.reply(c.gameService.CallBluff(c.id))

	case MessageTypeRequestRestart:
		c.reply(c.gameService.RequestRestart(c.id))

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleLeaveRoom() {
	code := c.gameService.Registry().RoomCode(c.id)
	if code == "" || !c.gameService.Leave(c.id) {
		c.sendError(ErrorCode(ErrNotInRoom), ErrNotInRoom.Error())
		return
	}

	response, err := NewMessage(MessageTypeRoomLeft, RoomLeftData{RoomID: code})
	if err != nil {
		c.logger.Error("Failed to create message", "error", err)
		return
	}
	_ = c.SendMessage(response) // Ignore send errors
}

// reply reports a rejected action to this connection only.
func (c *Connection) reply(err error) {
	if err == nil {
		return
	}
	c.logger.Debug("Action rejected", "error", err)
	c.sendError(ErrorCode(err), err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}
