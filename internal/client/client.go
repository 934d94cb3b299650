package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/server" // Reuse message types
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrSendBuffer   = errors.New("send buffer full")
)

// Client represents a WebSocket client for a Liar's Dice server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	playerID  string
	roomID    string
	closeOnce sync.Once

	// Event handlers, run in arrival order on the dispatch goroutine
	eventHandlers map[server.MessageType][]EventHandler
	waiters       []*Expectation
}

// EventHandler is a function that handles incoming events. Handlers must not
// block; they run one at a time in message order.
type EventHandler func(*server.Message)

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL:     serverURL,
		send:          make(chan *server.Message, 256),
		receive:       make(chan *server.Message, 256),
		logger:        logger.WithPrefix("client"),
		ctx:           ctx,
		cancel:        cancel,
		eventHandlers: make(map[server.MessageType][]EventHandler),
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	// Add WebSocket path
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close() // Ignore close errors during shutdown
			c.connected = false
		}

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// Done is closed once the client has disconnected.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(msg *server.Message) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return ErrSendBuffer
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.cancel()
	}()

	for {
		var msg server.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// eventProcessor processes incoming messages and dispatches to handlers
func (c *Client) eventProcessor() {
	for {
		select {
		case msg := <-c.receive:
			c.handleMessage(msg)
		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage tracks membership, wakes waiters, then runs handlers.
func (c *Client) handleMessage(msg *server.Message) {
	c.track(msg)

	c.mu.Lock()
	handlers := c.eventHandlers[msg.Type]
	remaining := c.waiters[:0]
	var woken []*Expectation
	for _, w := range c.waiters {
		if w.messageType == msg.Type {
			woken = append(woken, w)
			continue
		}
		remaining = append(remaining, w)
	}
	c.waiters = remaining
	c.mu.Unlock()

	for _, w := range woken {
		w.ch <- msg
	}

	if len(handlers) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
		return
	}
	for _, handler := range handlers {
		handler(msg)
	}
}

func (c *Client) track(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeRoomJoined:
		var data server.RoomJoinedData
		if err := msg.Decode(&data); err == nil {
			c.mu.Lock()
			c.roomID = data.RoomID
			c.playerID = data.PlayerID
			c.mu.Unlock()
		}
	case server.MessageTypeRoomLeft:
		c.mu.Lock()
		c.roomID = ""
		c.mu.Unlock()
	}
}

// AddEventHandler adds an event handler for a specific message type
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handler)
}

// Expectation is a one-shot wait for a message type, registered before the
// action that triggers it so the reply cannot slip past.
type Expectation struct {
	client      *Client
	messageType server.MessageType
	ch          chan *server.Message
}

// Expect registers interest in the next message of messageType.
func (c *Client) Expect(messageType server.MessageType) *Expectation {
	e := &Expectation{client: c, messageType: messageType, ch: make(chan *server.Message, 1)}
	c.mu.Lock()
	c.waiters = append(c.waiters, e)
	c.mu.Unlock()
	return e
}

// Wait blocks until the expected message arrives or timeout elapses.
func (e *Expectation) Wait(timeout time.Duration) (*server.Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-e.ch:
		return msg, nil
	case <-timer.C:
		e.client.drop(e)
		return nil, fmt.Errorf("timeout waiting for %s", e.messageType)
	case <-e.client.ctx.Done():
		return nil, e.client.ctx.Err()
	}
}

func (c *Client) drop(e *Expectation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == e {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// WaitForMessage waits for the next message of a type with timeout
func (c *Client) WaitForMessage(messageType server.MessageType, timeout time.Duration) (*server.Message, error) {
	return c.Expect(messageType).Wait(timeout)
}

func (c *Client) sendAction(mt server.MessageType, data any) error {
	msg, err := server.NewMessage(mt, data)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// CreateRoom asks the server for a fresh room.
func (c *Client) CreateRoom(name string, opts *server.RoomOptions) error {
	return c.sendAction(server.MessageTypeJoinRoom, server.JoinRoomData{Name: name, Options: opts})
}

// JoinRoom joins an existing room by code.
func (c *Client) JoinRoom(code, name string) error {
	return c.sendAction(server.MessageTypeJoinRoom, server.JoinRoomData{RoomID: code, Name: name})
}

// LeaveRoom leaves the current room
func (c *Client) LeaveRoom() error {
	return c.sendAction(server.MessageTypeLeaveRoom, struct{}{})
}

// SetReady toggles the lobby ready flag.
func (c *Client) SetReady(ready bool) error {
	return c.sendAction(server.MessageTypeSetReady, server.SetReadyData{Ready: ready})
}

// StartGame asks the server to start; creator only.
func (c *Client) StartGame() error {
	return c.sendAction(server.MessageTypeStartGame, struct{}{})
}

// MakeBid raises the standing bid.
func (c *Client) MakeBid(quantity, faceValue int) error {
	return c.sendAction(server.MessageTypeMakeBid, server.MakeBidData{Quantity: quantity, FaceValue: faceValue})
}

// CallBluff challenges the standing bid.
func (c *Client) CallBluff() error {
	return c.sendAction(server.MessageTypeCallBluff, struct{}{})
}

// RequestRestart returns a finished room to the lobby.
func (c *Client) RequestRestart() error {
	return c.sendAction(server.MessageTypeRequestRestart, struct{}{})
}

// PlayerID returns the ID the server assigned on the last join.
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// RoomID returns the current room code, empty outside a room.
func (c *Client) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}
