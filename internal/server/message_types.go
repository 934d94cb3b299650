package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeJoinRoom       MessageType = "join_room"
	MessageTypeLeaveRoom      MessageType = "leave_room"
	MessageTypeSetReady       MessageType = "set_ready"
	MessageTypeStartGame      MessageType = "start_game"
	MessageTypeMakeBid        MessageType = "make_bid"
	MessageTypeCallBluff      MessageType = "call_bluff"
	MessageTypeRequestRestart MessageType = "request_restart"

	// Server to client messages
	MessageTypeError       MessageType = "error"
	MessageTypeRoomJoined  MessageType = "room_joined"
	MessageTypeRoomLeft    MessageType = "room_left"
	MessageTypeRoomUpdate  MessageType = "room_update"
	MessageTypeGameState   MessageType = "game_state"
	MessageTypeYourDice    MessageType = "your_dice"
	MessageTypeEvent       MessageType = "event"
	MessageTypeRoundStart  MessageType = "round_start"
	MessageTypeReveal      MessageType = "reveal"
	MessageTypeRoundResult MessageType = "round_result"
	MessageTypeGameOver    MessageType = "game_over"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
