package game

// GameError is a sentinel error returned by room operations. Every GameError
// is recoverable: the room is left untouched when one is returned.
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

const (
	ErrRoomNotFound        GameError = "room not found"
	ErrRoomFull            GameError = "room is full"
	ErrGameInProgress      GameError = "game already in progress"
	ErrNotCreator          GameError = "only the room creator can start the game"
	ErrInsufficientPlayers GameError = "at least two players are required"
	ErrPlayersNotReady     GameError = "not all players are ready"
	ErrNotYourTurn         GameError = "not your turn"
	ErrInvalidBid          GameError = "bid must raise the quantity, or keep it and raise the face"
	ErrNotPlaying          GameError = "game is not in progress"
	ErrNotInLobby          GameError = "room is not in the lobby"
	ErrNotFinished         GameError = "game has not finished"
	ErrNoBid               GameError = "there is no bid to challenge"
	ErrRoundResolving      GameError = "round is being resolved"
	ErrPlayerNotFound      GameError = "player not in room"
	ErrTooManyRooms        GameError = "server room limit reached"
)
