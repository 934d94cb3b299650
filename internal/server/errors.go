package server

import (
	"errors"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/game"
)

var (
	ErrNameRequired = errors.New("player name required")
	ErrNameTooLong  = errors.New("player name too long")
	ErrNotInRoom    = errors.New("not in a room")
)

var gameErrorCodes = map[game.GameError]string{
	game.ErrRoomNotFound:        "room_not_found",
	game.ErrRoomFull:            "room_full",
	game.ErrGameInProgress:      "game_in_progress",
	game.ErrNotCreator:          "not_creator",
	game.ErrInsufficientPlayers: "insufficient_players",
	game.ErrPlayersNotReady:     "players_not_ready",
	game.ErrNotYourTurn:         "not_your_turn",
	game.ErrInvalidBid:          "invalid_bid",
	game.ErrNotPlaying:          "not_playing",
	game.ErrNotInLobby:          "not_in_lobby",
	game.ErrNotFinished:         "not_finished",
	game.ErrNoBid:               "no_bid",
	game.ErrRoundResolving:      "round_resolving",
	game.ErrPlayerNotFound:      "not_in_room",
	game.ErrTooManyRooms:        "too_many_rooms",
}

// ErrorCode maps an action error to the stable code sent to clients.
func ErrorCode(err error) string {
	var gameErr game.GameError
	if errors.As(err, &gameErr) {
		if code, ok := gameErrorCodes[gameErr]; ok {
			return code
		}
	}

	switch {
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNameTooLong):
		return "invalid_name"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	default:
		return "internal_error"
	}
}
