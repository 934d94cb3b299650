// Package game implements the Liar's Dice room state machine.
//
// The main type is Room, which holds the seating order, the lobby/playing/
// finished status, the turn pointer, the standing bid and an event log.
//
// # Basic Usage
//
//	roller := dice.New(randutil.NewLocked(randutil.New(42)))
//	room := game.NewRoom("K7QX2", roller, game.DefaultOptions())
//	room.AddPlayer("conn-a", "Alice")
//	room.AddPlayer("conn-b", "Bob")
//	room.SetReady("conn-a", true)
//	room.SetReady("conn-b", true)
//	start, _ := room.StartGame("conn-a")
//	room.MakeBid("conn-a", 2, 3)
//	challenge, _ := room.CallBluff("conn-b")
//	// ...pause so players can read the reveal...
//	next := room.ResolveChallenge(challenge)
//
// # Turn Discipline
//
// Turns rotate over the fixed seat order and skip players with no dice. A
// bid must dominate the one it replaces: a higher quantity, or the same
// quantity with a higher face. Only the player holding the turn may bid or
// call a bluff, and nothing may act while a challenge is resolving.
//
// Room performs no I/O and no locking. Callers serialise access per room and
// turn the returned results (RoundStart, BidPlaced, Challenge, Continuation,
// RemoveResult) into messages.
package game
