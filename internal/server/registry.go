package server

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/dice"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/game"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/roomcode"
)

// roomEntry owns one room. Its mutex serialises every action on the room,
// including the post-challenge continuation.
type roomEntry struct {
	mu     sync.Mutex
	room   *game.Room
	closed bool

	// pause is the pending post-challenge continuation. generation is bumped
	// whenever it is cancelled so a callback that already fired but has not
	// acquired mu yet can tell it is stale.
	pause      *quartz.Timer
	generation uint64
}

// cancelPause stops any pending continuation. Callers hold e.mu.
func (e *roomEntry) cancelPause() {
	if e.pause != nil {
		e.pause.Stop()
		e.pause = nil
	}
	e.generation++
}

// Registry is the process-wide table of live rooms plus a connection index.
// Lock order is Registry.mu before roomEntry.mu.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*roomEntry // room code -> entry
	byConn   map[string]string     // connection ID -> room code
	codes    *roomcode.Generator
	roller   dice.Roller
	maxRooms int
	logger   *log.Logger
}

// NewRegistry creates an empty registry. maxRooms of 0 means unlimited.
func NewRegistry(codes *roomcode.Generator, roller dice.Roller, maxRooms int, logger *log.Logger) *Registry {
	return &Registry{
		rooms:    make(map[string]*roomEntry),
		byConn:   make(map[string]string),
		codes:    codes,
		roller:   roller,
		maxRooms: maxRooms,
		logger:   logger.WithPrefix("registry"),
	}
}

// CreateOrJoin seats connID in the target room, or in a fresh room when
// target is empty. The caller removes any prior membership first. fn runs
// with the room locked so the caller can broadcast in order.
func (reg *Registry) CreateOrJoin(target, connID, name string, opts game.Options, fn func(e *roomEntry, p *game.Player)) error {
	reg.mu.Lock()

	var entry *roomEntry
	if target == "" {
		if reg.maxRooms > 0 && len(reg.rooms) >= reg.maxRooms {
			reg.mu.Unlock()
			return game.ErrTooManyRooms
		}
		code := reg.uniqueCode()
		entry = &roomEntry{room: game.NewRoom(code, reg.roller, opts)}
		reg.rooms[code] = entry
		reg.logger.Info("Created room", "room", code, "creator", name)
	} else {
		code := roomcode.Normalize(target)
		if roomcode.Validate(code) != nil {
			reg.mu.Unlock()
			return game.ErrRoomNotFound
		}
		var ok bool
		entry, ok = reg.rooms[code]
		if !ok {
			reg.mu.Unlock()
			return game.ErrRoomNotFound
		}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	p, err := entry.room.AddPlayer(connID, name)
	if err != nil {
		if len(entry.room.Players) == 0 {
			delete(reg.rooms, entry.room.ID)
			entry.closed = true
		}
		reg.mu.Unlock()
		return err
	}
	reg.byConn[connID] = entry.room.ID
	reg.mu.Unlock()

	fn(entry, p)
	return nil
}

// Resolve returns the entry holding connID, or nil.
func (reg *Registry) Resolve(connID string) *roomEntry {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	code, ok := reg.byConn[connID]
	if !ok {
		return nil
	}
	return reg.rooms[code]
}

// RoomCode returns the code of the room holding connID, or "".
func (reg *Registry) RoomCode(connID string) string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.byConn[connID]
}

// Lookup returns the entry for a room code, or nil.
func (reg *Registry) Lookup(code string) *roomEntry {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[roomcode.Normalize(code)]
}

// RemovePlayer removes connID from whatever room holds it. An emptied room is
// deleted and its pending continuation cancelled. fn runs with the room
// locked; it is not called when connID is in no room.
func (reg *Registry) RemovePlayer(connID string, fn func(e *roomEntry, res game.RemoveResult)) bool {
	reg.mu.Lock()

	code, ok := reg.byConn[connID]
	if !ok {
		reg.mu.Unlock()
		return false
	}
	delete(reg.byConn, connID)

	entry, ok := reg.rooms[code]
	if !ok {
		reg.mu.Unlock()
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	res := entry.room.RemovePlayer(connID)
	if res.Empty {
		delete(reg.rooms, code)
		entry.closed = true
		entry.cancelPause()
		reg.logger.Info("Deleted empty room", "room", code)
	}
	reg.mu.Unlock()

	fn(entry, res)
	return true
}

// Rooms summarises live rooms ordered by code.
func (reg *Registry) Rooms() []RoomInfo {
	reg.mu.RLock()
	entries := make([]*roomEntry, 0, len(reg.rooms))
	for _, e := range reg.rooms {
		entries = append(entries, e)
	}
	reg.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			infos = append(infos, RoomInfo{
				ID:          e.room.ID,
				Status:      e.room.Status.String(),
				PlayerCount: len(e.room.Players),
				MaxPlayers:  e.room.Options.MaxPlayers,
			})
		}
		e.mu.Unlock()
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// uniqueCode draws codes until one is free. Callers hold reg.mu.
func (reg *Registry) uniqueCode() string {
	for {
		code := reg.codes.Generate()
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}
