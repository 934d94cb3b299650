package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRoller hands out queued hands in order, then all-ones hands.
type scriptedRoller struct {
	hands [][]int
}

func (s *scriptedRoller) Roll(count int) []int {
	if len(s.hands) > 0 {
		h := s.hands[0]
		s.hands = s.hands[1:]
		return h
	}
	out := make([]int, count)
	for i := range out {
		out[i] = 1
	}
	return out
}

func (s *scriptedRoller) queue(hands ...[]int) {
	s.hands = append(s.hands, hands...)
}

// newTestRoom seats players p0..pN-1 named after letters A, B, C...
func newTestRoom(t *testing.T, n int, roller *scriptedRoller) *Room {
	t.Helper()
	r := NewRoom("TEST1", roller, DefaultOptions())
	for i := 0; i < n; i++ {
		_, err := r.AddPlayer(pid(i), string(rune('A'+i)))
		require.NoError(t, err)
	}
	return r
}

// startedRoom returns a room of n ready players that has dealt round one.
func startedRoom(t *testing.T, n int, roller *scriptedRoller) *Room {
	t.Helper()
	r := newTestRoom(t, n, roller)
	for i := 0; i < n; i++ {
		require.NoError(t, r.SetReady(pid(i), true))
	}
	_, err := r.StartGame(pid(0))
	require.NoError(t, err)
	return r
}

func pid(i int) string {
	return fmt.Sprintf("p%d", i)
}

func requireTurnOnSurvivor(t *testing.T, r *Room) {
	t.Helper()
	if r.Status != StatusPlaying {
		return
	}
	require.GreaterOrEqual(t, r.CurrentTurn, 0)
	require.Less(t, r.CurrentTurn, len(r.Players))
	require.False(t, r.Players[r.CurrentTurn].Eliminated(), "turn on eliminated player %s", r.Players[r.CurrentTurn].Name)
}
