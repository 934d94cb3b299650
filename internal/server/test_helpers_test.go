package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/randutil"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/roomcode"
)

const testPause = 4 * time.Second

var errRecipientGone = errors.New("recipient gone")

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// recordingNotifier captures every message per connection. Connections in
// fail reject delivery.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs map[string][]*Message
	fail map[string]bool
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		msgs: make(map[string][]*Message),
		fail: make(map[string]bool),
	}
}

func (n *recordingNotifier) SendToConnection(connID string, msg *Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[connID] {
		return errRecipientGone
	}
	n.msgs[connID] = append(n.msgs[connID], msg)
	return nil
}

func (n *recordingNotifier) failFor(connID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fail[connID] = true
}

func (n *recordingNotifier) all(connID string) []*Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*Message(nil), n.msgs[connID]...)
}

func (n *recordingNotifier) ofType(connID string, mt MessageType) []*Message {
	var out []*Message
	for _, m := range n.all(connID) {
		if m.Type == mt {
			out = append(out, m)
		}
	}
	return out
}

// last decodes the most recent message of type mt sent to connID.
func (n *recordingNotifier) last(t *testing.T, connID string, mt MessageType, v any) {
	t.Helper()
	msgs := n.ofType(connID, mt)
	require.NotEmpty(t, msgs, "no %s message for %s", mt, connID)
	require.NoError(t, msgs[len(msgs)-1].Decode(v))
}

// scriptedRoller hands out queued hands in order, then all-ones hands. The
// pause callback rolls on the clock's goroutine, hence the mutex.
type scriptedRoller struct {
	mu    sync.Mutex
	hands [][]int
}

func (s *scriptedRoller) Roll(count int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
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
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hands = append(s.hands, hands...)
}

type testService struct {
	gs       *GameService
	notifier *recordingNotifier
	clock    *quartz.Mock
	roller   *scriptedRoller
}

func newTestService(t *testing.T, maxRooms int) *testService {
	t.Helper()
	logger := testLogger()
	roller := &scriptedRoller{}
	codes := roomcode.NewGenerator(randutil.NewLocked(randutil.New(7)), roomcode.DefaultLength)
	registry := NewRegistry(codes, roller, maxRooms, logger)
	notifier := newRecordingNotifier()
	clock := quartz.NewMock(t)
	return &testService{
		gs:       NewGameService(notifier, registry, clock, testPause, logger),
		notifier: notifier,
		clock:    clock,
		roller:   roller,
	}
}

// seat creates a room for the first name and joins the rest, returning the
// room code. Connection IDs are c1, c2, ...
func (ts *testService) seat(t *testing.T, names ...string) string {
	t.Helper()
	require.NoError(t, ts.gs.Join("c1", JoinRoomData{Name: names[0]}))
	var joined RoomJoinedData
	ts.notifier.last(t, "c1", MessageTypeRoomJoined, &joined)

	for i, name := range names[1:] {
		require.NoError(t, ts.gs.Join(connName(i+2), JoinRoomData{RoomID: joined.RoomID, Name: name}))
	}
	return joined.RoomID
}

// start seats, readies and starts a game.
func (ts *testService) start(t *testing.T, names ...string) string {
	t.Helper()
	code := ts.seat(t, names...)
	for i := range names {
		require.NoError(t, ts.gs.SetReady(connName(i+1), true))
	}
	require.NoError(t, ts.gs.StartGame("c1"))
	return code
}

func (ts *testService) advancePause(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts.clock.Advance(testPause).MustWait(ctx)
}

func connName(i int) string {
	return "c" + string(rune('0'+i))
}
