package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/client"
	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/server"
)

// Actions is the outbound half of the client the TUI drives.
type Actions interface {
	CreateRoom(name string, opts *server.RoomOptions) error
	JoinRoom(code, name string) error
	LeaveRoom() error
	SetReady(ready bool) error
	StartGame() error
	MakeBid(quantity, faceValue int) error
	CallBluff() error
	RequestRestart() error
}

// ServerMsg wraps a server message for the Bubble Tea loop.
type ServerMsg struct {
	Message *server.Message
}

// DisconnectedMsg is sent when the connection drops.
type DisconnectedMsg struct{}

// Model is the Bubble Tea model for a Liar's Dice table.
type Model struct {
	actions Actions
	logger  *log.Logger
	name    string
	options *server.RoomOptions

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model
	focusedPane int // 0 = log, 1 = input

	// Display state, rebuilt from server messages
	gameLog  []string
	roomID   string
	playerID string
	status   string
	members  []server.MemberState
	state    *server.GameStateData
	hand     []int
	round    int

	// Dimensions
	width       int
	height      int
	initialized bool
	quitting    bool
}

// NewModel creates a model that joins code on start, or creates a room when
// code is empty.
func NewModel(actions Actions, name, code string, opts *server.RoomOptions, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "create, join CODE, ready, start, bid 3 5, call..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 64
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		actions:     actions,
		logger:      logger.WithPrefix("tui"),
		name:        name,
		options:     opts,
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
		gameLog:     []string{},
		roomID:      code,
	}
	return m
}

// Forward relays every server message from c into the program.
func Forward(c *client.Client, send func(tea.Msg)) {
	for _, mt := range []server.MessageType{
		server.MessageTypeError,
		server.MessageTypeRoomJoined,
		server.MessageTypeRoomLeft,
		server.MessageTypeRoomUpdate,
		server.MessageTypeGameState,
		server.MessageTypeYourDice,
		server.MessageTypeEvent,
		server.MessageTypeRoundStart,
		server.MessageTypeReveal,
		server.MessageTypeRoundResult,
		server.MessageTypeGameOver,
	} {
		c.AddEventHandler(mt, func(msg *server.Message) {
			send(ServerMsg{Message: msg})
		})
	}
	go func() {
		<-c.Done()
		send(DisconnectedMsg{})
	}()
}

// Init joins or creates the room.
func (m *Model) Init() tea.Cmd {
	code := m.roomID
	m.roomID = ""
	return tea.Batch(textinput.Blink, func() tea.Msg {
		var err error
		if code == "" {
			err = m.actions.CreateRoom(m.name, m.options)
		} else {
			err = m.actions.JoinRoom(code, m.name)
		}
		if err != nil {
			return actionErrMsg{err}
		}
		return nil
	})
}

type actionErrMsg struct{ err error }

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case ServerMsg:
		m.ApplyServerMessage(msg.Message)

	case DisconnectedMsg:
		m.AddLogEntry(ErrorStyle.Render("Disconnected from server"))
		m.quitting = true
		return m, tea.Quit

	case actionErrMsg:
		m.AddLogEntry(ErrorStyle.Render("Send failed: " + msg.err.Error()))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.Submit(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit runs one line of input. It returns tea.Quit for the quit command.
func (m *Model) Submit(input string) tea.Cmd {
	cmd, err := ParseCommand(input)
	if err != nil {
		m.AddLogEntry(WarningStyle.Render(err.Error()))
		return nil
	}

	switch cmd.Kind {
	case CommandNone:
		return nil
	case CommandQuit:
		m.quitting = true
		if m.roomID != "" {
			_ = m.actions.LeaveRoom() // Best effort on the way out
		}
		return tea.Quit
	case CommandHelp:
		m.AddLogEntry(InfoStyle.Render(helpText))
		return nil
	case CommandCreate:
		err = m.actions.CreateRoom(m.name, m.options)
	case CommandJoin:
		err = m.actions.JoinRoom(cmd.Code, m.name)
	case CommandLeave:
		err = m.actions.LeaveRoom()
	case CommandReady:
		err = m.actions.SetReady(true)
	case CommandUnready:
		err = m.actions.SetReady(false)
	case CommandStart:
		err = m.actions.StartGame()
	case CommandBid:
		err = m.actions.MakeBid(cmd.Quantity, cmd.FaceValue)
	case CommandCall:
		err = m.actions.CallBluff()
	case CommandRestart:
		err = m.actions.RequestRestart()
	}
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render("Send failed: " + err.Error()))
	}
	return nil
}

// ApplyServerMessage folds one server message into the display state.
func (m *Model) ApplyServerMessage(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeError:
		var data server.ErrorData
		if m.decode(msg, &data) {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("✗ %s (%s)", data.Message, data.Code)))
		}

	case server.MessageTypeRoomJoined:
		var data server.RoomJoinedData
		if m.decode(msg, &data) {
			m.roomID = data.RoomID
			m.playerID = data.PlayerID
			m.hand = nil
			m.state = nil
			role := ""
			if data.Creator {
				role = " as creator, share the code to invite friends"
			}
			m.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("Joined room %s%s", data.RoomID, role)))
		}

	case server.MessageTypeRoomLeft:
		m.AddLogEntry(InfoStyle.Render("Left room " + m.roomID))
		m.roomID = ""
		m.members = nil
		m.state = nil
		m.hand = nil
		m.status = ""

	case server.MessageTypeRoomUpdate:
		var data server.RoomUpdateData
		if m.decode(msg, &data) {
			m.members = data.Players
			m.status = data.Status
			if data.Status == statusLobby {
				m.state = nil
				m.hand = nil
			}
		}

	case server.MessageTypeGameState:
		var data server.GameStateData
		if m.decode(msg, &data) {
			m.state = &data
			m.status = data.Status
		}

	case server.MessageTypeYourDice:
		var data server.YourDiceData
		if m.decode(msg, &data) {
			m.hand = data.Dice
			m.round = data.Round
		}

	case server.MessageTypeEvent:
		var data server.EventData
		if m.decode(msg, &data) {
			m.AddLogEntry(GameLogStyle.Render(data.Message))
		}

	case server.MessageTypeRoundStart:
		var data server.RoundStartData
		if m.decode(msg, &data) {
			m.AddLogEntry(HeaderStyle.Render(fmt.Sprintf(" Round %d ", data.Round)))
		}

	case server.MessageTypeReveal:
		var data server.RevealData
		if m.decode(msg, &data) {
			m.AddLogEntry(WarningStyle.Render(fmt.Sprintf("Reveal: %d×%d called, %d on the table",
				data.Bid.Quantity, data.Bid.FaceValue, data.Tally)))
			for _, h := range data.Hands {
				m.AddLogEntry(fmt.Sprintf("  %-12s %s", h.Name, RenderDice(h.Dice, data.Bid.FaceValue)))
			}
		}

	case server.MessageTypeRoundResult:
		// The event carries the narrative; nothing extra to show.

	case server.MessageTypeGameOver:
		var data server.GameOverData
		if m.decode(msg, &data) {
			switch {
			case data.WinnerID == "":
				m.AddLogEntry(WarningStyle.Render("Game over"))
			case data.WinnerID == m.playerID:
				m.AddLogEntry(SuccessStyle.Render("You win! Type restart for another game"))
			default:
				m.AddLogEntry(WarningStyle.Render(data.Winner + " wins. Type restart for another game"))
			}
		}
	}
}

const (
	statusLobby   = "lobby"
	statusPlaying = "playing"
)

func (m *Model) decode(msg *server.Message, v any) bool {
	if err := msg.Decode(v); err != nil {
		m.logger.Warn("Failed to decode server message", "type", msg.Type, "error", err)
		return false
	}
	return true
}

// IsMyTurn reports whether the last game state puts this player on turn.
func (m *Model) IsMyTurn() bool {
	return m.state != nil && m.state.Status == statusPlaying && m.state.CurrentTurn == m.playerID && m.playerID != ""
}

// Log returns the log lines.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// RoomID returns the room code the model is in.
func (m *Model) RoomID() string {
	return m.roomID
}

// Hand returns the private dice last dealt.
func (m *Model) Hand() []int {
	return m.hand
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane lists the room and its players.
func (m *Model) renderSidebarPane() string {
	var b strings.Builder

	if m.roomID == "" {
		b.WriteString(InfoStyle.Render("Not in a room"))
		return b.String()
	}

	b.WriteString(HeaderStyle.Render(" Room " + m.roomID + " "))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(m.status))
	b.WriteString("\n\n")

	if m.state != nil && m.status != statusLobby {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Round %d · %d dice", m.state.Round, m.state.TotalDice)))
		b.WriteString("\n")
		if bid := m.state.CurrentBid; bid != nil {
			b.WriteString(ActionsStyle.Render(fmt.Sprintf("Bid: %d×%d by %s", bid.Quantity, bid.FaceValue, bid.PlayerName)))
		} else {
			b.WriteString(InfoStyle.Render("No bid yet"))
		}
		b.WriteString("\n\n")
		for _, p := range m.state.Players {
			line := fmt.Sprintf("%-12s %d", p.Name, p.DiceCount)
			switch {
			case p.Eliminated:
				line = InfoStyle.Render(line + " out")
			case p.IsTurn:
				line = TurnStyle.Render("▶ " + line)
			default:
				line = PlayerInfoStyle.Render("  " + line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		return b.String()
	}

	for _, p := range m.members {
		mark := "·"
		if p.Ready {
			mark = "✓"
		}
		name := p.Name
		if p.IsCreator {
			name += " ★"
		}
		b.WriteString(PlayerInfoStyle.Render(fmt.Sprintf("%s %s", mark, name)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderActionPane shows the hand, the prompt and key help.
func (m *Model) renderActionPane() string {
	var b strings.Builder

	if len(m.hand) > 0 && m.status == statusPlaying {
		b.WriteString(HandInfoStyle.Render("Your dice: "))
		b.WriteString(RenderDice(m.hand, 0))
		b.WriteString("\n")
	}
	if m.IsMyTurn() {
		b.WriteString(ActionsStyle.Render("Your turn: bid QTY FACE or call"))
		b.WriteString("\n")
	}

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • help • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, Home/End, Tab to input"
	}
	b.WriteString(InfoStyle.Render(help))
	return b.String()
}

// RenderDice draws a hand, highlighting dice that show face.
func RenderDice(hand []int, face int) string {
	parts := make([]string, len(hand))
	for i, d := range hand {
		style := DieStyle
		if d == face {
			style = MatchedDieStyle
		}
		parts[i] = style.Render(fmt.Sprint(d))
	}
	return strings.Join(parts, " ")
}
