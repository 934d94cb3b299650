package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gokcedogruu-spec/LiarsDice-sub000/internal/game"
)

// CommandKind enumerates what a line of input asks for.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandCreate
	CommandJoin
	CommandLeave
	CommandReady
	CommandUnready
	CommandStart
	CommandBid
	CommandCall
	CommandRestart
	CommandHelp
	CommandQuit
)

// Command is a parsed line of input.
type Command struct {
	Kind      CommandKind
	Code      string
	Quantity  int
	FaceValue int
}

var errUsage = errors.New("usage")

const helpText = "create | join CODE | ready | unready | start | bid QTY FACE | call | restart | leave | quit"

// ParseCommand turns one input line into a Command. Bids accept "bid 3 5",
// "3 5" and "3x5".
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{Kind: CommandNone}, nil
	}

	switch fields[0] {
	case "create", "new":
		return Command{Kind: CommandCreate}, nil
	case "join", "j":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%w: join CODE", errUsage)
		}
		return Command{Kind: CommandJoin, Code: strings.ToUpper(fields[1])}, nil
	case "leave":
		return Command{Kind: CommandLeave}, nil
	case "ready", "r":
		return Command{Kind: CommandReady}, nil
	case "unready":
		return Command{Kind: CommandUnready}, nil
	case "start":
		return Command{Kind: CommandStart}, nil
	case "call", "liar", "c":
		return Command{Kind: CommandCall}, nil
	case "restart":
		return Command{Kind: CommandRestart}, nil
	case "help", "?":
		return Command{Kind: CommandHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: CommandQuit}, nil
	case "bid", "b":
		return parseBid(fields[1:])
	default:
		return parseBid(fields)
	}
}

func parseBid(args []string) (Command, error) {
	if len(args) == 1 {
		args = strings.FieldsFunc(args[0], func(r rune) bool { return r == 'x' || r == '×' || r == '*' })
	}
	if len(args) != 2 {
		return Command{}, fmt.Errorf("%w: bid QTY FACE", errUsage)
	}

	qty, err := strconv.Atoi(args[0])
	if err != nil {
		return Command{}, fmt.Errorf("%w: quantity must be a number", errUsage)
	}
	face, err := strconv.Atoi(args[1])
	if err != nil {
		return Command{}, fmt.Errorf("%w: face must be a number", errUsage)
	}

	bid := game.Bid{Quantity: qty, FaceValue: face}
	if !bid.Valid() {
		return Command{}, fmt.Errorf("%w: face must be %d-%d and quantity positive", errUsage, game.MinFace, game.MaxFace)
	}
	return Command{Kind: CommandBid, Quantity: qty, FaceValue: face}, nil
}
