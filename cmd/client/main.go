package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/adapters/webapi"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/pkg/utils"
	"github.com/pkg/errors"
)

const (
	readyTimeout  = 10 * time.Second
	readyInterval = 500 * time.Millisecond
)

const usage = `commands:
  r c      play row r, column c (0-8)
  e        evaluate the position
  b        play the best move
  n x|o|-  new game as X, as O or for both sides
  q        quit`

func main() {
	host := flag.String("addr", "localhost:8080", "server address")
	session := flag.String("session", "", "session id to resume")
	flag.Parse()

	logger, err := utils.NewLogger("warn")
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	stats, err := webapi.New("http://"+*host, logger).WaitReady(ctx, readyInterval)
	cancel()
	if err != nil {
		log.Fatal("health check: " + err.Error())
	}
	fmt.Printf("server is up: %d sessions, %d rollouts\n", stats.Sessions, stats.Rollouts)

	u := url.URL{Scheme: "ws", Host: *host, Path: "/game"}
	header := http.Header{}
	if *session != "" {
		header.Set(domain.SessionIdHeader, *session)
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatal("dial: " + err.Error())
	}
	defer func() {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	go func() {
		if err := printMessages(conn); err != nil {
			log.Println(err)
		}
	}()
	fmt.Println(usage)
	if err := handleCommands(conn, bufio.NewScanner(os.Stdin)); err != nil {
		log.Println(err)
	}
}

func handleCommands(conn *websocket.Conn, scanner *bufio.Scanner) error {
	for scanner.Scan() {
		msg, quit, err := parseCommand(scanner.Text())
		switch {
		case quit:
			return nil
		case err != nil:
			fmt.Println(err)
			fmt.Println(usage)
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			return errors.WithMessage(err, "write json msg")
		}
	}
	return scanner.Err()
}

func parseCommand(line string) (domain.Message, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Message{}, false, errors.New("empty command")
	}
	switch fields[0] {
	case "q":
		return domain.Message{}, true, nil
	case "e":
		return domain.Message{Type: domain.Evaluate}, false, nil
	case "b":
		return domain.Message{Type: domain.PlayBest}, false, nil
	case "n":
		side := domain.Mine
		if len(fields) > 1 {
			switch fields[1] {
			case "x":
			case "o":
				side = domain.Theirs
			case "-":
				side = domain.Empty
			default:
				return domain.Message{}, false, errors.Errorf("unknown side '%s'", fields[1])
			}
		}
		return domain.Message{Type: domain.StartGame, Payload: domain.StartGamePayload{HumanSide: side}}, false, nil
	}
	move, err := domain.ParseCoord(strings.Join(fields, ","))
	if err != nil {
		return domain.Message{}, false, err
	}
	return domain.Message{
		Type:    domain.PlayerMove,
		Payload: domain.PlayerMovePayload{Row: move.Row, Col: move.Col},
	}, false, nil
}

func printMessages(conn *websocket.Conn) error {
	for {
		msg := new(domain.Message)
		if err := conn.ReadJSON(msg); err != nil {
			return errors.WithMessage(err, "read json msg")
		}
		switch msg.Type {
		case domain.State:
			state, err := utils.UnmarshalJson[domain.StatePayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "unmarshal json to 'StatePayload' type")
			}
			printState(state)
		case domain.Failure:
			failure, err := utils.UnmarshalJson[domain.FailurePayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "unmarshal json to 'FailurePayload' type")
			}
			fmt.Println("rejected: " + failure.Message)
		}
	}
}

func printState(state domain.StatePayload) {
	fmt.Printf("\033[H\033[J")
	board, err := domain.ParseBoard(notation(state))
	if err != nil {
		fmt.Println("cannot draw board: " + err.Error())
		return
	}
	fmt.Println(board.String())
	fmt.Printf("session %s, last move %s\n", state.SessionID, state.Last)
	for _, entry := range state.Scores {
		fmt.Printf("%s:%d ", entry.Move, entry.Score)
	}
	if len(state.Scores) > 0 {
		fmt.Println()
	}
	if len(state.Winning) > 0 {
		fmt.Printf("winning: %v\n", state.Winning)
	}
	if len(state.Losing) > 0 {
		fmt.Printf("losing: %v\n", state.Losing)
	}
	if state.Result != domain.Empty {
		fmt.Printf("game over: %s\n", state.Result)
		return
	}
	fmt.Printf("%c to move\n", state.Turn.Symbol())
}

// notation writes decided sub-boards filled with their owner so that
// ParseBoard restores them.
func notation(state domain.StatePayload) string {
	var sb strings.Builder
	for row := range domain.Size {
		for col := range domain.Size {
			cell := state.Cells[row][col]
			if owner := state.Meta[row/3][col/3]; owner != domain.Empty {
				cell = owner
			}
			sb.WriteByte(cell.Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
