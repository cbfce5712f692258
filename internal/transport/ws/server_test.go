package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/adapters/clock"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/adapters/memcache"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/engine"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/game"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/usecase/hub"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type hubStub struct {
	stats  domain.HubStats
	handle func(ctx context.Context, client domain.Client) error
}

func (h hubStub) Handle(ctx context.Context, client domain.Client) error {
	return h.handle(ctx, client)
}

func (h hubStub) Stats() domain.HubStats {
	return h.stats
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func readState(t *testing.T, conn *websocket.Conn) domain.StatePayload {
	t.Helper()
	var msg domain.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, domain.State, msg.Type)
	state, err := utils.UnmarshalJson[domain.StatePayload](msg.Payload)
	require.NoError(t, err)
	return state
}

// resumes reports whether a connection with header lands in session id.
func resumes(srv *httptest.Server, header http.Header, id string) bool {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/game"), header)
	if err != nil {
		return false
	}
	defer conn.Close()
	var msg domain.Message
	if err := conn.ReadJSON(&msg); err != nil {
		return false
	}
	state, err := utils.UnmarshalJson[domain.StatePayload](msg.Payload)
	if err != nil {
		return false
	}
	return state.SessionID == id && state.Cells[4][4] == domain.Mine
}

func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	clk := clock.NewStepping(epoch, time.Millisecond)
	counter := atomic.NewInt64(0)
	newEngine := func(rng domain.Rand) domain.EngineUseCase {
		return engine.New(clock.NewStepping(epoch, time.Millisecond), rng, zap.NewNop(), engine.WithCounter(counter))
	}
	g := game.New(memcache.New(clk, time.Hour), clk, 10*time.Millisecond, zap.NewNop())
	h := hub.New(g, newEngine, clk, counter, zap.NewNop(), hub.WithSeed(1))
	srv := httptest.NewServer(New("", h, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_Game(t *testing.T) {
	// Given: a server with a real hub and engine
	srv := newGameServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/game"), nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := readState(t, conn)
	assert.NotEmpty(t, initial.SessionID)
	assert.Len(t, initial.Legal, 81)

	// When: the human plays the centre
	require.NoError(t, conn.WriteJSON(domain.Message{
		Type:    domain.PlayerMove,
		Payload: domain.PlayerMovePayload{Row: 4, Col: 4},
	}))

	// Then: the engine has answered inside the centre sub-board
	state := readState(t, conn)
	assert.Equal(t, domain.Mine, state.Cells[4][4])
	assert.Equal(t, domain.Mine, state.Turn)
	row, col := state.Last.Meta()
	assert.Equal(t, [2]int{1, 1}, [2]int{row, col})

	// And: the session can be resumed by id once the connection is gone
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	header := http.Header{}
	header.Set(domain.SessionIdHeader, initial.SessionID)
	require.Eventually(t, func() bool {
		return resumes(srv, header, initial.SessionID)
	}, time.Second, 10*time.Millisecond)
}

func TestServer_HealthCheck(t *testing.T) {
	h := hubStub{stats: domain.HubStats{Sessions: 3, Rollouts: 1200}}
	srv := httptest.NewServer(New("", h, zap.NewNop()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body domain.HealthCheckResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, domain.HealthCheckResponse{Sessions: 3, Rollouts: 1200}, body)
}

func TestClient_ReadMessage(t *testing.T) {
	t.Run("Close frame", func(t *testing.T) {
		// Given: a hub that reports what the connection read
		readErr := make(chan error, 1)
		h := hubStub{handle: func(_ context.Context, client domain.Client) error {
			_, err := client.ReadMessage()
			readErr <- err
			return nil
		}}
		srv := httptest.NewServer(New("", h, zap.NewNop()).Handler())
		defer srv.Close()
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/game"), nil)
		require.NoError(t, err)
		defer conn.Close()

		// When: the peer closes the connection
		require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye")))

		// Then
		select {
		case err := <-readErr:
			require.ErrorIs(t, err, domain.ErrConnectionClosed)
		case <-time.After(time.Second):
			t.Fatal("read did not return")
		}
	})

	t.Run("Session id from query", func(t *testing.T) {
		ids := make(chan string, 1)
		h := hubStub{handle: func(_ context.Context, client domain.Client) error {
			ids <- client.Uuid()
			return nil
		}}
		srv := httptest.NewServer(New("", h, zap.NewNop()).Handler())
		defer srv.Close()

		conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/game?session=abc"), nil)
		require.NoError(t, err)
		defer conn.Close()

		select {
		case id := <-ids:
			assert.Equal(t, "abc", id)
		case <-time.After(time.Second):
			t.Fatal("hub was not called")
		}
	})

	t.Run("Round trip", func(t *testing.T) {
		received := make(chan domain.Message, 1)
		h := hubStub{handle: func(_ context.Context, client domain.Client) error {
			msg, err := client.ReadMessage()
			if err != nil {
				return err
			}
			received <- msg
			return client.WriteMessage(domain.Message{
				Type:    domain.Failure,
				Payload: domain.FailurePayload{Message: "nope"},
			})
		}}
		srv := httptest.NewServer(New("", h, zap.NewNop()).Handler())
		defer srv.Close()
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/game"), nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteJSON(domain.Message{Type: domain.Evaluate}))
		var reply domain.Message
		require.NoError(t, conn.ReadJSON(&reply))

		assert.Equal(t, domain.Evaluate, (<-received).Type)
		assert.Equal(t, domain.Failure, reply.Type)
		failure, err := utils.UnmarshalJson[domain.FailurePayload](reply.Payload)
		require.NoError(t, err)
		assert.Equal(t, "nope", failure.Message)
	})
}
