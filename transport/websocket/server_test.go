package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

type testClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewSessionManager(
		logger,
		repository.NewMemorySessionRepository(time.Hour),
		tictactoe.NewGameController(nil),
	)

	srv := httptest.NewServer(New(logger, manager))
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *testClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })

	return &testClient{t: t, ctx: ctx, conn: conn}
}

func (that *testClient) send(raw string) Response {
	that.t.Helper()

	require.NoError(that.t, that.conn.Write(that.ctx, websocket.MessageText, []byte(raw)))

	var resp Response
	require.NoError(that.t, wsjson.Read(that.ctx, that.conn, &resp))

	return resp
}

func TestServer_Connect(t *testing.T) {
	t.Run("Connect without an ID creates a session", func(t *testing.T) {
		client := dial(t, newTestServer(t), nil)

		resp := client.send(`{"action":"connect"}`)

		assert.Equal(t, actionConnect, resp.Action)
		assert.Empty(t, resp.Payload.Error)
		require.NotNil(t, resp.Payload.Session)
		assert.True(t, pkg.IsValidSessionID(resp.Payload.Session.ID))
		assert.Equal(t, entity.PlayerX, resp.Payload.Session.Turn)
	})

	t.Run("Connect with a known ID resumes the session", func(t *testing.T) {
		srv := newTestServer(t)

		first := dial(t, srv, nil)
		created := first.send(`{"action":"connect"}`).Payload.Session
		first.send(`{"action":"game:turn","payload":{"cell":4}}`)

		second := dial(t, srv, nil)
		resp := second.send(`{"action":"connect","payload":{"session_id":"` + created.ID + `"}}`)

		require.NotNil(t, resp.Payload.Session)
		assert.Equal(t, created.ID, resp.Payload.Session.ID)
		assert.Equal(t, entity.PlayerX, resp.Payload.Session.Board[4])
	})

	t.Run("Session cookie binds the connection", func(t *testing.T) {
		srv := newTestServer(t)

		first := dial(t, srv, nil)
		created := first.send(`{"action":"connect"}`).Payload.Session

		header := http.Header{}
		header.Set("Cookie", pkg.SessionCookieName+"="+created.ID)
		second := dial(t, srv, header)

		resp := second.send(`{"action":"game:turn","payload":{"cell":0}}`)

		require.NotNil(t, resp.Payload.Session)
		assert.Equal(t, created.ID, resp.Payload.Session.ID)
	})
}

func TestServer_Game(t *testing.T) {
	client := dial(t, newTestServer(t), nil)
	client.send(`{"action":"connect"}`)

	// When: X wins on the main diagonal
	var resp Response
	for _, cell := range []string{"0", "1", "4", "2", "8"} {
		resp = client.send(`{"action":"game:turn","payload":{"cell":` + cell + `}}`)
	}

	// Then: the win is reported
	require.NotNil(t, resp.Payload.Session)
	assert.Equal(t, actionGameTurn, resp.Action)
	assert.Equal(t, entity.StatusWon, resp.Payload.Session.Status)
	assert.Equal(t, entity.ScoreTally{X: 1}, resp.Payload.Session.Score)

	// When: a new game starts
	resp = client.send(`{"action":"game:new"}`)

	// Then: the board is cleared and the score kept
	require.NotNil(t, resp.Payload.Session)
	assert.Equal(t, actionGameNew, resp.Action)
	assert.Equal(t, entity.Board{}, resp.Payload.Session.Board)
	assert.Equal(t, entity.ScoreTally{X: 1}, resp.Payload.Session.Score)

	// When: everything is reset
	resp = client.send(`{"action":"game:reset"}`)

	// Then: score and history are cleared
	require.NotNil(t, resp.Payload.Session)
	assert.Equal(t, actionGameReset, resp.Action)
	assert.Equal(t, entity.ScoreTally{}, resp.Payload.Session.Score)
	assert.Empty(t, resp.Payload.Session.History)
}

func TestServer_Errors(t *testing.T) {
	client := dial(t, newTestServer(t), nil)

	t.Run("Malformed message", func(t *testing.T) {
		resp := client.send(`{"action":`)

		assert.Equal(t, actionError, resp.Action)
		assert.Equal(t, "invalid message", resp.Payload.Error)
	})

	t.Run("Unknown action", func(t *testing.T) {
		resp := client.send(`{"action":"game:leave"}`)

		assert.Equal(t, "game:leave", resp.Action)
		assert.Equal(t, "unknown action", resp.Payload.Error)
	})

	t.Run("Turn without a cell", func(t *testing.T) {
		resp := client.send(`{"action":"game:turn","payload":{}}`)

		assert.Equal(t, "cell is required", resp.Payload.Error)
		assert.Nil(t, resp.Payload.Session)
	})

	t.Run("Turn with a malformed payload", func(t *testing.T) {
		resp := client.send(`{"action":"game:turn","payload":"x"}`)

		assert.Equal(t, "invalid payload", resp.Payload.Error)
	})

	t.Run("Connection keeps working after errors", func(t *testing.T) {
		resp := client.send(`{"action":"connect"}`)

		assert.Empty(t, resp.Payload.Error)
		assert.NotNil(t, resp.Payload.Session)
	})
}
