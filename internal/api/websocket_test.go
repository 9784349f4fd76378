package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
)

func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	token := signUp(t, srv, "ws@example.com", auth.RoleDeveloper)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWSMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWebSocket_SubscribeReceivesEvents(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "subscribe", EntityID: "*"}))
	ack := readWSMessage(t, conn)
	require.Equal(t, "subscribed", ack["type"])

	srv.publisher.Publish(events.NewEvent(events.EventTaskCreated, "TSK-1", map[string]string{"title": "x"}))

	msg := readWSMessage(t, conn)
	require.Equal(t, "event", msg["type"])
	require.Equal(t, "task_created", msg["event"])
	require.Equal(t, "TSK-1", msg["entity_id"])
}

func TestWebSocket_EntityScopedSubscription(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "subscribe", EntityID: "TSK-1"}))
	ack := readWSMessage(t, conn)
	require.Equal(t, "subscribed", ack["type"])

	// An event for another entity is not forwarded; the next frame read is
	// the one for the subscribed entity.
	srv.publisher.Publish(events.NewEvent(events.EventBugCreated, "BUG-9", nil))
	srv.publisher.Publish(events.NewEvent(events.EventCommentCreated, "TSK-1", nil))

	msg := readWSMessage(t, conn)
	require.Equal(t, "comment_created", msg["event"])
	require.Equal(t, "TSK-1", msg["entity_id"])
}

func TestWebSocket_PingPong(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "ping"}))
	msg := readWSMessage(t, conn)
	require.Equal(t, "pong", msg["type"])
}

func TestWebSocket_RejectsMissingToken(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_RejectsBogusToken(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?token=nope"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_UnknownType(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "teleport"}))
	msg := readWSMessage(t, conn)
	require.Equal(t, "error", msg["type"])
}
