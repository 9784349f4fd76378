package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
	"github.com/FMSoblaci/oblat-project-flow/internal/blob"
	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
)

// newTestServer builds a server over an in-memory store with uploads in a
// temp directory.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerTTL(t, time.Millisecond)
}

// newTestServerTTL is newTestServer with a specific stats cache TTL.
func newTestServerTTL(t *testing.T, statsTTL time.Duration) *Server {
	t.Helper()

	store := db.NewTestStore(t)
	blobs, err := blob.NewStore(t.TempDir())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(&Config{
		Addr:      ":0",
		Logger:    logger,
		Store:     store,
		Auth:      auth.NewService(store, logger, time.Hour),
		Blobs:     blobs,
		Publisher: events.NewMemoryPublisher(),
		StatsTTL:  statsTTL,
	})
	return srv
}

// signUp registers a user through the API and returns their bearer token.
func signUp(t *testing.T, srv *Server, email string, role auth.Role) string {
	t.Helper()

	body := map[string]string{
		"email":     email,
		"password":  "secret1",
		"full_name": "Test User",
		"role":      string(role),
	}
	w := doJSON(t, srv, "POST", "/api/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// doJSON performs a request against the server mux with an optional bearer
// token and JSON body.
func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

// dateOffset returns a YYYY-MM-DD date n days from today.
func dateOffset(n int) string {
	return time.Now().AddDate(0, 0, n).Format("2006-01-02")
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[map[string]string](t, w)
	require.Equal(t, "ok", resp["status"])
}

func TestRequireAuth_MissingToken(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/api/tasks", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_BogusToken(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/api/tasks", "not-a-real-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartContext_PurgesExpiredSessions(t *testing.T) {
	srv := newTestServer(t)

	user := &db.User{Email: "sweep@example.com", PasswordHash: "x"}
	require.NoError(t, srv.store.CreateUser(user))

	expired, err := srv.store.CreateSession(user.ID, -time.Hour)
	require.NoError(t, err)
	valid, err := srv.store.CreateSession(user.ID, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.StartContext(ctx) }()

	// GetSession hides expired rows, so check the table directly to see the
	// row actually removed.
	require.Eventually(t, func() bool {
		var n int
		err := srv.store.QueryRow(`SELECT COUNT(*) FROM sessions WHERE token = ?`, expired.Token).Scan(&n)
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)

	sess, err := srv.store.GetSession(valid.Token)
	require.NoError(t, err)
	require.NotNil(t, sess)

	cancel()
	require.ErrorIs(t, <-done, http.ErrServerClosed)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/tasks", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
