package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-social/internal/auth"
	myMiddleware "go-social/internal/middleware"
)

func newTestRouter() http.Handler {
	logger := zap.NewNop()
	tokens := auth.NewTokenService("test-secret", time.Hour, nil)
	authenticate := myMiddleware.NewAuthMiddleware(tokens, logger.Sugar()).Handle
	// Handlers are never reached by these requests.
	return NewRouter(Handlers{}, authenticate, logger)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	for _, route := range []struct{ method, target string }{
		{http.MethodGet, "/posts"},
		{http.MethodPost, "/vote/1"},
		{http.MethodGet, "/chatsocket/1"},
		{http.MethodGet, "/isfriend/2"},
		{http.MethodGet, "/mypage"},
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(route.method, route.target, nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code, route.target)
	}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var closed atomic.Int32
	srv := New(ln.Addr().String(), newTestRouter(), zap.NewNop().Sugar(),
		func() { closed.Add(1) },
		func() { closed.Add(1) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	require.Equal(t, int32(2), closed.Load())
}
