package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestRouter(t *testing.T, router *WSRouter) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		router.ServeConn(context.Background(), conn)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func TestRoutesByMessageType(t *testing.T) {
	received := make(chan string, 1)

	router := New()
	router.Handle("PING", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		assert.Equal(t, "PING", GetMessageTypeFromCtx(ctx))
		received <- string(payload)
		return nil
	})

	client := dialTestRouter(t, router)

	require.NoError(t, client.WriteJSON(map[string]any{"type": "PING", "payload": map[string]any{"n": 1}}))

	select {
	case payload := <-received:
		assert.JSONEq(t, `{"n":1}`, payload)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestUnknownTypeGoesToErrorHandler(t *testing.T) {
	errs := make(chan error, 1)

	router := New()
	router.HandleError(func(ctx context.Context, conn *websocket.Conn, err error) {
		errs <- err
	})

	client := dialTestRouter(t, router)

	require.NoError(t, client.WriteJSON(map[string]any{"type": "NOPE"}))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "unknown message type")
	case <-time.After(time.Second):
		t.Fatal("error handler was not invoked")
	}
}

func TestHandlerErrorDoesNotTerminateLoop(t *testing.T) {
	errSome := errors.New("some handler error")
	errs := make(chan error, 1)
	received := make(chan struct{}, 1)

	router := New()
	router.Handle("FAIL", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		return errSome
	})
	router.Handle("OK", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		received <- struct{}{}
		return nil
	})
	router.HandleError(func(ctx context.Context, conn *websocket.Conn, err error) {
		errs <- err
	})

	client := dialTestRouter(t, router)

	require.NoError(t, client.WriteJSON(map[string]any{"type": "FAIL"}))
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, errSome)
	case <-time.After(time.Second):
		t.Fatal("error handler was not invoked")
	}

	require.NoError(t, client.WriteJSON(map[string]any{"type": "OK"}))
	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("loop did not survive the handler error")
	}
}

func TestMiddlewareWrapsHandlers(t *testing.T) {
	var order []string
	done := make(chan struct{}, 1)

	router := New()
	router.Use(func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
			order = append(order, "outer")
			return next(ctx, conn, payload)
		}
	})
	router.Use(func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
			order = append(order, "inner")
			return next(ctx, conn, payload)
		}
	})
	router.Handle("GO", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		order = append(order, "handler")
		done <- struct{}{}
		return nil
	})

	client := dialTestRouter(t, router)

	require.NoError(t, client.WriteJSON(map[string]any{"type": "GO"}))

	select {
	case <-done:
		assert.Equal(t, []string{"outer", "inner", "handler"}, order)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}
