package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/watchroom/server/internal/presence"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/rest"
)

func (c controller) userFromRequest(r *http.Request) (string, string) {
	token := r.URL.Query().Get("token")
	if auth := r.Header.Get("Authorization"); auth != "" {
		token = strings.TrimPrefix(auth, "Bearer ")
	}

	return token, r.URL.Query().Get("username")
}

// websocket upgrades the connection and serves it until the peer goes away.
// Identity is resolved before the upgrade so a bad token costs a plain 401
// instead of a dangling socket.
func (c controller) websocket(w http.ResponseWriter, r *http.Request) {
	token, username := c.userFromRequest(r)
	user, err := c.identity.Resolve(token, username)
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": err.Error()})
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	conn := presence.NewConn(uuid.NewString(), ws)

	ctx := context.WithValue(r.Context(), connCtxKey, conn)
	ctx = context.WithValue(ctx, userCtxKey, user)
	ctx = ctxlogger.AppendCtx(ctx,
		slog.String("conn_id", conn.Id),
		slog.String("user", user.DisplayName),
	)

	c.logger.InfoContext(ctx, "websocket connected")

	if err := c.wsmux.ServeConn(ctx, ws); err != nil {
		c.logger.InfoContext(ctx, "websocket disconnected", "error", err)
	}

	// the transport hook funnels into the same removal path as LEAVE_ROOM,
	// so a leave followed by a disconnect stays a no-op
	if err := c.leave(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to leave room on disconnect", "error", err)
	}
}
