package controller

import (
	"context"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/presence"
)

type contextKey int

const (
	connCtxKey contextKey = iota
	userCtxKey
)

func (c controller) getConnFromCtx(ctx context.Context) *presence.Conn {
	conn, ok := ctx.Value(connCtxKey).(*presence.Conn)
	if !ok {
		return nil
	}

	return conn
}

func (c controller) getUserFromCtx(ctx context.Context) domain.User {
	user, ok := ctx.Value(userCtxKey).(domain.User)
	if !ok {
		return domain.User{}
	}

	return user
}
