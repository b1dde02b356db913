package controller

import (
	"context"
	"strconv"
	"time"

	"github.com/watchroom/server/internal/presence"
)

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

func (c controller) writeToConn(ctx context.Context, conn *presence.Conn, output *Output) error {
	return conn.WriteJSON(output)
}

// broadcast delivers the output to every connection, isolating per-recipient
// write failures so one dead socket never starves the rest of the room.
func (c controller) broadcast(ctx context.Context, conns []*presence.Conn, output *Output) {
	for _, conn := range conns {
		if err := conn.WriteJSON(output); err != nil {
			c.logger.WarnContext(ctx, "failed to write to conn",
				"conn_id", conn.Id,
				"output_type", output.Type,
				"error", err,
			)
		}
	}
}
