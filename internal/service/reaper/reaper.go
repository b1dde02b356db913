package reaper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/watchroom/server/internal/domain"
	roomRepo "github.com/watchroom/server/internal/repository/room"
)

type iRoomRepo interface {
	GetActive(context.Context) ([]*domain.Room, error)
	GetByHash(context.Context, string) (*domain.Room, error)
	Delete(context.Context, string) error
}

// Reaper retires rooms that have seen no activity for longer than the
// threshold. It runs independently of request traffic.
type Reaper struct {
	roomRepo  iRoomRepo
	interval  time.Duration
	threshold time.Duration
	logger    *slog.Logger
}

func New(roomRepo iRoomRepo, interval, threshold time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		roomRepo:  roomRepo,
		interval:  interval,
		threshold: threshold,
		logger:    logger,
	}
}

// Run loops until the context is cancelled. A failed cycle is logged and the
// next tick proceeds normally.
func (r *Reaper) Run(ctx context.Context) {
	r.logger.InfoContext(ctx, "inactivity reaper started",
		"interval", r.interval.String(),
		"threshold", r.threshold.String(),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "inactivity reaper stopped")
			return
		case <-ticker.C:
			if err := r.Cycle(ctx); err != nil {
				r.logger.ErrorContext(ctx, "reaper cycle failed", "error", err)
			}
		}
	}
}

// Cycle lists active rooms, filters the stale ones and deletes each after
// re-checking freshness on a fresh copy, so a room revived between the
// listing pass and the delete survives. A failure on one room never aborts
// the rest of the cycle.
func (r *Reaper) Cycle(ctx context.Context) error {
	rooms, err := r.roomRepo.GetActive(ctx)
	if err != nil {
		return err
	}

	for _, room := range rooms {
		if !room.IsInactiveFor(r.threshold) {
			continue
		}

		fresh, err := r.roomRepo.GetByHash(ctx, room.Hash)
		if err != nil {
			if !errors.Is(err, roomRepo.ErrRoomNotFound) {
				r.logger.ErrorContext(ctx, "failed to re-fetch reap candidate", "room_hash", room.Hash, "error", err)
			}
			continue
		}

		if !fresh.IsInactiveFor(r.threshold) {
			r.logger.InfoContext(ctx, "room revived during check, skipping", "room_hash", room.Hash)
			continue
		}

		if err := r.roomRepo.Delete(ctx, fresh.Hash); err != nil {
			r.logger.ErrorContext(ctx, "failed to delete inactive room", "room_hash", fresh.Hash, "error", err)
			continue
		}

		r.logger.InfoContext(ctx, "inactive room removed",
			"room_hash", fresh.Hash,
			"room_name", fresh.Name,
			"last_activity_at", fresh.LastActivityAt,
		)
	}

	return nil
}
