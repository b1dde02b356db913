package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/watchroom/server/internal/controller"
	"github.com/watchroom/server/internal/presence"
	roomRedis "github.com/watchroom/server/internal/repository/room/redis"
	"github.com/watchroom/server/internal/service/identity"
	"github.com/watchroom/server/internal/service/reaper"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/redisclient"
	"github.com/watchroom/server/pkg/ytdata"
)

type AppConfig struct {
	Secret                string `json:"-"`
	Host                  string `json:"host"`
	Port                  int    `json:"port"`
	LogLevel              string `json:"log_level"`
	PlaylistLimit         int    `json:"playlist_limit"`
	ChatHistoryLimit      int    `json:"chat_history_limit"`
	ReaperIntervalSeconds int    `json:"reaper_interval_seconds"`
	RoomInactiveMinutes   int    `json:"room_inactive_minutes"`
	RedisHost             string `json:"redis_host"`
	RedisPort             int    `json:"redis_port"`
	RedisPassword         string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.PlaylistLimit < 1 {
		return fmt.Errorf("playlist limit must be greater than 0")
	}
	if cfg.ChatHistoryLimit < 1 {
		return fmt.Errorf("chat history limit must be greater than 0")
	}
	if cfg.ReaperIntervalSeconds < 1 {
		return fmt.Errorf("reaper interval must be greater than 0")
	}
	if cfg.RoomInactiveMinutes < 1 {
		return fmt.Errorf("room inactive minutes must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := roomRedis.NewRepo(rc, cfg.ChatHistoryLimit, logger)
	registry := presence.NewRegistry()
	resolver := ytdata.NewResolver()
	identityResolver := identity.NewResolver(cfg.Secret)

	roomService := room.NewService(roomRepo, roomRepo, registry, resolver, &room.Config{
		PlaylistLimit:    cfg.PlaylistLimit,
		ChatHistoryLimit: cfg.ChatHistoryLimit,
	}, logger)

	ctrl := controller.NewController(roomService, identityResolver, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.GetMux()}

	serverCtx, serverStopCtx := context.WithCancel(ctx)

	roomReaper := reaper.New(
		roomRepo,
		time.Duration(cfg.ReaperIntervalSeconds)*time.Second,
		time.Duration(cfg.RoomInactiveMinutes)*time.Minute,
		logger,
	)
	go roomReaper.Run(serverCtx)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
