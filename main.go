package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"focusroomgo/internal/config"
	"focusroomgo/internal/database/db_client"
	"focusroomgo/internal/http/http_server"
	"focusroomgo/internal/redis/redis_client"
	"focusroomgo/internal/redis/watcher/presencewatcher"
	"focusroomgo/internal/services/presence"
	"focusroomgo/internal/services/room"
	"focusroomgo/internal/services/user"
	"focusroomgo/internal/sse"
	"focusroomgo/internal/syncfocus"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis (presence, rooms, playback cache, focus stream)
	redisClient, err := redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	// 4. Postgres db client (user directory, focus logs)
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	// 5. Services
	presenceSvc := presence.NewPresenceService(redisClient)
	roomSvc := room.NewRoomService(redisClient)
	userSvc := user.NewUserService(pgDb)

	// 6. Connection registry + push server; the registry lives for the whole
	// process and is drained on shutdown
	registry := sse.NewRegistry()
	sseSrv := sse.NewSseServer(registry, presenceSvc, roomSvc)

	// 7. Background: 30 s heartbeat fan-out + presence refresh
	sseSrv.RunHeartbeat(ctx)

	// 8. Background: expired-presence watcher evicts ghosts from rooms
	go presencewatcher.Run(ctx, redisClient, sseSrv)

	// 9. Background: focus-session persister
	syncfocus.Run(ctx, redisClient, pgDb)

	// 10. HTTP + SSE/WS server
	httpServer := http_server.NewHttpServer(cfg.HttpServerPort, sseSrv, roomSvc, userSvc, presenceSvc, redisClient)
	go func() {
		<-ctx.Done()
		registry.Drain()
		_ = httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
