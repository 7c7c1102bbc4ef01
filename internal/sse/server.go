// Package sse implements the realtime push subsystem: the connection
// registry, the event-stream and websocket push channels, room broadcast
// fan-out, the heartbeat loop, and the cleanup cascade that ties them
// together.
package sse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"focusroomgo/internal/services/presence"
	"focusroomgo/internal/services/room"
)

const cleanupTimeout = 3 * time.Second

type SseServer struct {
	registry *Registry
	presence presence.IPresenceService
	rooms    room.IRoomService
}

func NewSseServer(registry *Registry, presenceSvc presence.IPresenceService, roomSvc room.IRoomService) *SseServer {
	return &SseServer{
		registry: registry,
		presence: presenceSvc,
		rooms:    roomSvc,
	}
}

// ---------------------------------------------------------------------------
//  Public: Gin entry points
// ---------------------------------------------------------------------------

// Handle serves GET /connect/:userId as a long-lived event stream.
func (s *SseServer) Handle(ginCtx *gin.Context) {
	userID := ginCtx.Param("userId")
	if userID == "" {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	var conn *sseConn
	conn = newSSEConn(func(o Outcome) {
		zap.L().Info("sse_closed", zap.String("user", userID), zap.Stringer("outcome", o))
		s.cleanupConn(userID, conn)
	})

	s.subscribe(ginCtx.Request.Context(), userID, conn)

	ginCtx.Writer.Header().Set("Cache-Control", "no-cache")

	clientGone := ginCtx.Request.Context().Done()
	ginCtx.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case <-conn.done:
			return false
		case ev := <-conn.events:
			ginCtx.SSEvent(ev.Name, ev.Data)
			return true
		}
	})

	conn.Close(streamOutcome(ginCtx.Request.Context()))
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true }, // dev-only
}

// HandleWS serves GET /ws?user_id=... with the same event contract over a
// websocket.
func (s *SseServer) HandleWS(ginCtx *gin.Context) {
	userID := ginCtx.Query("user_id")
	if userID == "" {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws_accept", zap.Error(err))
		return
	}

	var conn *wsConn
	conn = newWSConn(rawConn, func(o Outcome) {
		zap.L().Info("ws_closed", zap.String("user", userID), zap.Stringer("outcome", o))
		s.cleanupConn(userID, conn)
	})

	s.subscribe(ginCtx.Request.Context(), userID, conn)

	go conn.readLoop()
	go conn.pingLoop()
}

// ---------------------------------------------------------------------------
//  Cleanup cascade
// ---------------------------------------------------------------------------

// Cleanup tears down everything a dead connection may have left behind:
// registry entry, presence record, room membership and location. Safe to call
// any number of times for the same user.
func (s *SseServer) Cleanup(userID string) {
	s.registry.Remove(userID)
	s.finishCleanup(userID)
}

// cleanupConn is the terminal-callback flavour of Cleanup: it only cascades
// while c is still the registered channel, so a stale connection dying late
// cannot evict the session that replaced it.
func (s *SseServer) cleanupConn(userID string, c Conn) {
	if !s.registry.removeIf(userID, c) {
		return
	}
	s.finishCleanup(userID)
}

func (s *SseServer) finishCleanup(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := s.presence.Clear(ctx, userID); err != nil {
		zap.L().Warn("cleanup_presence", zap.String("user", userID), zap.Error(err))
	}
	if err := s.rooms.Leave(ctx, userID); err != nil {
		zap.L().Warn("cleanup_room", zap.String("user", userID), zap.Error(err))
	}
	zap.L().Info("cleanup_done", zap.String("user", userID))
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *SseServer) subscribe(ctx context.Context, userID string, conn Conn) {
	s.registry.Add(userID, conn)

	if err := s.presence.MarkOnline(ctx, userID); err != nil {
		zap.L().Warn("presence_mark", zap.String("user", userID), zap.Error(err))
	}

	_ = conn.Send(Event{Name: "connect", Data: "Welcome!"})
}

func streamOutcome(ctx context.Context) Outcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return OutcomeTimeout
	}
	return OutcomeComplete
}
