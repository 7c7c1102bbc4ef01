package sse

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// heartbeatInterval must stay below presence.OnlineTTL so one missed tick
// does not mark a healthy user offline.
const heartbeatInterval = 30 * time.Second

// RunHeartbeat starts the 30 s keep-alive loop: every open channel gets a
// "heartbeat" event and its presence TTL refreshed.
func (s *SseServer) RunHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.heartbeatOnce(ctx)
			}
		}
	}()
}

func (s *SseServer) heartbeatOnce(ctx context.Context) {
	s.registry.Range(func(userID string, conn Conn) bool {
		if err := conn.Send(Event{Name: "heartbeat", Data: "ping"}); err != nil {
			// one dead channel must not abort the pass for the others
			s.cleanupConn(userID, conn)
			return true
		}
		if err := s.presence.Refresh(ctx, userID); err != nil {
			zap.L().Warn("presence_refresh", zap.String("user", userID), zap.Error(err))
		}
		return true
	})
}
