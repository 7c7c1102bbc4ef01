package sse

import (
	"context"

	"go.uber.org/zap"
)

// Send pushes one event to a single user. No-op when the user has no open
// channel; a transport failure is swallowed after running the cleanup cascade
// (fire-and-forget, the caller never observes delivery errors).
func (s *SseServer) Send(userID string, ev Event) {
	conn, ok := s.registry.Get(userID)
	if !ok {
		return
	}
	if err := conn.Send(ev); err != nil {
		zap.L().Warn("push_send_failed",
			zap.String("user", userID),
			zap.String("event", ev.Name),
			zap.Error(err),
		)
		s.cleanupConn(userID, conn)
	}
}

// Broadcast fans an event out to the current members of ownerID's room,
// excluding the owner itself. Each delivery is independent: one member's
// failure (and its cleanup) does not stop the rest.
func (s *SseServer) Broadcast(ctx context.Context, ownerID, eventName string, data any) {
	members, err := s.rooms.Members(ctx, ownerID)
	if err != nil {
		zap.L().Warn("broadcast_members", zap.String("owner", ownerID), zap.Error(err))
		return
	}

	zap.L().Debug("broadcast",
		zap.String("owner", ownerID),
		zap.String("event", eventName),
		zap.Int("members", len(members)),
	)
	for _, memberID := range members {
		if memberID == ownerID {
			continue
		}
		s.Send(memberID, Event{Name: eventName, Data: data})
	}
}
