package presencewatcher

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cleaner runs the connection cleanup cascade for one user.
type Cleaner interface {
	Cleanup(userID string)
}

const statusKeyPrefix = "status:"

// Run listens to key-expiry events for presence records and evicts the
// expired user from any room it still occupies. Catches ghosts whose owning
// process died before its own cleanup could run.
// Run must be started once at service boot.
func Run(ctx context.Context, rdb *redis.Client, cleaner Cleaner) {
	_ = rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
	ps := rdb.PSubscribe(ctx, "__keyevent@*__:expired")
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-ps.Channel():
			if !strings.HasPrefix(m.Payload, statusKeyPrefix) {
				continue
			}
			userID := strings.TrimPrefix(m.Payload, statusKeyPrefix)
			zap.L().Info("presence_expired", zap.String("user", userID))
			cleaner.Cleanup(userID)
		}
	}
}
