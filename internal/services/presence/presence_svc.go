package presence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisStatusKeyPrefix = "status:"

	// OnlineTTL is 1.5x the heartbeat interval, so a user survives exactly
	// one missed tick before the record expires.
	OnlineTTL = 45 * time.Second

	statusOnline = "online"
)

// IPresenceService marks users as online with an expiring record. Existence of
// the record means a connection was opened or refreshed within the last TTL
// window; absence means the user is considered offline.
type IPresenceService interface {
	MarkOnline(ctx context.Context, userID string) error
	Refresh(ctx context.Context, userID string) error
	Clear(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

type presenceService struct {
	rdc *redis.Client
}

func NewPresenceService(rdc *redis.Client) IPresenceService {
	return &presenceService{rdc: rdc}
}

func (svc *presenceService) MarkOnline(ctx context.Context, userID string) error {
	return svc.rdc.Set(ctx, redisStatusKeyPrefix+userID, statusOnline, OnlineTTL).Err()
}

// Refresh resets the TTL without touching the value. A user whose record
// already expired is re-marked on the next MarkOnline, not here.
func (svc *presenceService) Refresh(ctx context.Context, userID string) error {
	return svc.rdc.Expire(ctx, redisStatusKeyPrefix+userID, OnlineTTL).Err()
}

func (svc *presenceService) Clear(ctx context.Context, userID string) error {
	return svc.rdc.Del(ctx, redisStatusKeyPrefix+userID).Err()
}

func (svc *presenceService) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := svc.rdc.Exists(ctx, redisStatusKeyPrefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
