package room

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisRoomKeyPrefix     = "room:"
	redisLocationKeyPrefix = "user:location:"
	redisMusicKeyPrefix    = "room:music:"

	// MaxMembers is a soft limit: the size check and the SADD are two separate
	// single-key calls, so concurrent joins can overshoot it by a small margin.
	MaxMembers = 10

	// MusicTTL keeps "now playing" short-lived on purpose. A room whose owner
	// stops re-sharing presents no stale track to new joiners.
	MusicTTL = 5 * time.Second
)

var ErrRoomFull = errors.New("room is full")

// PlaybackState is what a room owner is currently sharing.
type PlaybackState struct {
	TrackID    string    `json:"trackId"`
	IsPlaying  bool      `json:"isPlaying"`
	ProgressMs int64     `json:"progressMs"`
	OwnerID    string    `json:"ownerId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IRoomService tracks room membership (set per owner plus a reverse location
// index per guest) and the room's ephemeral playback state.
type IRoomService interface {
	Join(ctx context.Context, ownerID, guestID string) (bool, error)
	Leave(ctx context.Context, guestID string) error
	Members(ctx context.Context, ownerID string) ([]string, error)
	SetCurrentMusic(ctx context.Context, ownerID string, state PlaybackState) error
	CurrentMusic(ctx context.Context, ownerID string) (*PlaybackState, error)
}

type roomService struct {
	rdc *redis.Client
}

func NewRoomService(rdc *redis.Client) IRoomService {
	return &roomService{rdc: rdc}
}

// Join adds guestID to ownerID's room and records the guest's location.
// Returns false without mutation when the room is at capacity. Joining a room
// you are already in is a successful no-op.
func (svc *roomService) Join(ctx context.Context, ownerID, guestID string) (bool, error) {
	roomKey := redisRoomKeyPrefix + ownerID

	isMember, err := svc.rdc.SIsMember(ctx, roomKey, guestID).Result()
	if err != nil {
		return false, err
	}
	if isMember {
		return true, nil
	}

	size, err := svc.rdc.SCard(ctx, roomKey).Result()
	if err != nil {
		return false, err
	}
	if size >= MaxMembers {
		zap.L().Warn("room_full", zap.String("owner", ownerID), zap.String("guest", guestID))
		return false, nil
	}

	if err := svc.rdc.SAdd(ctx, roomKey, guestID).Err(); err != nil {
		return false, err
	}
	if err := svc.rdc.Set(ctx, redisLocationKeyPrefix+guestID, ownerID, 0).Err(); err != nil {
		return false, err
	}

	zap.L().Info("room_join",
		zap.String("owner", ownerID),
		zap.String("guest", guestID),
		zap.Int64("members", size+1),
	)
	return true, nil
}

// Leave removes guestID from whichever room the location index says it is in.
// A guest with no location entry is a no-op.
func (svc *roomService) Leave(ctx context.Context, guestID string) error {
	locationKey := redisLocationKeyPrefix + guestID

	ownerID, err := svc.rdc.Get(ctx, locationKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := svc.rdc.SRem(ctx, redisRoomKeyPrefix+ownerID, guestID).Err(); err != nil {
		return err
	}
	if err := svc.rdc.Del(ctx, locationKey).Err(); err != nil {
		return err
	}

	zap.L().Info("room_leave", zap.String("owner", ownerID), zap.String("guest", guestID))
	return nil
}

// Members returns a point-in-time snapshot of the room. Concurrent joins and
// leaves may make it stale by the time the caller iterates it.
func (svc *roomService) Members(ctx context.Context, ownerID string) ([]string, error) {
	return svc.rdc.SMembers(ctx, redisRoomKeyPrefix+ownerID).Result()
}

func (svc *roomService) SetCurrentMusic(ctx context.Context, ownerID string, state PlaybackState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		// encode failure degrades to "nothing playing", never to a crash
		zap.L().Error("music_encode_failed", zap.String("owner", ownerID), zap.Error(err))
		return nil
	}
	return svc.rdc.Set(ctx, redisMusicKeyPrefix+ownerID, raw, MusicTTL).Err()
}

// CurrentMusic returns nil when nothing is cached, the entry expired, or the
// cached payload fails to decode (logged, treated as a miss).
func (svc *roomService) CurrentMusic(ctx context.Context, ownerID string) (*PlaybackState, error) {
	raw, err := svc.rdc.Get(ctx, redisMusicKeyPrefix+ownerID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &PlaybackState{}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		zap.L().Error("music_decode_failed", zap.String("owner", ownerID), zap.Error(err))
		return nil, nil
	}
	return state, nil
}
