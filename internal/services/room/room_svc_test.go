package room

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinIsIdempotent(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	mock.ExpectSIsMember("room:alice", "bob").SetVal(true)

	ok, err := svc.Join(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinFullRoomRejectedWithoutMutation(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	mock.ExpectSIsMember("room:alice", "guest11").SetVal(false)
	mock.ExpectSCard("room:alice").SetVal(MaxMembers)

	ok, err := svc.Join(context.Background(), "alice", "guest11")
	require.NoError(t, err)
	assert.False(t, ok)
	// no SADD / SET expectations: a full room must not be mutated
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRecordsMembershipAndLocation(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	mock.ExpectSIsMember("room:alice", "bob").SetVal(false)
	mock.ExpectSCard("room:alice").SetVal(3)
	mock.ExpectSAdd("room:alice", "bob").SetVal(1)
	mock.ExpectSet("user:location:bob", "alice", 0).SetVal("OK")

	ok, err := svc.Join(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveWithoutLocationIsNoop(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	mock.ExpectGet("user:location:bob").RedisNil()

	require.NoError(t, svc.Leave(context.Background(), "bob"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRemovesMembershipAndLocation(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	mock.ExpectGet("user:location:bob").SetVal("alice")
	mock.ExpectSRem("room:alice", "bob").SetVal(1)
	mock.ExpectDel("user:location:bob").SetVal(1)

	require.NoError(t, svc.Leave(context.Background(), "bob"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembersSnapshot(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	mock.ExpectSMembers("room:alice").SetVal([]string{"bob", "carol"})

	members, err := svc.Members(context.Background(), "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, members)
}

func TestSetCurrentMusicStoresWithTTL(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	state := PlaybackState{
		TrackID:    "abc123",
		IsPlaying:  true,
		ProgressMs: 5000,
		OwnerID:    "alice",
		UpdatedAt:  time.Date(2025, 7, 27, 16, 5, 5, 0, time.UTC),
	}
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	mock.ExpectSet("room:music:alice", raw, MusicTTL).SetVal("OK")

	require.NoError(t, svc.SetCurrentMusic(context.Background(), "alice", state))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentMusicRoundTrip(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	state := PlaybackState{
		TrackID:    "abc123",
		IsPlaying:  true,
		ProgressMs: 5000,
		OwnerID:    "alice",
		UpdatedAt:  time.Date(2025, 7, 27, 16, 5, 5, 0, time.UTC),
	}
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	mock.ExpectGet("room:music:alice").SetVal(string(raw))

	got, err := svc.CurrentMusic(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state, *got)
}

func TestCurrentMusicExpiredIsAMiss(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	mock.ExpectGet("room:music:alice").RedisNil()

	got, err := svc.CurrentMusic(context.Background(), "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCurrentMusicCorruptPayloadIsAMiss(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	svc := NewRoomService(rdc)

	mock.ExpectGet("room:music:alice").SetVal("{not json")

	got, err := svc.CurrentMusic(context.Background(), "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}
