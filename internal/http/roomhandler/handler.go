package roomhandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"focusroomgo/internal/http/identity"
	"focusroomgo/internal/services/room"
	"focusroomgo/internal/services/user"
)

// Broadcaster fans an event out to a room's current members.
type Broadcaster interface {
	Broadcast(ctx context.Context, ownerID, eventName string, data any)
}

type Handler struct {
	rooms room.IRoomService
	users user.IUserService
	bc    Broadcaster
}

func New(rooms room.IRoomService, users user.IUserService, bc Broadcaster) *Handler {
	return &Handler{rooms: rooms, users: users, bc: bc}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/room/join/:ownerId", h.join)
	r.POST("/room/leave", h.leave)
	r.POST("/share/:ownerId", h.share)
}

// @Summary		Join a room
// @Description	Joins the caller to the owner's room and returns the music currently playing there.
// @Tags			Rooms
// @Param			ownerId		path		string	true	"Room owner ID"	default(alice)
// @Param			X-User-Id	header		string	true	"Caller identity"
// @Success		200			{object}	JoinRoomResponse
// @Failure		403			{object}	ErrorResponse
// @Failure		404			{object}	ErrorResponse
// @Router			/room/join/{ownerId} [post]
func (h *Handler) join(ginCtx *gin.Context) {
	ownerID := ginCtx.Param("ownerId")
	guestID := identity.FromContext(ginCtx)
	ctx := ginCtx.Request.Context()

	if _, err := h.users.LookupUser(ctx, ownerID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			ginCtx.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	ok, err := h.rooms.Join(ctx, ownerID, guestID)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if !ok {
		ginCtx.JSON(http.StatusForbidden, ErrorResponse{Error: room.ErrRoomFull.Error()})
		return
	}

	var currentMusic any = FirstState
	state, err := h.rooms.CurrentMusic(ctx, ownerID)
	if err != nil {
		// the join itself succeeded; degrade to the sentinel
		zap.L().Warn("join_current_music", zap.String("owner", ownerID), zap.Error(err))
	}
	if state != nil && state.IsPlaying {
		currentMusic = state
	}

	ginCtx.JSON(http.StatusOK, JoinRoomResponse{
		Message:      "joined room",
		CurrentMusic: currentMusic,
	})
}

// @Summary		Leave the current room
// @Description	Removes the caller from whichever room it is in. No-op when not in a room.
// @Tags			Rooms
// @Param			X-User-Id	header		string	true	"Caller identity"
// @Success		200			{object}	MessageResponse
// @Router			/room/leave [post]
func (h *Handler) leave(ginCtx *gin.Context) {
	guestID := identity.FromContext(ginCtx)

	if err := h.rooms.Leave(ginCtx.Request.Context(), guestID); err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, MessageResponse{Message: "left room"})
}

// @Summary		Share playback state
// @Description	Stores the owner's current playback state and pushes a music-sync event to room members.
// @Tags			Rooms
// @Param			ownerId		path	string				true	"Room owner ID"	default(alice)
// @Param			X-User-Id	header	string				true	"Caller identity"
// @Param			body		body	SharePlaybackBody	true	"Playback payload"
// @Success		200			{object}	MessageResponse
// @Failure		400			{object}	ErrorResponse
// @Router			/share/{ownerId} [post]
func (h *Handler) share(ginCtx *gin.Context) {
	var body SharePlaybackBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ownerID := ginCtx.Param("ownerId")
	ctx := ginCtx.Request.Context()

	state := room.PlaybackState{
		TrackID:    body.TrackID,
		IsPlaying:  body.IsPlaying,
		ProgressMs: body.ProgressMs,
		OwnerID:    ownerID,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := h.rooms.SetCurrentMusic(ctx, ownerID, state); err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.bc.Broadcast(ctx, ownerID, "music-sync", state)
	ginCtx.JSON(http.StatusOK, MessageResponse{Message: "playback shared"})
}
