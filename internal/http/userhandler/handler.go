package userhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"focusroomgo/internal/http/identity"
	"focusroomgo/internal/services/presence"
	"focusroomgo/internal/services/user"
)

type Handler struct {
	users    user.IUserService
	presence presence.IPresenceService
}

func New(users user.IUserService, presenceSvc presence.IPresenceService) *Handler {
	return &Handler{users: users, presence: presenceSvc}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.PUT("/user/nickname", h.changeNickname)
	r.GET("/presence/:userId", h.status)
}

type ErrorResponse struct {
	Error string `json:"error"`
} // @name UserErrorResponse

// @Summary		Change nickname
// @Description	Validates and updates the caller's nickname.
// @Tags			Users
// @Param			X-User-Id	header	string	true	"Caller identity"
// @Param			nickname	query	string	true	"New nickname"
// @Success		200
// @Failure		400	{object}	ErrorResponse
// @Failure		409	{object}	ErrorResponse
// @Router			/user/nickname [put]
func (h *Handler) changeNickname(ginCtx *gin.Context) {
	userID := identity.FromContext(ginCtx)
	nickname := ginCtx.Query("nickname")

	err := h.users.UpdateNickname(ginCtx.Request.Context(), userID, nickname)
	switch {
	case err == nil:
		ginCtx.Status(http.StatusOK)
	case errors.Is(err, user.ErrNicknameInvalid):
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrNicknameTaken):
		ginCtx.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrUserNotFound):
		ginCtx.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// @Summary		Check presence
// @Description	Reports whether a user has a live presence record.
// @Tags			Users
// @Param			userId		path	string	true	"User ID"	default(alice)
// @Param			X-User-Id	header	string	true	"Caller identity"
// @Success		200	{object}	map[string]bool
// @Router			/presence/{userId} [get]
func (h *Handler) status(ginCtx *gin.Context) {
	online, err := h.presence.IsOnline(ginCtx.Request.Context(), ginCtx.Param("userId"))
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, gin.H{"online": online})
}
