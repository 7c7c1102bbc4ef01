package focushandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"focusroomgo/internal/http/identity"
	"focusroomgo/internal/syncfocus"
)

type Handler struct {
	rdc *redis.Client
}

func New(rdc *redis.Client) *Handler { return &Handler{rdc: rdc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/focus/end", h.end)
}

type EndFocusBody struct {
	StartAt  time.Time `json:"startAt"  binding:"required" example:"2025-07-27T16:05:05Z"`
	TrackIDs []string  `json:"trackIds"`
} // @name EndFocusRequest

type ErrorResponse struct {
	Error string `json:"error"`
} // @name FocusErrorResponse

// @Summary		Finish a focus session
// @Description	Queues the finished session for persistence; the recorder tails the stream asynchronously.
// @Tags			Focus
// @Param			X-User-Id	header	string			true	"Caller identity"
// @Param			body		body	EndFocusBody	true	"Session payload"
// @Success		202
// @Failure		400	{object}	ErrorResponse
// @Router			/focus/end [post]
func (h *Handler) end(ginCtx *gin.Context) {
	var body EndFocusBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	userID := identity.FromContext(ginCtx)
	endAt := time.Now().UTC()
	durationSec := int64(endAt.Sub(body.StartAt.UTC()).Seconds())
	if durationSec < 0 {
		durationSec = 0
	}

	err := h.rdc.XAdd(ginCtx.Request.Context(), &redis.XAddArgs{
		Stream: syncfocus.Stream,
		Values: map[string]any{
			"uid":    userID,
			"start":  body.StartAt.UTC().Unix(),
			"end":    endAt.Unix(),
			"dur":    durationSec,
			"tracks": strings.Join(body.TrackIDs, ","),
		},
	}).Err()
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	ginCtx.JSON(http.StatusAccepted, gin.H{"durationSec": durationSec})
}
