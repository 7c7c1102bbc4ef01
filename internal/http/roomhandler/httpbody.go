package roomhandler

// FirstState is returned as currentMusic when nothing is playing, so clients
// can tell "nothing shared yet / paused" apart from a missing field.
const FirstState = "FIRST_STATE"

type SharePlaybackBody struct {
	TrackID    string `json:"trackId"    binding:"required" example:"abc123"`
	IsPlaying  bool   `json:"isPlaying"`
	ProgressMs int64  `json:"progressMs" binding:"gte=0"    example:"5000"`
	OwnerID    string `json:"ownerId"    example:"alice"`
} // @name SharePlaybackRequest

type JoinRoomResponse struct {
	Message string `json:"message"`
	// CurrentMusic is either a playback-state object or the string "FIRST_STATE".
	CurrentMusic any `json:"currentMusic"`
} // @name JoinRoomResponse

type MessageResponse struct {
	Message string `json:"message"`
} // @name MessageResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
