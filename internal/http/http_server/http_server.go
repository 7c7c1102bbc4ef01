package http_server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files

	"focusroomgo/internal/http/focushandler"
	"focusroomgo/internal/http/identity"
	"focusroomgo/internal/http/roomhandler"
	"focusroomgo/internal/http/userhandler"
	"focusroomgo/internal/services/presence"
	"focusroomgo/internal/services/room"
	"focusroomgo/internal/services/user"
	"focusroomgo/internal/sse"
)

type httpServer struct {
	listenPort  uint16
	srv         http.Server
	ln          net.Listener
	sseSrv      *sse.SseServer
	roomSvc     room.IRoomService
	userSvc     user.IUserService
	presenceSvc presence.IPresenceService
	rdc         *redis.Client
}

func NewHttpServer(
	listenPort uint16,
	sseSrv *sse.SseServer,
	roomSvc room.IRoomService,
	userSvc user.IUserService,
	presenceSvc presence.IPresenceService,
	rdc *redis.Client,
) *httpServer {
	return &httpServer{
		listenPort:  listenPort,
		sseSrv:      sseSrv,
		roomSvc:     roomSvc,
		userSvc:     userSvc,
		presenceSvc: presenceSvc,
		rdc:         rdc,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// push channels: event-stream (identity in the path, like the web client
	// uses) and the websocket variant
	routerEngine.GET("/connect/:userId", h.sseSrv.Handle)
	routerEngine.GET("/ws", h.sseSrv.HandleWS)

	// REST API, caller identity resolved by the auth layer in front of us
	authed := routerEngine.Group("/", identity.Middleware())
	roomhandler.New(h.roomSvc, h.userSvc, h.sseSrv).Register(authed)
	userhandler.New(h.userSvc, h.presenceSvc).Register(authed)
	focushandler.New(h.rdc).Register(authed)

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	// not derived from the boot context: by the time Dispose runs that
	// context is already canceled and Shutdown would not wait at all
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn't finish in time
	}

	if ctx.Err() == context.DeadlineExceeded {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
		log.Println("shutdown timeout (10 s)")
	}

	return nil
}
