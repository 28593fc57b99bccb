// internal/handlers/routes.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/partyhall/internal/middleware"
	"github.com/jason-s-yu/partyhall/internal/room"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRouter wires every endpoint behind the request logger. rdb may be nil, in which case
// the websocket relay is not mounted.
func NewRouter(logger *logrus.Logger, svc *room.Service, rdb *redis.Client, originPatterns []string) http.Handler {
	mux := http.NewServeMux()

	// games
	mux.HandleFunc("GET /api/games", ListGamesHandler(svc, logger))

	// rooms
	mux.HandleFunc("POST /api/rooms", CreateRoomHandler(svc, logger))
	mux.HandleFunc("GET /api/rooms/{code}", GetRoomHandler(svc, logger))
	mux.HandleFunc("POST /api/rooms/{code}/join", JoinRoomHandler(svc, logger))
	mux.HandleFunc("POST /api/rooms/{code}/leave", LeaveRoomHandler(svc, logger))
	mux.HandleFunc("POST /api/rooms/{code}/start", StartGameHandler(svc, logger))
	mux.HandleFunc("POST /api/rooms/{code}/action", ActionHandler(svc, logger))
	mux.HandleFunc("POST /api/rooms/{code}/heartbeat", HeartbeatHandler(svc, logger))

	// session + bus
	mux.HandleFunc("GET /api/session", SessionHandler(svc, logger))
	mux.HandleFunc("POST /api/bus/auth", BusAuthHandler(svc, logger))

	// relay
	if rdb != nil {
		mux.HandleFunc("GET /ws/rooms/{code}", RoomWSHandler(logger, svc, rdb, originPatterns))
	}

	return middleware.LogMiddleware(logger)(mux)
}
