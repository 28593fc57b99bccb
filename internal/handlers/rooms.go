// internal/handlers/rooms.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/jason-s-yu/partyhall/internal/bus"
	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/jason-s-yu/partyhall/internal/room"
	"github.com/sirupsen/logrus"
)

var errWrongRoom = game.NewError(game.CodeUnauthorized, "your session belongs to another room")

type okBody struct {
	OK bool `json:"ok"`
}

func roomCode(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
}

// caller authenticates the request and checks the caller's session is bound to the room
// in the path. It returns the caller's player id.
func caller(svc *room.Service, r *http.Request) (string, error) {
	claims, err := authenticate(r)
	if err != nil {
		return "", err
	}
	sess, err := svc.Session(r.Context(), claims.PlayerID)
	if err != nil {
		return "", err
	}
	if sess.RoomCode != roomCode(r) {
		return "", errWrongRoom
	}
	return claims.PlayerID, nil
}

type createRoomRequest struct {
	PlayerName string `json:"playerName"`
	GameID     string `json:"gameId"`
}

// CreateRoomHandler opens a room and seats the caller as its owner.
func CreateRoomHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, logger, r, err)
			return
		}
		joined, err := svc.CreateRoom(r.Context(), req.PlayerName, req.GameID)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		if err := setSessionCookie(w, joined.PlayerID, joined.Room.RoomCode); err != nil {
			writeError(w, logger, r, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, joined)
	}
}

type joinRoomRequest struct {
	PlayerName string `json:"playerName"`
}

// JoinRoomHandler seats the caller in an existing room.
func JoinRoomHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRoomRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, logger, r, err)
			return
		}
		joined, err := svc.JoinRoom(r.Context(), roomCode(r), req.PlayerName)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		if err := setSessionCookie(w, joined.PlayerID, joined.Room.RoomCode); err != nil {
			writeError(w, logger, r, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, joined)
	}
}

// LeaveRoomHandler removes the caller from the room and clears their cookie.
func LeaveRoomHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := caller(svc, r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		if err := svc.LeaveRoom(r.Context(), roomCode(r), playerID); err != nil {
			writeError(w, logger, r, err)
			return
		}
		clearSessionCookie(w)
		writeJSON(w, logger, http.StatusOK, okBody{OK: true})
	}
}

// StartGameHandler starts the game. Owner only.
func StartGameHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := caller(svc, r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		if err := svc.StartGame(r.Context(), roomCode(r), playerID); err != nil {
			writeError(w, logger, r, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, okBody{OK: true})
	}
}

// ActionHandler dispatches one game or lobby action for the caller.
func ActionHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := caller(svc, r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		var action models.GameAction
		if err := decodeBody(r, &action); err != nil {
			writeError(w, logger, r, err)
			return
		}
		if err := svc.Dispatch(r.Context(), roomCode(r), playerID, action); err != nil {
			writeError(w, logger, r, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, okBody{OK: true})
	}
}

// HeartbeatHandler keeps the caller's seat alive and drives timers for the room.
func HeartbeatHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := caller(svc, r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		if err := svc.Heartbeat(r.Context(), roomCode(r), playerID); err != nil {
			writeError(w, logger, r, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, okBody{OK: true})
	}
}

// GetRoomHandler returns the room as the caller may see it.
func GetRoomHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := caller(svc, r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		view, err := svc.View(r.Context(), roomCode(r), playerID)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, view)
	}
}

type sessionResponse struct {
	Session *models.Session `json:"session"`
	Room    *room.View      `json:"room"`
}

// SessionHandler lets a reloading client find its way back into its room.
func SessionHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := authenticate(r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		sess, err := svc.Session(r.Context(), claims.PlayerID)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		view, err := svc.View(r.Context(), sess.RoomCode, sess.PlayerID)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, sessionResponse{Session: sess, Room: view})
	}
}

type busAuthRequest struct {
	Channel string `json:"channel"`
}

type busAuthResponse struct {
	Authorized bool `json:"authorized"`
}

// BusAuthHandler decides whether the caller may subscribe to a bus channel.
func BusAuthHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := authenticate(r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		var req busAuthRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, logger, r, err)
			return
		}
		if req.Channel == "" {
			writeError(w, logger, r, game.ErrInvalidRequest("channel is required"))
			return
		}
		sess, err := svc.Session(r.Context(), claims.PlayerID)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		if !bus.AuthorizeChannel(sess, req.Channel) {
			writeJSON(w, logger, http.StatusForbidden, busAuthResponse{Authorized: false})
			return
		}
		writeJSON(w, logger, http.StatusOK, busAuthResponse{Authorized: true})
	}
}

// ListGamesHandler lists the hostable games.
func ListGamesHandler(svc *room.Service, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, svc.Games())
	}
}
