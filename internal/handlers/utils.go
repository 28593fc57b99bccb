package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jason-s-yu/partyhall/internal/auth"
	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/sirupsen/logrus"
)

const authCookie = "auth_token"

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 64 << 10

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	for _, part := range strings.Split(cookieHeader, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && name == cookieName {
			return value
		}
	}
	return ""
}

// authenticate resolves the caller from the auth_token cookie.
func authenticate(r *http.Request) (*auth.SessionClaims, error) {
	token := extractCookieToken(r.Header.Get("Cookie"), authCookie)
	if token == "" {
		return nil, game.NewError(game.CodeUnauthorized, "missing auth_token")
	}
	claims, err := auth.AuthenticateJWT(token)
	if err != nil {
		return nil, game.NewError(game.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

// setSessionCookie mints a token for playerID in roomCode and attaches it to the response.
func setSessionCookie(w http.ResponseWriter, playerID, roomCode string) error {
	token, err := auth.CreateJWT(playerID, roomCode)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if auth.TOKEN_EXPIRE_TIME_SEC > 0 {
		cookie.Expires = time.Now().Add(time.Duration(auth.TOKEN_EXPIRE_TIME_SEC) * time.Second)
	}
	http.SetCookie(w, cookie)
	return nil
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: authCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return game.ErrInvalidRequest("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, logger *logrus.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).WithField("status", status).Warn("failed to write response body")
	}
}

type errorBody struct {
	Error string         `json:"error"`
	Code  game.ErrorCode `json:"code"`
}

// writeError answers a domain error with its own status and code. Anything else is an
// infrastructure fault: it is logged and answered with a bare 500.
func writeError(w http.ResponseWriter, logger *logrus.Logger, r *http.Request, err error) {
	if ge, ok := game.AsError(err); ok {
		writeJSON(w, logger, ge.Status, errorBody{Error: ge.Message, Code: ge.Code})
		return
	}
	logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	writeJSON(w, logger, http.StatusInternalServerError, errorBody{Error: "internal server error", Code: "INTERNAL"})
}
