// internal/handlers/relay.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/partyhall/internal/bus"
	"github.com/jason-s-yu/partyhall/internal/middleware"
	"github.com/jason-s-yu/partyhall/internal/room"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// relaySubprotocol is the websocket subprotocol clients of the relay must speak.
const relaySubprotocol = "partyhall"

const (
	relayPingInterval = 30 * time.Second
	relayWriteTimeout = 5 * time.Second
)

// RoomWSHandler relays the room's public channel and the caller's private channel to a
// websocket. The relay is read-only: actions still go through the HTTP endpoints, so any
// server instance can serve any client.
func RoomWSHandler(logger *logrus.Logger, svc *room.Service, rdb *redis.Client, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := caller(svc, r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		code := roomCode(r)

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{relaySubprotocol},
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "relay finished")

		if c.Subprotocol() != relaySubprotocol {
			c.Close(BadSubprotocolError, "client must speak the "+relaySubprotocol+" subprotocol")
			return
		}

		// CloseRead discards client frames and cancels ctx once the client goes away.
		ctx := c.CloseRead(r.Context())

		pubsub := rdb.Subscribe(ctx, bus.RoomChannel(code), bus.PrivateChannel(playerID))
		defer pubsub.Close()
		if _, err := pubsub.Receive(ctx); err != nil {
			logger.WithError(err).WithField("room", code).Warn("relay subscribe failed")
			c.Close(SubscribeFailedError, "could not subscribe to room events")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		err = relay(ctx, c, pubsub.Channel())
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		if ctx.Err() == nil {
			c.Close(websocket.StatusNormalClosure, "")
		}
	}
}

// relay forwards bus messages verbatim until ctx ends or a write fails.
func relay(ctx context.Context, c *websocket.Conn, msgs <-chan *redis.Message) error {
	ticker := time.NewTicker(relayPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, relayWriteTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			writeCtx, cancel := context.WithTimeout(ctx, relayWriteTimeout)
			err := c.Write(writeCtx, websocket.MessageText, []byte(msg.Payload))
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
