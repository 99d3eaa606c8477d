package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/mannasoumyadeep/fadu-backend/internal/game"
	"github.com/mannasoumyadeep/fadu-backend/internal/middleware"
	"github.com/mannasoumyadeep/fadu-backend/internal/models"
)

// GameWSHandler upgrades the connection for /ws/{room_code}/{player_id},
// joins (or reconnects) the player into the room and runs the read loop.
// All game errors are converted into targeted error replies; none of them
// close the connection or the session.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/ws/"), "/")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			http.Error(w, "path must be /ws/{room_code}/{player_id}", http.StatusBadRequest)
			return
		}
		roomCode, playerID := parts[0], parts[1]

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // adjust for production security
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", roomCode, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal error during handler exit")
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		s, err := gs.joinRoom(roomCode, playerID, c)
		if err != nil {
			sendError(c, logger, err)
			c.Close(websocket.StatusPolicyViolation, string(game.CodeOf(err)))
			return
		}
		// Join fires its events before the conn is registered; hand the
		// snapshot to the new transport directly.
		sendJSON(c, logger, game.GameEvent{Type: game.EventGameState, State: s.StateFor(playerID)})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		left := readGameMessages(ctx, c, gs, s, playerID, logger)

		gs.Conns.Unregister(roomCode, playerID, c)
		if left {
			c.Close(websocket.StatusNormalClosure, "left room")
		} else {
			gs.Registry.HandleDisconnect(playerID, c)
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// joinRoom admits the player into the session and only then exposes their
// connection to the room fan-out. A rejected join leaves the connection
// table untouched: a duplicate identity cannot displace the legitimate
// holder's transport.
func (gs *GameServer) joinRoom(roomCode, playerID string, c *websocket.Conn) (*game.Session, error) {
	s := gs.Registry.CreateOrGet(roomCode)
	bindBroadcasts(s, gs.Conns)
	if _, _, err := gs.Registry.Join(roomCode, playerID, c); err != nil {
		return nil, err
	}
	gs.Conns.Register(roomCode, playerID, c)
	return s, nil
}

// bindBroadcasts installs the connection-table fan-out on the session. The
// closures take only the ConnManager lock, so they are safe to call while
// the session lock is held.
func bindBroadcasts(s *game.Session, cm *ConnManager) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	code := s.Code
	if s.BroadcastFn == nil {
		s.BroadcastFn = func(ev game.GameEvent) { cm.Broadcast(code, ev) }
	}
	if s.BroadcastToPlayerFn == nil {
		s.BroadcastToPlayerFn = func(playerID string, ev game.GameEvent) { cm.SendTo(code, playerID, ev) }
	}
}

// readGameMessages pumps inbound actions until the connection drops or the
// player leaves voluntarily. Returns true on a voluntary leave.
func readGameMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, s *game.Session, playerID string, logger *logrus.Logger) bool {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for player %s in room %s", playerID, s.Code)
			} else {
				logger.Warnf("WebSocket read error for player %s in room %s: %v", playerID, s.Code, err)
			}
			return false
		}
		if msgType != websocket.MessageText {
			continue
		}

		var action models.GameAction
		if err := json.Unmarshal(data, &action); err != nil {
			sendError(c, logger, game.NewError(game.ErrValidation, "invalid JSON"))
			continue
		}
		logger.Debugf("action %q from player %s in room %s", action.ActionType, playerID, s.Code)

		switch action.ActionType {
		case "start_game":
			if err := s.Start(action.TotalRounds); err != nil {
				sendError(c, logger, err)
			}
		case "draw_card":
			if err := s.HandleDraw(playerID); err != nil {
				sendError(c, logger, err)
			}
		case "play_cards":
			if err := s.HandlePlay(playerID, action.CardIndices); err != nil {
				sendError(c, logger, err)
			}
		case "call":
			if err := s.HandleCall(playerID); err != nil {
				sendError(c, logger, err)
			}
		case "leave_room":
			gs.Registry.Leave(playerID)
			return true
		case "ping":
			sendJSON(c, logger, map[string]string{"type": "pong"})
		default:
			sendError(c, logger, game.NewError(game.ErrValidation, "unknown action %q", action.ActionType))
		}
	}
}

func sendError(c *websocket.Conn, logger *logrus.Logger, err error) {
	msg := err.Error()
	if ge, ok := err.(*game.Error); ok {
		msg = ge.Message
	}
	sendJSON(c, logger, map[string]interface{}{
		"type":    string(game.EventError),
		"code":    string(game.CodeOf(err)),
		"message": msg,
	})
}

func sendJSON(c *websocket.Conn, logger *logrus.Logger, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Errorf("failed to marshal WebSocket message: %v", err)
		return
	}
	writeWithTimeout(c, data, logger)
}
