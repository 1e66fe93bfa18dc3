package api

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/middleware"
	"github.com/medemi-triage-server/internal/service"
)

const (
	socketWriteWait   = 10 * time.Second
	socketIdleTimeout = 10 * time.Minute
	socketMaxMessage  = 16 << 10
)

// Socket message types.
const (
	SocketAnswer = "answer"
	SocketTurn   = "turn"
	SocketError  = "error"
)

// SocketRequest is a client frame on the dialogue socket.
type SocketRequest struct {
	Type   string `json:"type"`
	Answer string `json:"answer"`
}

// SocketEvent is a server frame on the dialogue socket.
type SocketEvent struct {
	Type  string              `json:"type"`
	Turn  *service.TurnResult `json:"turn,omitempty"`
	Error *domain.TriageError `json:"error,omitempty"`
}

// handleSessionSocket runs the dialogue of an existing session over a
// websocket. The current turn is sent on connect; each answer frame is
// followed by the next turn. The server closes the socket once the
// assessment has been delivered.
func (s *Server) handleSessionSocket(c *gin.Context) {
	sessionID := c.Param("id")
	ctx := c.Request.Context()

	current, err := s.deps.Triage.Resume(ctx, sessionID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(socketMaxMessage)
	logger := s.logger.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"correlation_id": middleware.GetCorrelationID(c),
	})
	logger.Info("Dialogue socket opened")

	if err := s.writeEvent(conn, SocketEvent{Type: SocketTurn, Turn: current}); err != nil {
		return
	}

	for current.Assessment == nil {
		_ = conn.SetReadDeadline(time.Now().Add(socketIdleTimeout))

		var req SocketRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("Dialogue socket closed unexpectedly")
			}
			return
		}

		if req.Type != SocketAnswer {
			s.writeError(conn, c, domain.ErrInvalidInput, "Unsupported message type: "+req.Type)
			continue
		}

		turn, err := s.deps.Triage.SubmitAnswer(ctx, sessionID, req.Answer)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			_, code, message := classify(err)
			s.writeError(conn, c, code, message)
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrSessionComplete) {
				break
			}
			continue
		}

		current = turn
		if err := s.writeEvent(conn, SocketEvent{Type: SocketTurn, Turn: turn}); err != nil {
			return
		}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "dialogue complete"))
	logger.Info("Dialogue socket closed")
}

func (s *Server) writeEvent(conn *websocket.Conn, event SocketEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	if err := conn.WriteJSON(event); err != nil {
		s.logger.WithError(err).Debug("Websocket write failed")
		return err
	}
	return nil
}

func (s *Server) writeError(conn *websocket.Conn, c *gin.Context, code, message string) {
	_ = s.writeEvent(conn, SocketEvent{
		Type:  SocketError,
		Error: domain.NewTriageError(code, message, "", middleware.GetCorrelationID(c)),
	})
}
