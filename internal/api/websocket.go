package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"immopro/server/internal/listing"
	"immopro/server/internal/models"
	"immopro/server/internal/session"
)

// LiveMessage is sent by the client: either one field update or a listing patch
type LiveMessage struct {
	Field string         `json:"field,omitempty"`
	Value interface{}    `json:"value,omitempty"`
	Patch *listing.Patch `json:"patch,omitempty"`
}

// LiveReply carries the recomputed report or the reason the message was rejected
type LiveReply struct {
	Report *models.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowAll || origin == "" || allowed[origin]
		},
	}
}

// LiveSession streams a report after every edit made over the socket
func (h *Handler) LiveSession(upgrader websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		s, err := h.sessions.Get(id)
		if err != nil {
			h.sessionError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.WithError(err).Error("Websocket upgrade failed")
			return
		}
		defer conn.Close()

		log := h.logger.WithField("session_id", id)
		log.Info("Live session connected")

		current := s.Report()
		if err := conn.WriteJSON(LiveReply{Report: &current}); err != nil {
			log.WithError(err).Debug("Write failed")
			return
		}

		for {
			var msg LiveMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.WithError(err).Warn("Live session read failed")
				}
				break
			}

			reply, fatal := h.handleLiveMessage(id, msg, log)
			if err := conn.WriteJSON(reply); err != nil {
				log.WithError(err).Debug("Write failed")
				break
			}
			if fatal {
				break
			}
		}
		log.Info("Live session disconnected")
	}
}

// handleLiveMessage applies one message. fatal is set when the session is
// gone and the socket should close.
func (h *Handler) handleLiveMessage(id string, msg LiveMessage, log *logrus.Entry) (reply LiveReply, fatal bool) {
	var (
		report models.Report
		err    error
	)
	switch {
	case msg.Patch != nil:
		report, err = h.sessions.ApplyListing(id, *msg.Patch)
	case msg.Field != "":
		report, err = h.sessions.Update(id, msg.Field, msg.Value)
	default:
		return LiveReply{Error: "message needs a field or a patch"}, false
	}

	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return LiveReply{Error: "Session not found"}, true
		}
		log.WithError(err).Debug("Live update rejected")
		return LiveReply{Error: err.Error()}, false
	}
	return LiveReply{Report: &report}, false
}
