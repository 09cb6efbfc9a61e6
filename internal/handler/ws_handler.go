package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/middleware"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/service"
	ws "github.com/stemsi/edutrack-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams extraction job progress over WebSocket.
type WSHandler struct {
	extractionService *service.ExtractionService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(extractionService *service.ExtractionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		extractionService: extractionService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// JobStream godoc
// WS /ws/v1/extractions/:job_id/stream
// Sends the current job state, then every change until the job is final.
func (h *WSHandler) JobStream(c *gin.Context) {
	jobID, ok := uuidParam(c, "job_id")
	if !ok {
		return
	}
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	// Ownership is checked before the upgrade so a stranger gets a plain 404.
	if _, err := h.extractionService.GetJob(ctx, userID, jobID); err != nil {
		fail(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("user_id", userID).Str("job_id", jobID).Logger()

	sub := h.extractionService.Subscribe(ctx, jobID)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		ws.WriteError(conn, "subscription failed")
		return
	}

	// Read again after subscribing so no transition falls in between.
	job, err := h.extractionService.GetJob(ctx, userID, jobID)
	if err != nil {
		ws.WriteError(conn, "job unavailable")
		return
	}
	if err := ws.WriteStatus(conn, *job); err != nil {
		return
	}
	if job.Status.Terminal() {
		ws.CloseNormal(conn, "job finished")
		return
	}

	wsLog.Debug().Msg("Client subscribed")

	replies := make(chan interface{}, 4)
	closed := make(chan struct{})
	go readClient(conn, wsLog, replies, closed)

	updates := sub.Channel()
	for {
		select {
		case <-closed:
			return
		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}
		case msg, ok := <-updates:
			if !ok {
				return
			}
			var update model.ExtractionJob
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed job update")
				continue
			}
			if err := ws.WriteStatus(conn, update); err != nil {
				return
			}
			if update.Status.Terminal() {
				ws.CloseNormal(conn, "job finished")
				return
			}
		}
	}
}

// readClient answers client actions until the connection drops. Replies go
// through the writer loop; gorilla connections allow one writer at a time.
func readClient(conn *websocket.Conn, log zerolog.Logger, replies chan<- interface{}, closed chan<- struct{}) {
	defer close(closed)
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		default:
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		}

		select {
		case replies <- reply:
		default:
			log.Debug().Msg("Reply buffer full, dropping")
		}
	}
}
