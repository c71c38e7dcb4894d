package handlers

import (
	"context"
	"net/http"
	"time"

	"bookinghub/middleware"
	"bookinghub/models"
	"bookinghub/services/booking"
	"bookinghub/services/realtime"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsSendBuffer = 64
)

// Stream frame types.
const (
	FrameSnapshot      = "snapshot"
	FrameBookingUpdate = "booking_update"
	FrameToast         = "toast"
	FrameStatus        = "status"
	FrameRefresh       = "refresh"
)

// StreamFrame is one server-to-client websocket message.
type StreamFrame struct {
	Type      string                 `json:"type"`
	Update    *models.BookingUpdate  `json:"update,omitempty"`
	Toast     *models.Toast          `json:"toast,omitempty"`
	Updates   []models.BookingUpdate `json:"updates,omitempty"`
	Connected *bool                  `json:"connected,omitempty"`
}

type RealtimeHandler struct {
	feed     realtime.Feed
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(feed realtime.Feed) *RealtimeHandler {
	return &RealtimeHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// StreamHandler handles GET /api/realtime/bookings. It runs one booking
// listener for the connection, scoped by the role query parameter (absent
// means bookings where the caller is any party), and
// forwards its updates and toasts. A {"type":"refresh"} message from the
// client re-reads the newest rows.
func (h *RealtimeHandler) StreamHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("authentication required"))
		return
	}
	scope, err := booking.ScopeFor(user, models.ListenerRole(c.Query("role")))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already answered the client.
		getLogger(c).Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	logger := getLogger(c).With(zap.String("userID", user.ID), zap.String("role", string(scope.Role)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan StreamFrame, wsSendBuffer)
	send := func(f StreamFrame) {
		select {
		case out <- f:
		default:
			logger.Warn("Dropping realtime frame for slow client", zap.String("type", f.Type))
		}
	}

	listener := realtime.NewListener(h.feed,
		realtime.NotifierFunc(func(_ context.Context, _ models.BookingScope, toast models.Toast) {
			send(StreamFrame{Type: FrameToast, Toast: &toast})
		}),
		func(u models.BookingUpdate) {
			send(StreamFrame{Type: FrameBookingUpdate, Update: &u})
		},
		logger,
	)

	writerDone := make(chan struct{})
	go writePump(conn, out, writerDone, logger)

	listener.StartScope(ctx, scope)
	connected := listener.Connected()
	send(StreamFrame{Type: FrameStatus, Connected: &connected})
	listener.Refresh(ctx)
	send(StreamFrame{Type: FrameSnapshot, Updates: listener.Updates()})

	readPump(conn, func(msgType string) {
		if msgType == FrameRefresh {
			listener.Refresh(ctx)
			send(StreamFrame{Type: FrameSnapshot, Updates: listener.Updates()})
		}
	})

	// Stop waits for the subscription goroutine, so nothing sends after it.
	listener.Stop()
	close(out)
	<-writerDone
	conn.Close()
	logger.Debug("Realtime stream closed")
}

func readPump(conn *websocket.Conn, onMessage func(msgType string)) {
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		onMessage(msg.Type)
	}
}

// writePump is the connection's only writer.
func writePump(conn *websocket.Conn, out <-chan StreamFrame, done chan<- struct{}, logger *zap.Logger) {
	defer close(done)
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				logger.Debug("Realtime write failed", zap.Error(err))
				drain(conn, out)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				drain(conn, out)
				return
			}
		}
	}
}

// drain closes a broken connection so the read loop ends, then consumes
// frames until the handler closes out.
func drain(conn *websocket.Conn, out <-chan StreamFrame) {
	conn.Close()
	for range out {
	}
}
