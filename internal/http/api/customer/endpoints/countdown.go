package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/db"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
	"github.com/Nixie-Tech-LLC/perks/internal/watch"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// FrameSource streams the server-side countdown of a discount.
type FrameSource interface {
	Subscribe(id uuid.UUID) (<-chan watch.Frame, func())
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type countdownStream struct {
	discounts *service.Discounts
	frames    FrameSource
}

func newCountdownStream(discounts *service.Discounts, frames FrameSource) *countdownStream {
	return &countdownStream{discounts: discounts, frames: frames}
}

// GET /api/discounts/:id/countdown
//
// Sends one frame with the current countdown, then one per tick until the
// window opens. A discount with nothing to count down to gets a single frame
// and a normal close: arrived when it is valid now, otherwise no_eta with the
// reason.
func (s *countdownStream) serve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discount id"})
		return
	}

	// subscribe before evaluating so no frame between the two is lost
	frames, unsubscribe := s.frames.Subscribe(id)
	defer unsubscribe()

	st, err := s.discounts.Status(c, id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "discount not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not evaluate discount"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("discount_id", id.String()).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if st.Result.NextAvailableAt == nil {
		f := watch.Frame{Arrived: true}
		if !st.Result.IsValid {
			f = watch.Frame{NoETA: true, Reason: string(st.Result.Reason)}
		}
		_ = writeFrame(conn, f)
		closeNormally(conn)
		return
	}
	if err := writeFrame(conn, watch.Frame{Countdown: st.Result.Countdown}); err != nil {
		return
	}

	// the read pump only notices the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := writeFrame(conn, f); err != nil {
				log.Debug().Err(err).Str("discount_id", id.String()).Msg("countdown client write failed")
				return
			}
			if f.Arrived {
				closeNormally(conn)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, f watch.Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
