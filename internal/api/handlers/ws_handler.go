package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/yoockh/seopilot/internal/services"
	"github.com/yoockh/seopilot/internal/workers"
)

type WSHandler struct {
	jobs     services.JobService
	redis    *redis.Client
	upgrader websocket.Upgrader
}

func NewWSHandler(jobs services.JobService, rdb *redis.Client) *WSHandler {
	return &WSHandler{
		jobs:  jobs,
		redis: rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

// JobProgress streams draft_created events of one job until the client
// disconnects.
func (h *WSHandler) JobProgress(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := h.jobs.Get(c.Request.Context(), jobID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, workers.ProgressChannel(jobID))
	defer pubsub.Close()

	// the client sends nothing; reading only detects disconnects
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()
	msgs := pubsub.Channel()

	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			wc.mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			wc.mu.Unlock()
			if err != nil {
				return
			}
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if err := wc.writeText([]byte(m.Payload)); err != nil {
				return
			}
		}
	}
}
