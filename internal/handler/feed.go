package handler

import (
	"net/http"

	"github.com/CivicGate/civigate/internal/pkg/logger"
	"github.com/CivicGate/civigate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin control sits at the gateway with the rest of auth.
	CheckOrigin: func(*http.Request) bool { return true },
}

type FeedHandler struct {
	feed *service.Feed
}

func NewFeedHandler(feed *service.Feed) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Stream upgrades the connection and attaches it to the new-report
// fan-out. The read loop only exists to notice the client going away.
func (h *FeedHandler) Stream(c *gin.Context) {
	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("feed: upgrade failed", "error", err)
		return
	}

	h.feed.Register(conn)
	go func() {
		defer h.feed.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
