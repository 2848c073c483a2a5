package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"go-cosmetics/internal/metrics"
	"go-cosmetics/internal/models"
	"go-cosmetics/internal/services"
)

const chatReadLimit = 4096

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type ChatHandler struct {
	chatService *services.ChatService
	log         logrus.FieldLogger
}

func NewChatHandler(chatService *services.ChatService, log logrus.FieldLogger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

// GET /api/chat/ws
// Each text frame is a ChatRequest; each answer is a ChatReply.
func (h *ChatHandler) WebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("chat upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(chatReadLimit)

	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.WithError(err).Debug("chat connection closed")
			}
			return
		}
		metrics.RecordChatMessage()

		reply := models.ChatReply{
			Reply:     h.chatService.Reply(req),
			Timestamp: time.Now(),
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

// POST /api/chat/summarize
func (h *ChatHandler) Summarize(c *gin.Context) {
	var req models.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	summary := h.chatService.Summarize(req.PreviousSummary, req.Messages)
	c.JSON(http.StatusOK, gin.H{"data": models.SummarizeResponse{Summary: summary}})
}
