package api

import (
	"errors"
	"net/http"

	"nuvio-server/internal/ai"
	"nuvio-server/internal/chat"
	"nuvio-server/internal/metrics"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the public chat-turn endpoint used by both the widget
// and the dashboard playground.
type ChatHandler struct {
	chat    *chat.Service
	metrics *metrics.Metrics
}

func NewChatHandler(chatSvc *chat.Service, m *metrics.Metrics) *ChatHandler {
	return &ChatHandler{chat: chatSvc, metrics: m}
}

type chatRequest struct {
	TenantID string    `json:"tenant_id" binding:"required"`
	Message  string    `json:"message" binding:"required"`
	History  []ai.Turn `json:"history"`
}

func (h *ChatHandler) HandleTurn(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.chat.HandleTurn(c.Request.Context(), req.TenantID, req.Message, req.History)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrTenantNotFound):
			h.count("not_found")
			c.JSON(http.StatusNotFound, gin.H{"error": "business not found"})
		case errors.Is(err, chat.ErrSubscriptionExpired):
			h.count("expired")
			c.JSON(http.StatusForbidden, gin.H{"error": "subscription expired"})
		default:
			h.count("error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.count("ok")
	c.JSON(http.StatusOK, result)
}

func (h *ChatHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.ChatRequests.WithLabelValues(status).Inc()
	}
}
