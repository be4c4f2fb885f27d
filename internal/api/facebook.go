package api

import (
	"errors"
	"net/http"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/meta"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FacebookHandler links a tenant's WhatsApp channel through the Meta graph.
type FacebookHandler struct {
	graph *meta.GraphClient
	store *store.Store
}

func NewFacebookHandler(graph *meta.GraphClient, st *store.Store) *FacebookHandler {
	return &FacebookHandler{graph: graph, store: st}
}

type facebookAuthRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// Link validates the OAuth token, discovers the linked WhatsApp channel and
// persists its credentials onto the tenant.
func (h *FacebookHandler) Link(c *gin.Context) {
	var req facebookAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.graph.VerifyToken(ctx, req.AccessToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	discovery, err := h.graph.DiscoverChannel(ctx, req.AccessToken)
	if err != nil {
		if errors.Is(err, meta.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":  "no linked WhatsApp channel found",
				"traces": discovery.Traces,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tenantID := auth.TenantID(c)
	if err := h.store.SetChannelCredentials(tenantID, discovery.Channel.PhoneNumberID, req.AccessToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id":       tenantID,
		"phone_number_id": discovery.Channel.PhoneNumberID,
	}).Info("channel linked")
	c.JSON(http.StatusOK, gin.H{"channel": discovery.Channel})
}
