package api

import (
	"errors"
	"net/http"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/cache"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SettingsHandler serves the tenant's own profile. Writes invalidate the
// widget's cached business-info.
type SettingsHandler struct {
	store *store.Store
	cache *cache.Redis
}

func NewSettingsHandler(st *store.Store, redis *cache.Redis) *SettingsHandler {
	return &SettingsHandler{store: st, cache: redis}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	tenant, err := h.store.GetTenant(auth.TenantID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tenant)
}

type settingsRequest struct {
	BusinessName        string `json:"business_name" binding:"required"`
	BusinessDescription string `json:"business_description"`
	WhatsAppNumber      string `json:"whatsapp_number"`
	InstagramHandle     string `json:"instagram_handle"`
	Website             string `json:"website"`
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID := auth.TenantID(c)
	fields := map[string]interface{}{
		"business_name":        req.BusinessName,
		"business_description": req.BusinessDescription,
		"whats_app_number":     req.WhatsAppNumber,
		"instagram_handle":     req.InstagramHandle,
		"website":              req.Website,
	}
	if err := h.store.UpdateTenantProfile(tenantID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.cache.Delete(c.Request.Context(), businessInfoKey(tenantID)); err != nil {
		logrus.WithError(err).Warn("business-info cache invalidation failed")
	}
	c.JSON(http.StatusOK, gin.H{"status": "settings updated"})
}
