package api

import (
	"errors"
	"net/http"
	"time"

	"nuvio-server/internal/cache"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const businessInfoTTL = 5 * time.Minute

// BusinessHandler serves the public business-info lookup the widget calls
// on load. Responses are cached; the cache is best-effort.
type BusinessHandler struct {
	store *store.Store
	cache *cache.Redis
}

func NewBusinessHandler(st *store.Store, redis *cache.Redis) *BusinessHandler {
	return &BusinessHandler{store: st, cache: redis}
}

type businessInfo struct {
	TenantID     string `json:"tenant_id"`
	BusinessName string `json:"business_name"`
	Description  string `json:"description"`
	Website      string `json:"website"`
}

func businessInfoKey(tenantID string) string {
	return "business-info:" + tenantID
}

func (h *BusinessHandler) GetBusinessInfo(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}

	var cached businessInfo
	hit, err := h.cache.GetJSON(c.Request.Context(), businessInfoKey(tenantID), &cached)
	if err != nil {
		logrus.WithError(err).Warn("business-info cache read failed")
	}
	if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	tenant, err := h.store.GetTenant(tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "business not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	info := businessInfo{
		TenantID:     tenant.ID,
		BusinessName: tenant.BusinessName,
		Description:  tenant.BusinessDescription,
		Website:      tenant.Website,
	}
	if err := h.cache.SetJSON(c.Request.Context(), businessInfoKey(tenantID), info, businessInfoTTL); err != nil {
		logrus.WithError(err).Warn("business-info cache write failed")
	}

	c.JSON(http.StatusOK, info)
}
