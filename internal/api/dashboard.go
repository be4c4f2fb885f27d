package api

import (
	"errors"
	"net/http"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the overview widgets on the dashboard landing page.
type DashboardHandler struct {
	store *store.Store
}

func NewDashboardHandler(st *store.Store) *DashboardHandler {
	return &DashboardHandler{store: st}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	tenantID := auth.TenantID(c)

	tenant, err := h.store.GetTenant(tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	leadCount, err := h.store.CountLeads(tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	products, err := h.store.ListProducts(tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lead_count":              leadCount,
		"product_count":           len(products),
		"subscription_status":     tenant.SubscriptionStatus,
		"trial_expires_at":        tenant.TrialExpiresAt,
		"subscription_expires_at": tenant.SubscriptionExpiresAt,
		"channel_linked":          tenant.WAPhoneNumberID != "",
	})
}
