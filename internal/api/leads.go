package api

import (
	"errors"
	"net/http"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
)

// LeadHandler serves the dashboard's lead list and lifecycle actions. Leads
// are only ever created by the chat path.
type LeadHandler struct {
	store *store.Store
}

func NewLeadHandler(st *store.Store) *LeadHandler {
	return &LeadHandler{store: st}
}

func (h *LeadHandler) ListLeads(c *gin.Context) {
	leads, err := h.store.ListLeads(auth.TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, leads)
}

type leadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted converted lost"`
}

func (h *LeadHandler) UpdateLeadStatus(c *gin.Context) {
	var req leadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdateLeadStatus(auth.TenantID(c), c.Param("id"), req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "lead updated"})
}

func (h *LeadHandler) DeleteLead(c *gin.Context) {
	if err := h.store.DeleteLead(auth.TenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "lead deleted"})
}
