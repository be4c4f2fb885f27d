package api

import (
	"errors"
	"net/http"
	"strconv"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
)

// AuditHandler serves the activity trail and whitelist management.
type AuditHandler struct {
	store *store.Store
}

func NewAuditHandler(st *store.Store) *AuditHandler {
	return &AuditHandler{store: st}
}

func (h *AuditHandler) ListActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.store.ListActivity(auth.TenantID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *AuditHandler) ListWhitelist(c *gin.Context) {
	entries, err := h.store.ListWhitelist(auth.TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

type whitelistRequest struct {
	Phone string `json:"phone" binding:"required"`
	Note  string `json:"note"`
}

func (h *AuditHandler) CreateWhitelistEntry(c *gin.Context) {
	var req whitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := &store.WhitelistEntry{
		TenantID: auth.TenantID(c),
		Phone:    req.Phone,
		Note:     req.Note,
	}
	if err := h.store.CreateWhitelistEntry(entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *AuditHandler) DeleteWhitelistEntry(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.store.DeleteWhitelistEntry(auth.TenantID(c), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "whitelist entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "whitelist entry deleted"})
}
