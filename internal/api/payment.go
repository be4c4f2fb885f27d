package api

import (
	"errors"
	"net/http"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/config"
	"nuvio-server/internal/payment"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PaymentHandler serves invoice creation and the gateway callbacks.
type PaymentHandler struct {
	cfg     *config.Config
	store   *store.Store
	payment *payment.Service
}

func NewPaymentHandler(cfg *config.Config, st *store.Store, svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{cfg: cfg, store: st, payment: svc}
}

// CreateInvoice builds a fixed-amount subscription transaction for the
// authenticated tenant and returns the gateway redirect.
func (h *PaymentHandler) CreateInvoice(c *gin.Context) {
	tenant, err := h.store.GetTenant(auth.TenantID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	invoice, snap, err := h.payment.CreateInvoice(c.Request.Context(), tenant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":     invoice.OrderID,
		"token":        snap.Token,
		"redirect_url": snap.RedirectURL,
	})
}

// MidtransCallback receives the gateway's async notification.
func (h *PaymentHandler) MidtransCallback(c *gin.Context) {
	var n payment.MidtransNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.payment.HandleMidtransCallback(n); err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.Is(err, payment.ErrUnknownOrder):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown order"})
		default:
			logrus.WithError(err).Error("midtrans callback failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// XenditCallback receives invoice notifications verified by shared token.
func (h *PaymentHandler) XenditCallback(c *gin.Context) {
	var n payment.XenditNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := c.GetHeader("x-callback-token")
	if err := h.payment.HandleXenditCallback(token, h.cfg.XenditCallbackToken, n); err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid callback token"})
		case errors.Is(err, payment.ErrUnknownOrder):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown order"})
		default:
			logrus.WithError(err).Error("xendit callback failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
