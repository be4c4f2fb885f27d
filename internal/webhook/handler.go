package webhook

import (
	"context"
	"errors"
	"net/http"

	"nuvio-server/internal/channel"
	"nuvio-server/internal/chat"
	"nuvio-server/internal/config"
	"nuvio-server/internal/metrics"
	"nuvio-server/internal/store"
	"nuvio-server/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the WhatsApp webhook endpoint: the verification handshake
// and inbound message deliveries.
type Handler struct {
	cfg      *config.Config
	store    *store.Store
	chat     *chat.Service
	channel  *channel.Client
	notifier chat.Notifier
	metrics  *metrics.Metrics
}

func NewHandler(cfg *config.Config, st *store.Store, chatSvc *chat.Service, ch *channel.Client, notifier chat.Notifier, m *metrics.Metrics) *Handler {
	return &Handler{cfg: cfg, store: st, chat: chatSvc, channel: ch, notifier: notifier, metrics: m}
}

// Verify answers the subscription handshake: the challenge is echoed only
// when the shared verification token matches.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	if mode == "subscribe" && token == h.cfg.VerifyToken {
		logrus.Info("webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}
	c.Status(http.StatusForbidden)
}

// HandleMessage processes an inbound delivery: reverse-looks-up the owning
// tenant by phone-number id, asks for a reply, and sends it back out when
// credentials are present. Always acknowledges with 200 once the payload
// parsed; downstream failures are logged, never retried.
func (h *Handler) HandleMessage(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logrus.WithError(err).Warn("invalid webhook payload")
		c.Status(http.StatusBadRequest)
		return
	}

	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		c.Status(http.StatusOK)
		return
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		c.Status(http.StatusOK)
		return
	}

	message := value.Messages[0]
	if h.metrics != nil {
		h.metrics.WebhookMessages.WithLabelValues(message.Type).Inc()
	}
	if message.Type != "text" {
		logrus.WithField("type", message.Type).Debug("ignoring non-text inbound message")
		c.Status(http.StatusOK)
		return
	}

	h.respond(c.Request.Context(), value.Metadata.PhoneNumberID, message)
	c.Status(http.StatusOK)
}

func (h *Handler) respond(ctx context.Context, phoneNumberID string, message models.InboundMessage) {
	tenant, err := h.store.GetTenantByPhoneNumberID(phoneNumberID)
	if err != nil {
		logrus.WithError(err).WithField("phone_number_id", phoneNumberID).Warn("no tenant for inbound channel")
		return
	}

	if h.notifier != nil {
		h.notifier.BroadcastEvent(tenant.ID, "message.received", gin.H{
			"from": message.From,
			"body": message.Text.Body,
		})
	}

	result, err := h.chat.HandleChannelTurn(ctx, tenant, message.Text.Body)
	if err != nil {
		if errors.Is(err, chat.ErrSubscriptionExpired) {
			logrus.WithField("tenant_id", tenant.ID).Info("inbound message for expired tenant, no reply")
			return
		}
		logrus.WithError(err).WithField("tenant_id", tenant.ID).Error("channel turn failed")
		if h.metrics != nil {
			h.metrics.Errors.WithLabelValues("webhook").Inc()
		}
		return
	}

	if tenant.WAPhoneNumberID == "" || tenant.WAAccessToken == "" {
		logrus.WithField("tenant_id", tenant.ID).Warn("no channel credentials, reply not sent")
		return
	}

	if err := h.channel.SendText(ctx, tenant.WAPhoneNumberID, tenant.WAAccessToken, message.From, result.Reply); err != nil {
		if h.metrics != nil {
			h.metrics.OutboundMessages.WithLabelValues("error").Inc()
		}
		logrus.WithError(err).WithField("tenant_id", tenant.ID).Error("outbound send failed")
		return
	}
	if h.metrics != nil {
		h.metrics.OutboundMessages.WithLabelValues("ok").Inc()
	}
}
