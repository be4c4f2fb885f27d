package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nuvio-server/internal/metrics"
	"nuvio-server/internal/store"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidSignature means the notification failed signature or token
	// verification; no state is mutated.
	ErrInvalidSignature = errors.New("invalid callback signature")
	// ErrUnknownOrder means no invoice correlates with the order id.
	ErrUnknownOrder = errors.New("unknown order")
)

// nowFunc is swapped in tests that need deterministic order ids.
var nowFunc = time.Now

// Notifier mirrors chat.Notifier for payment events.
type Notifier interface {
	BroadcastEvent(tenantID, eventType string, data interface{})
}

// Service owns invoice creation and callback settlement.
type Service struct {
	store     *store.Store
	midtrans  *MidtransClient
	serverKey string
	notifier  Notifier
	metrics   *metrics.Metrics
}

func NewService(st *store.Store, client *MidtransClient, serverKey string, notifier Notifier, m *metrics.Metrics) *Service {
	return &Service{store: st, midtrans: client, serverKey: serverKey, notifier: notifier, metrics: m}
}

// CreateInvoice persists the correlation record and asks the gateway for a
// redirect. The invoice row exists before the gateway call so a fast
// callback always finds it.
func (s *Service) CreateInvoice(ctx context.Context, tenant *store.Tenant) (*store.Invoice, *SnapTransaction, error) {
	orderID := OrderID(tenant.ID, nowFunc())
	invoice := &store.Invoice{
		TenantID: tenant.ID,
		OrderID:  orderID,
		Amount:   SubscriptionAmount,
	}
	if err := s.store.CreateInvoice(invoice); err != nil {
		return nil, nil, err
	}

	snap, err := s.midtrans.CreateTransaction(ctx, orderID, tenant.BusinessName, tenant.Email)
	if err != nil {
		return nil, nil, err
	}
	return invoice, snap, nil
}

// MidtransNotification is the subset of the gateway's async payload the
// callback handler consumes.
type MidtransNotification struct {
	OrderID           string `json:"order_id" binding:"required"`
	StatusCode        string `json:"status_code" binding:"required"`
	GrossAmount       string `json:"gross_amount" binding:"required"`
	SignatureKey      string `json:"signature_key" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	FraudStatus       string `json:"fraud_status"`
}

// HandleMidtransCallback verifies the signature and applies the status
// transition. Settled orders are applied at most once; the Invoice record is
// the dedup boundary.
func (s *Service) HandleMidtransCallback(n MidtransNotification) error {
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, s.serverKey)
	if n.SignatureKey != expected {
		if s.metrics != nil {
			s.metrics.PaymentCallbacks.WithLabelValues("midtrans", "bad_signature").Inc()
		}
		return ErrInvalidSignature
	}

	invoice, err := s.store.GetInvoiceByOrderID(n.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownOrder
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.PaymentCallbacks.WithLabelValues("midtrans", n.TransactionStatus).Inc()
	}

	switch n.TransactionStatus {
	case "settlement", "capture":
		if n.FraudStatus == "challenge" {
			logrus.WithField("order_id", n.OrderID).Warn("payment challenged by fraud check, not applied")
			return nil
		}
		return s.settle(invoice)
	case "deny", "cancel", "expire":
		// No subscription downgrade here; whether a failed payment should
		// shorten access is an open product question.
		logrus.WithFields(logrus.Fields{
			"order_id": n.OrderID,
			"status":   n.TransactionStatus,
		}).Info("payment not completed, no subscription change")
		if err := s.store.MarkInvoiceStatus(n.OrderID, n.TransactionStatus); err != nil {
			logrus.WithError(err).Warn("failed marking invoice status")
		}
		return nil
	default:
		logrus.WithFields(logrus.Fields{
			"order_id": n.OrderID,
			"status":   n.TransactionStatus,
		}).Info("ignoring payment status")
		return nil
	}
}

func (s *Service) settle(invoice *store.Invoice) error {
	won, err := s.store.SettleInvoice(invoice.OrderID)
	if err != nil {
		return err
	}
	if !won {
		logrus.WithField("order_id", invoice.OrderID).Info("duplicate settlement notification, already applied")
		return nil
	}

	if err := s.store.ExtendSubscription(invoice.TenantID, SubscriptionPeriod); err != nil {
		return fmt.Errorf("apply settlement: %w", err)
	}
	if err := s.store.LogActivity(invoice.TenantID, "payment.settled", fmt.Sprintf("Order %s settled, subscription extended 30 days", invoice.OrderID)); err != nil {
		logrus.WithError(err).Warn("failed writing activity log")
	}
	if s.notifier != nil {
		s.notifier.BroadcastEvent(invoice.TenantID, "payment.settled", invoice)
	}
	return nil
}
