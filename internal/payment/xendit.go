package payment

import (
	"errors"

	"nuvio-server/internal/store"

	"github.com/sirupsen/logrus"
)

// XenditNotification is the invoice-callback payload subset. ExternalID
// carries the same order id used for Midtrans transactions.
type XenditNotification struct {
	ExternalID string `json:"external_id" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

// HandleXenditCallback verifies the shared callback token (Xendit signs with
// an x-callback-token header, not a payload hash) and applies paid invoices
// through the same settlement path as Midtrans.
func (s *Service) HandleXenditCallback(callbackToken, expectedToken string, n XenditNotification) error {
	if expectedToken == "" || callbackToken != expectedToken {
		if s.metrics != nil {
			s.metrics.PaymentCallbacks.WithLabelValues("xendit", "bad_token").Inc()
		}
		return ErrInvalidSignature
	}

	invoice, err := s.store.GetInvoiceByOrderID(n.ExternalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownOrder
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.PaymentCallbacks.WithLabelValues("xendit", n.Status).Inc()
	}

	switch n.Status {
	case "PAID", "SETTLED":
		return s.settle(invoice)
	case "EXPIRED":
		logrus.WithField("external_id", n.ExternalID).Info("xendit invoice expired, no subscription change")
		if err := s.store.MarkInvoiceStatus(n.ExternalID, store.InvoiceExpired); err != nil {
			logrus.WithError(err).Warn("failed marking invoice status")
		}
		return nil
	default:
		logrus.WithFields(logrus.Fields{
			"external_id": n.ExternalID,
			"status":      n.Status,
		}).Info("ignoring xendit status")
		return nil
	}
}
