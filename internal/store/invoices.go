package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateInvoice(inv *Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = InvoicePending
	}
	if err := s.db.Create(inv).Error; err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoiceByOrderID(orderID string) (*Invoice, error) {
	var inv Invoice
	if err := s.db.First(&inv, "order_id = ?", orderID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &inv, nil
}

// SettleInvoice marks the invoice settled. RowsAffected tells the caller
// whether this delivery won the transition; a second delivery for the same
// order matches zero rows and must not extend the subscription again.
func (s *Store) SettleInvoice(orderID string) (bool, error) {
	now := time.Now()
	res := s.db.Model(&Invoice{}).
		Where("order_id = ? AND status <> ?", orderID, InvoiceSettled).
		Updates(map[string]interface{}{"status": InvoiceSettled, "paid_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("settle invoice: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) MarkInvoiceStatus(orderID, status string) error {
	if err := s.db.Model(&Invoice{}).Where("order_id = ?", orderID).Update("status", status).Error; err != nil {
		return fmt.Errorf("mark invoice %s: %w", status, err)
	}
	return nil
}
