package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateTenant(t *Tenant) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.SubscriptionStatus == "" {
		t.SubscriptionStatus = SubscriptionTrial
	}
	if t.SubscriptionStatus == SubscriptionTrial && t.TrialExpiresAt == nil {
		expires := time.Now().Add(14 * 24 * time.Hour)
		t.TrialExpiresAt = &expires
	}
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *Store) GetTenant(id string) (*Tenant, error) {
	var t Tenant
	if err := s.db.First(&t, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

func (s *Store) GetTenantByEmail(email string) (*Tenant, error) {
	var t Tenant
	if err := s.db.First(&t, "email = ?", email).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

// GetTenantByPhoneNumberID reverse-looks-up the owning tenant for an inbound
// channel delivery.
func (s *Store) GetTenantByPhoneNumberID(phoneNumberID string) (*Tenant, error) {
	var t Tenant
	if err := s.db.First(&t, "wa_phone_number_id = ?", phoneNumberID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

func (s *Store) UpdateTenant(t *Tenant) error {
	if err := s.db.Save(t).Error; err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	return nil
}

// UpdateTenantProfile mutates the settings fields only, leaving subscription
// and credential columns alone.
func (s *Store) UpdateTenantProfile(id string, fields map[string]interface{}) error {
	if err := s.db.Model(&Tenant{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("update tenant profile: %w", err)
	}
	return nil
}

// ExtendSubscription activates the tenant and pushes the expiry the given
// duration from now. Unconditioned write; concurrent callbacks are
// last-write-wins, the Invoice record is what prevents double application.
func (s *Store) ExtendSubscription(id string, d time.Duration) error {
	expires := time.Now().Add(d)
	err := s.db.Model(&Tenant{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subscription_status":     SubscriptionActive,
		"subscription_expires_at": expires,
	}).Error
	if err != nil {
		return fmt.Errorf("extend subscription: %w", err)
	}
	return nil
}

// SetChannelCredentials persists the discovered WhatsApp channel identity.
func (s *Store) SetChannelCredentials(id, phoneNumberID, accessToken string) error {
	err := s.db.Model(&Tenant{}).Where("id = ?", id).Updates(map[string]interface{}{
		"wa_phone_number_id": phoneNumberID,
		"wa_access_token":    accessToken,
	}).Error
	if err != nil {
		return fmt.Errorf("set channel credentials: %w", err)
	}
	return nil
}
