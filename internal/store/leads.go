package store

import (
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) CreateLead(l *Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = "new"
	}
	if err := s.db.Create(l).Error; err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (s *Store) ListLeads(tenantID string) ([]Lead, error) {
	var leads []Lead
	if err := s.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if leads == nil {
		leads = []Lead{}
	}
	return leads, nil
}

func (s *Store) CountLeads(tenantID string) (int64, error) {
	var count int64
	if err := s.db.Model(&Lead{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

func (s *Store) UpdateLeadStatus(tenantID, id, status string) error {
	res := s.db.Model(&Lead{}).Where("id = ? AND tenant_id = ?", id, tenantID).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update lead status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteLead(tenantID, id string) error {
	res := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&Lead{})
	if res.Error != nil {
		return fmt.Errorf("delete lead: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
