package store

import "fmt"

// LogActivity appends an audit-trail entry. Best-effort writes at call sites
// log the returned error and carry on.
func (s *Store) LogActivity(tenantID, kind, detail string) error {
	entry := ActivityLog{TenantID: tenantID, Kind: kind, Detail: detail}
	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

func (s *Store) ListActivity(tenantID string, limit int) ([]ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []ActivityLog
	if err := s.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	if entries == nil {
		entries = []ActivityLog{}
	}
	return entries, nil
}

func (s *Store) ListWhitelist(tenantID string) ([]WhitelistEntry, error) {
	var entries []WhitelistEntry
	if err := s.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list whitelist: %w", err)
	}
	if entries == nil {
		entries = []WhitelistEntry{}
	}
	return entries, nil
}

func (s *Store) CreateWhitelistEntry(e *WhitelistEntry) error {
	if err := s.db.Create(e).Error; err != nil {
		return fmt.Errorf("create whitelist entry: %w", err)
	}
	return nil
}

func (s *Store) DeleteWhitelistEntry(tenantID string, id uint) error {
	res := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&WhitelistEntry{})
	if res.Error != nil {
		return fmt.Errorf("delete whitelist entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
