package store

import "fmt"

func (s *Store) ListProducts(tenantID string) ([]Product, error) {
	var products []Product
	if err := s.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (s *Store) CreateProduct(p *Product) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// CreateProducts bulk-inserts products from a website-extraction result.
func (s *Store) CreateProducts(products []Product) error {
	if len(products) == 0 {
		return nil
	}
	if err := s.db.Create(&products).Error; err != nil {
		return fmt.Errorf("bulk create products: %w", err)
	}
	return nil
}

func (s *Store) UpdateProduct(tenantID string, id uint, p *Product) error {
	res := s.db.Model(&Product{}).Where("id = ? AND tenant_id = ?", id, tenantID).Updates(map[string]interface{}{
		"name":        p.Name,
		"price":       p.Price,
		"description": p.Description,
	})
	if res.Error != nil {
		return fmt.Errorf("update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(tenantID string, id uint) error {
	res := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&Product{})
	if res.Error != nil {
		return fmt.Errorf("delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListFAQs(tenantID string) ([]FAQ, error) {
	var faqs []FAQ
	if err := s.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&faqs).Error; err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	if faqs == nil {
		faqs = []FAQ{}
	}
	return faqs, nil
}

func (s *Store) CreateFAQ(f *FAQ) error {
	if err := s.db.Create(f).Error; err != nil {
		return fmt.Errorf("create faq: %w", err)
	}
	return nil
}

func (s *Store) UpdateFAQ(tenantID string, id uint, f *FAQ) error {
	res := s.db.Model(&FAQ{}).Where("id = ? AND tenant_id = ?", id, tenantID).Updates(map[string]interface{}{
		"question": f.Question,
		"answer":   f.Answer,
	})
	if res.Error != nil {
		return fmt.Errorf("update faq: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteFAQ(tenantID string, id uint) error {
	res := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&FAQ{})
	if res.Error != nil {
		return fmt.Errorf("delete faq: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
