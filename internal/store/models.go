package store

import (
	"time"
)

// Subscription statuses. Each status reads its own expiry field when the
// chat handler decides access.
const (
	SubscriptionTrial   = "trial"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Invoice statuses mirror the gateway transaction lifecycle.
const (
	InvoicePending   = "pending"
	InvoiceSettled   = "settled"
	InvoiceDenied    = "deny"
	InvoiceCancelled = "cancel"
	InvoiceExpired   = "expire"
)

// Tenant represents a business-owner account and its isolated data subtree.
type Tenant struct {
	ID           string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:varchar(255)" json:"-"`

	BusinessName        string `gorm:"type:varchar(255)" json:"business_name"`
	BusinessDescription string `gorm:"type:text" json:"business_description"`
	WhatsAppNumber      string `gorm:"type:varchar(50)" json:"whatsapp_number"`
	InstagramHandle     string `gorm:"type:varchar(255)" json:"instagram_handle"`
	Website             string `gorm:"type:varchar(255)" json:"website"`

	SubscriptionStatus    string     `gorm:"type:varchar(20);default:'trial'" json:"subscription_status"`
	TrialExpiresAt        *time.Time `json:"trial_expires_at"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`

	// WhatsApp Cloud API channel credentials, filled by identity linking.
	WAPhoneNumberID string `gorm:"type:varchar(64);index" json:"wa_phone_number_id"`
	WAAccessToken   string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// Product is a priced catalog item nested under a tenant.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    string    `gorm:"index;type:varchar(64);not null" json:"tenant_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64   `json:"price"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// FAQ is a question/answer pair nested under a tenant.
type FAQ struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"index;type:varchar(64);not null" json:"tenant_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text" json:"answer"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FAQ) TableName() string {
	return "faqs"
}

// Lead is a prospective customer captured from a chat conversation.
type Lead struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TenantID  string    `gorm:"index;type:varchar(64);not null" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Address   string    `gorm:"type:text" json:"address"`
	Status    string    `gorm:"type:varchar(20);default:'new'" json:"status"`
	Source    string    `gorm:"type:varchar(20)" json:"source"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// ActivityLog is a per-tenant audit trail entry.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"index;type:varchar(64);not null" json:"tenant_id"`
	Kind      string    `gorm:"type:varchar(50)" json:"kind"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// WhitelistEntry is a per-tenant access-control phone entry.
type WhitelistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"index;type:varchar(64);not null" json:"tenant_id"`
	Phone     string    `gorm:"type:varchar(50);not null" json:"phone"`
	Note      string    `gorm:"type:varchar(255)" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WhitelistEntry) TableName() string {
	return "whitelist_entries"
}

// Invoice correlates a gateway order with the tenant that created it.
// Written before the gateway call so callbacks resolve the tenant by order
// id instead of parsing it, and settled exactly once.
type Invoice struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TenantID  string     `gorm:"index;type:varchar(64);not null" json:"tenant_id"`
	OrderID   string     `gorm:"uniqueIndex;type:varchar(128);not null" json:"order_id"`
	Amount    float64    `json:"amount"`
	Status    string     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}
