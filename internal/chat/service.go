package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nuvio-server/internal/ai"
	"nuvio-server/internal/metrics"
	"nuvio-server/internal/store"

	"github.com/sirupsen/logrus"
)

var (
	// ErrTenantNotFound means the tenant identifier resolved to nothing.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrSubscriptionExpired means the tenant may not use the chatbot.
	ErrSubscriptionExpired = errors.New("subscription expired")
)

// Notifier receives dashboard live events. The websocket hub implements it.
type Notifier interface {
	BroadcastEvent(tenantID, eventType string, data interface{})
}

// Result is the outcome of one chat turn. Warnings carry best-effort
// failures (e.g. a malformed lead payload) that did not block the reply.
type Result struct {
	Reply    string      `json:"reply"`
	Lead     *store.Lead `json:"lead,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Service runs chat turns: subscription gate, context bundle, completion,
// lead capture.
type Service struct {
	store    *store.Store
	ai       ai.Completer
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewService(st *store.Store, completer ai.Completer, notifier Notifier, m *metrics.Metrics) *Service {
	return &Service{store: st, ai: completer, notifier: notifier, metrics: m}
}

// HandleTurn processes a visitor message for a tenant. FAQs and leads are
// part of the bundle here; the channel webhook path uses the slimmer
// HandleChannelTurn.
func (s *Service) HandleTurn(ctx context.Context, tenantID, message string, history []ai.Turn) (*Result, error) {
	tenant, err := s.gatedTenant(tenantID)
	if err != nil {
		return nil, err
	}

	system, err := s.buildContext(tenant, true)
	if err != nil {
		return nil, err
	}

	reply, err := s.ai.Complete(ctx, system, history, message)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	return s.finishTurn(tenant, reply, "chat"), nil
}

// HandleChannelTurn processes an inbound channel message. The context bundle
// is intentionally minimal: name, description and products only.
func (s *Service) HandleChannelTurn(ctx context.Context, tenant *store.Tenant, message string) (*Result, error) {
	if expired(tenant, time.Now()) {
		return nil, ErrSubscriptionExpired
	}

	system, err := s.buildContext(tenant, false)
	if err != nil {
		return nil, err
	}

	reply, err := s.ai.Complete(ctx, system, nil, message)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	return s.finishTurn(tenant, reply, "whatsapp"), nil
}

func (s *Service) gatedTenant(tenantID string) (*store.Tenant, error) {
	if tenantID == "" {
		return nil, ErrTenantNotFound
	}
	tenant, err := s.store.GetTenant(tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if expired(tenant, time.Now()) {
		return nil, ErrSubscriptionExpired
	}
	return tenant, nil
}

// expired decides access from the status-specific expiry field. Unknown
// statuses and missing expiry timestamps deny access.
func expired(t *store.Tenant, now time.Time) bool {
	var expiresAt *time.Time
	switch t.SubscriptionStatus {
	case store.SubscriptionActive:
		expiresAt = t.SubscriptionExpiresAt
	case store.SubscriptionTrial:
		expiresAt = t.TrialExpiresAt
	default:
		return true
	}
	if expiresAt == nil {
		return true
	}
	return now.After(*expiresAt)
}

func (s *Service) buildContext(tenant *store.Tenant, includeFAQs bool) (string, error) {
	products, err := s.store.ListProducts(tenant.ID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the customer-service assistant for %s.\n", tenant.BusinessName)
	if tenant.BusinessDescription != "" {
		fmt.Fprintf(&b, "About the business: %s\n", tenant.BusinessDescription)
	}
	if len(products) > 0 {
		b.WriteString("\nCatalog:\n")
		for _, p := range products {
			fmt.Fprintf(&b, "- %s (%.0f): %s\n", p.Name, p.Price, p.Description)
		}
	}

	if includeFAQs {
		faqs, err := s.store.ListFAQs(tenant.ID)
		if err != nil {
			return "", err
		}
		if len(faqs) > 0 {
			b.WriteString("\nFrequently asked questions:\n")
			for _, f := range faqs {
				fmt.Fprintf(&b, "Q: %s\nA: %s\n", f.Question, f.Answer)
			}
		}
	}

	b.WriteString("\nWhen a customer shares their contact details, append exactly one tag of the form ")
	b.WriteString(`:::LEAD_DATA={"name":"...","phone":"..."}::: at the end of your reply.`)
	return b.String(), nil
}

// finishTurn strips a lead marker from the reply and persists the lead when
// the payload parsed. Failures here never fail the turn: the visitor still
// gets the cleaned reply, problems surface as warnings.
func (s *Service) finishTurn(tenant *store.Tenant, reply, source string) *Result {
	result := &Result{Reply: reply}

	data, cleaned, found := extractLead(reply)
	if !found {
		return result
	}
	result.Reply = cleaned

	if data == nil {
		logrus.WithField("tenant_id", tenant.ID).Warn("malformed lead payload in reply, marker stripped")
		result.Warnings = append(result.Warnings, "lead marker contained malformed JSON; no lead was saved")
		return result
	}

	lead := &store.Lead{
		TenantID: tenant.ID,
		Name:     data.Name,
		Phone:    data.Phone,
		Email:    data.Email,
		Address:  data.Address,
		Source:   source,
	}
	if err := s.store.CreateLead(lead); err != nil {
		logrus.WithError(err).WithField("tenant_id", tenant.ID).Error("failed saving lead")
		result.Warnings = append(result.Warnings, "lead could not be saved")
		return result
	}

	result.Lead = lead
	if s.metrics != nil {
		s.metrics.LeadsCaptured.Inc()
	}
	if err := s.store.LogActivity(tenant.ID, "lead.captured", fmt.Sprintf("Lead %s (%s) captured from %s", lead.Name, lead.Phone, source)); err != nil {
		logrus.WithError(err).Warn("failed writing activity log")
	}
	if s.notifier != nil {
		s.notifier.BroadcastEvent(tenant.ID, "lead.created", lead)
	}
	return result
}
