package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nuvio-server/internal/store"
)

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) BroadcastEvent(tenantID, eventType string, data interface{}) {
	f.events = append(f.events, eventType)
}

func newFixture(t *testing.T) (*Service, *store.Store, *store.Tenant, *store.Invoice) {
	t.Helper()
	st, err := store.OpenTest()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	trialExp := time.Now().Add(24 * time.Hour)
	tenant := &store.Tenant{
		Email:              "owner@example.com",
		PasswordHash:       "x",
		BusinessName:       "Toko Maju",
		SubscriptionStatus: store.SubscriptionTrial,
		TrialExpiresAt:     &trialExp,
	}
	if err := st.CreateTenant(tenant); err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	invoice := &store.Invoice{
		TenantID: tenant.ID,
		OrderID:  OrderID(tenant.ID, time.Unix(1700000000, 0)),
		Amount:   SubscriptionAmount,
	}
	if err := st.CreateInvoice(invoice); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	svc := NewService(st, nil, "test-server-key", &fakeNotifier{}, nil)
	return svc, st, tenant, invoice
}

func signedNotification(orderID, serverKey, status string) MidtransNotification {
	n := MidtransNotification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       "200000.00",
		TransactionStatus: status,
	}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return n
}

func TestSignatureKnownVector(t *testing.T) {
	got := Signature("nv-abc123-999", "200", "200000", "test-server-key")
	want := "74f44576c903961147f22deb824dc46f01bf05cdcc9bccf2ce05bffe063cefcabe6a32f3d9555a04dc26e52175272eaf4c3826dca573f6325ac7bd9b88b30f3f"
	if got != want {
		t.Errorf("signature = %s, want %s", got, want)
	}
}

func TestSignatureVariesWithInputs(t *testing.T) {
	base := Signature("nv-abc-1", "200", "200000.00", "key")
	if base == "" || len(base) != 128 {
		t.Fatalf("signature = %q, want 128 hex chars", base)
	}
	if Signature("nv-abc-2", "200", "200000.00", "key") == base {
		t.Error("signature should change with order id")
	}
	if Signature("nv-abc-1", "201", "200000.00", "key") == base {
		t.Error("signature should change with status code")
	}
	if Signature("nv-abc-1", "200", "100000.00", "key") == base {
		t.Error("signature should change with gross amount")
	}
	if Signature("nv-abc-1", "200", "200000.00", "other") == base {
		t.Error("signature should change with server key")
	}
	if Signature("nv-abc-1", "200", "200000.00", "key") != base {
		t.Error("signature should be deterministic")
	}
}

func TestCallbackRejectsBadSignature(t *testing.T) {
	svc, st, tenant, invoice := newFixture(t)

	n := signedNotification(invoice.OrderID, "wrong-key", "settlement")
	if err := svc.HandleMidtransCallback(n); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}

	got, err := st.GetTenant(tenant.ID)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if got.SubscriptionStatus != store.SubscriptionTrial {
		t.Errorf("status = %q, a rejected callback must not mutate the tenant", got.SubscriptionStatus)
	}
	inv, _ := st.GetInvoiceByOrderID(invoice.OrderID)
	if inv.Status != store.InvoicePending {
		t.Errorf("invoice status = %q, want pending", inv.Status)
	}
}

func TestCallbackUnknownOrder(t *testing.T) {
	svc, _, _, _ := newFixture(t)

	n := signedNotification("nv-nobody-123", "test-server-key", "settlement")
	if err := svc.HandleMidtransCallback(n); !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("err = %v, want ErrUnknownOrder", err)
	}
}

func TestSettlementExtendsSubscription(t *testing.T) {
	svc, st, tenant, invoice := newFixture(t)

	n := signedNotification(invoice.OrderID, "test-server-key", "settlement")
	if err := svc.HandleMidtransCallback(n); err != nil {
		t.Fatalf("callback: %v", err)
	}

	got, err := st.GetTenant(tenant.ID)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if got.SubscriptionStatus != store.SubscriptionActive {
		t.Errorf("status = %q, want active", got.SubscriptionStatus)
	}
	if got.SubscriptionExpiresAt == nil {
		t.Fatal("expiry not set")
	}
	until := time.Until(*got.SubscriptionExpiresAt)
	if until < 29*24*time.Hour || until > 31*24*time.Hour {
		t.Errorf("expiry %v from now, want about 30 days", until)
	}

	inv, _ := st.GetInvoiceByOrderID(invoice.OrderID)
	if inv.Status != store.InvoiceSettled {
		t.Errorf("invoice status = %q, want settled", inv.Status)
	}
	if inv.PaidAt == nil {
		t.Error("paid_at not set")
	}

	notifier := svc.notifier.(*fakeNotifier)
	if len(notifier.events) != 1 || notifier.events[0] != "payment.settled" {
		t.Errorf("events = %v, want one payment.settled", notifier.events)
	}
}

func TestDuplicateSettlementAppliedOnce(t *testing.T) {
	svc, st, tenant, invoice := newFixture(t)

	n := signedNotification(invoice.OrderID, "test-server-key", "settlement")
	if err := svc.HandleMidtransCallback(n); err != nil {
		t.Fatalf("first callback: %v", err)
	}
	first, err := st.GetTenant(tenant.ID)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}

	// Gateways retry notifications; the second delivery must be acknowledged
	// without extending the subscription again.
	if err := svc.HandleMidtransCallback(n); err != nil {
		t.Fatalf("duplicate callback: %v", err)
	}
	second, err := st.GetTenant(tenant.ID)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if !second.SubscriptionExpiresAt.Equal(*first.SubscriptionExpiresAt) {
		t.Errorf("expiry moved from %v to %v on duplicate delivery", first.SubscriptionExpiresAt, second.SubscriptionExpiresAt)
	}

	notifier := svc.notifier.(*fakeNotifier)
	if len(notifier.events) != 1 {
		t.Errorf("events = %v, duplicate should not broadcast again", notifier.events)
	}
}

func TestCaptureWithFraudChallengeNotApplied(t *testing.T) {
	svc, st, tenant, invoice := newFixture(t)

	n := signedNotification(invoice.OrderID, "test-server-key", "capture")
	n.FraudStatus = "challenge"
	if err := svc.HandleMidtransCallback(n); err != nil {
		t.Fatalf("callback: %v", err)
	}

	got, _ := st.GetTenant(tenant.ID)
	if got.SubscriptionStatus != store.SubscriptionTrial {
		t.Errorf("status = %q, challenged capture must not activate", got.SubscriptionStatus)
	}
}

func TestFailureStatusesLeaveSubscriptionAlone(t *testing.T) {
	for _, status := range []string{"deny", "cancel", "expire"} {
		t.Run(status, func(t *testing.T) {
			svc, st, tenant, invoice := newFixture(t)

			n := signedNotification(invoice.OrderID, "test-server-key", status)
			if err := svc.HandleMidtransCallback(n); err != nil {
				t.Fatalf("callback: %v", err)
			}

			got, _ := st.GetTenant(tenant.ID)
			if got.SubscriptionStatus != store.SubscriptionTrial {
				t.Errorf("status = %q, want trial untouched", got.SubscriptionStatus)
			}
			inv, _ := st.GetInvoiceByOrderID(invoice.OrderID)
			if inv.Status != status {
				t.Errorf("invoice status = %q, want %q", inv.Status, status)
			}
		})
	}
}

func TestXenditCallbackToken(t *testing.T) {
	svc, st, tenant, invoice := newFixture(t)
	n := XenditNotification{ExternalID: invoice.OrderID, Status: "PAID"}

	if err := svc.HandleXenditCallback("", "expected-token", n); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("empty token: err = %v, want ErrInvalidSignature", err)
	}
	if err := svc.HandleXenditCallback("wrong", "expected-token", n); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("wrong token: err = %v, want ErrInvalidSignature", err)
	}
	// A server with no configured token rejects everything rather than
	// accepting unauthenticated callbacks.
	if err := svc.HandleXenditCallback("", "", n); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("unconfigured token: err = %v, want ErrInvalidSignature", err)
	}

	if err := svc.HandleXenditCallback("expected-token", "expected-token", n); err != nil {
		t.Fatalf("valid token: %v", err)
	}
	got, _ := st.GetTenant(tenant.ID)
	if got.SubscriptionStatus != store.SubscriptionActive {
		t.Errorf("status = %q, want active after PAID", got.SubscriptionStatus)
	}
}

func TestXenditAndMidtransShareSettlement(t *testing.T) {
	svc, st, tenant, invoice := newFixture(t)

	if err := svc.HandleXenditCallback("tok", "tok", XenditNotification{ExternalID: invoice.OrderID, Status: "SETTLED"}); err != nil {
		t.Fatalf("xendit callback: %v", err)
	}
	first, _ := st.GetTenant(tenant.ID)

	// The same order settling again through Midtrans is a duplicate.
	n := signedNotification(invoice.OrderID, "test-server-key", "settlement")
	if err := svc.HandleMidtransCallback(n); err != nil {
		t.Fatalf("midtrans callback: %v", err)
	}
	second, _ := st.GetTenant(tenant.ID)
	if !second.SubscriptionExpiresAt.Equal(*first.SubscriptionExpiresAt) {
		t.Error("cross-gateway duplicate extended the subscription twice")
	}
}

func TestCreateInvoiceWritesRecordBeforeGateway(t *testing.T) {
	_, st, tenant, _ := newFixture(t)

	snap := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"snap-token","redirect_url":"https://pay.example.com/x"}`))
	}))
	t.Cleanup(snap.Close)
	client := NewMidtrans("key", false)
	client.baseURL = snap.URL

	svc := NewService(st, client, "key", nil, nil)
	invoice, tx, err := svc.CreateInvoice(context.Background(), tenant)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if tx.Token != "snap-token" || tx.RedirectURL == "" {
		t.Errorf("snap = %+v", tx)
	}
	if invoice.Amount != SubscriptionAmount {
		t.Errorf("amount = %v, want %d", invoice.Amount, SubscriptionAmount)
	}

	stored, err := st.GetInvoiceByOrderID(invoice.OrderID)
	if err != nil {
		t.Fatalf("invoice not persisted: %v", err)
	}
	if stored.Status != store.InvoicePending || stored.TenantID != tenant.ID {
		t.Errorf("stored = %+v", stored)
	}
}

func TestCreateInvoicePersistsDespiteGatewayError(t *testing.T) {
	_, st, tenant, _ := newFixture(t)

	snap := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error_messages":["down"]}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(snap.Close)
	client := NewMidtrans("key", false)
	client.baseURL = snap.URL

	fixed := time.Unix(1800000000, 0)
	nowFunc = func() time.Time { return fixed }
	t.Cleanup(func() { nowFunc = time.Now })

	svc := NewService(st, client, "key", nil, nil)
	if _, _, err := svc.CreateInvoice(context.Background(), tenant); err == nil {
		t.Fatal("expected a gateway error")
	}

	// The correlation record is written before the gateway call, so a fast
	// callback for this order would still resolve.
	stored, err := st.GetInvoiceByOrderID(OrderID(tenant.ID, fixed))
	if err != nil {
		t.Fatalf("invoice not persisted despite gateway failure: %v", err)
	}
	if stored.Status != store.InvoicePending {
		t.Errorf("status = %q, want pending", stored.Status)
	}
}

func TestOrderID(t *testing.T) {
	id := OrderID("tenant-1", time.Unix(1700000000, 0))
	if id != "nv-tenant-1-1700000000" {
		t.Errorf("order id = %q", id)
	}
}
