package store

import (
	"errors"
	"testing"
	"time"
)

func mustOpen(t *testing.T) *Store {
	t.Helper()
	st, err := OpenTest()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func mustTenant(t *testing.T, st *Store, email string) *Tenant {
	t.Helper()
	tenant := &Tenant{Email: email, PasswordHash: "x", BusinessName: "Toko " + email}
	if err := st.CreateTenant(tenant); err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func TestCreateTenantDefaults(t *testing.T) {
	st := mustOpen(t)
	tenant := mustTenant(t, st, "a@example.com")

	if tenant.ID == "" {
		t.Error("id not generated")
	}
	if tenant.SubscriptionStatus != SubscriptionTrial {
		t.Errorf("status = %q, want trial", tenant.SubscriptionStatus)
	}
	if tenant.TrialExpiresAt == nil {
		t.Fatal("trial expiry not set")
	}
	until := time.Until(*tenant.TrialExpiresAt)
	if until < 13*24*time.Hour || until > 15*24*time.Hour {
		t.Errorf("trial expiry %v from now, want about 14 days", until)
	}
}

func TestTenantLookups(t *testing.T) {
	st := mustOpen(t)
	tenant := mustTenant(t, st, "a@example.com")

	if _, err := st.GetTenant("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTenant miss: err = %v, want ErrNotFound", err)
	}
	if _, err := st.GetTenantByEmail("nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTenantByEmail miss: err = %v, want ErrNotFound", err)
	}

	if err := st.SetChannelCredentials(tenant.ID, "pn-9", "tok"); err != nil {
		t.Fatalf("set credentials: %v", err)
	}
	got, err := st.GetTenantByPhoneNumberID("pn-9")
	if err != nil {
		t.Fatalf("lookup by phone number id: %v", err)
	}
	if got.ID != tenant.ID {
		t.Errorf("resolved tenant %q, want %q", got.ID, tenant.ID)
	}
	if got.WAAccessToken != "tok" {
		t.Errorf("access token = %q", got.WAAccessToken)
	}
}

func TestCatalogTenantIsolation(t *testing.T) {
	st := mustOpen(t)
	a := mustTenant(t, st, "a@example.com")
	b := mustTenant(t, st, "b@example.com")

	if err := st.CreateProduct(&Product{TenantID: a.ID, Name: "Kopi", Price: 25000}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := st.CreateProduct(&Product{TenantID: b.ID, Name: "Teh", Price: 15000}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	productsA, err := st.ListProducts(a.ID)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(productsA) != 1 || productsA[0].Name != "Kopi" {
		t.Errorf("tenant A products = %+v", productsA)
	}

	// One tenant must not be able to update or delete another's rows.
	if err := st.UpdateProduct(a.ID, productsA[0].ID, &Product{Name: "Kopi Susu", Price: 28000}); err != nil {
		t.Fatalf("update own product: %v", err)
	}
	if err := st.DeleteProduct(b.ID, productsA[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant delete: err = %v, want ErrNotFound", err)
	}

	empty, err := st.ListProducts("no-such-tenant")
	if err != nil {
		t.Fatalf("list for unknown tenant: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", empty)
	}
}

func TestLeadLifecycle(t *testing.T) {
	st := mustOpen(t)
	tenant := mustTenant(t, st, "a@example.com")

	lead := &Lead{TenantID: tenant.ID, Name: "Budi", Phone: "0812", Source: "chat"}
	if err := st.CreateLead(lead); err != nil {
		t.Fatalf("create lead: %v", err)
	}
	if lead.ID == "" {
		t.Error("lead id not generated")
	}
	if lead.Status != "new" {
		t.Errorf("status = %q, want new", lead.Status)
	}

	if err := st.UpdateLeadStatus(tenant.ID, lead.ID, "contacted"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	n, err := st.CountLeads(tenant.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	if err := st.UpdateLeadStatus("other-tenant", lead.ID, "lost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant update: err = %v, want ErrNotFound", err)
	}

	if err := st.DeleteLead(tenant.ID, lead.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := st.CountLeads(tenant.ID); n != 0 {
		t.Errorf("count after delete = %d", n)
	}
}

func TestSettleInvoiceOnce(t *testing.T) {
	st := mustOpen(t)
	tenant := mustTenant(t, st, "a@example.com")

	inv := &Invoice{TenantID: tenant.ID, OrderID: "nv-x-1", Amount: 200000}
	if err := st.CreateInvoice(inv); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.Status != InvoicePending {
		t.Errorf("status = %q, want pending", inv.Status)
	}

	won, err := st.SettleInvoice("nv-x-1")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !won {
		t.Fatal("first settlement should win")
	}

	won, err = st.SettleInvoice("nv-x-1")
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if won {
		t.Error("second settlement must not win")
	}

	got, err := st.GetInvoiceByOrderID("nv-x-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != InvoiceSettled || got.PaidAt == nil {
		t.Errorf("invoice = %+v, want settled with paid_at", got)
	}
}

func TestExtendSubscription(t *testing.T) {
	st := mustOpen(t)
	tenant := mustTenant(t, st, "a@example.com")

	if err := st.ExtendSubscription(tenant.ID, 30*24*time.Hour); err != nil {
		t.Fatalf("extend: %v", err)
	}
	got, err := st.GetTenant(tenant.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SubscriptionStatus != SubscriptionActive {
		t.Errorf("status = %q, want active", got.SubscriptionStatus)
	}
	if got.SubscriptionExpiresAt == nil {
		t.Fatal("expiry not set")
	}
	// The trial fields are untouched so support can still see trial history.
	if got.TrialExpiresAt == nil {
		t.Error("trial expiry was cleared")
	}
}

func TestActivityLogLimit(t *testing.T) {
	st := mustOpen(t)
	tenant := mustTenant(t, st, "a@example.com")

	for i := 0; i < 5; i++ {
		if err := st.LogActivity(tenant.ID, "test.event", "detail"); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	entries, err := st.ListActivity(tenant.ID, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
}
