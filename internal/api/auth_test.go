package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
)

func authRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenTest()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	mgr := auth.NewManager("test-secret")
	h := NewAuthHandler(st, mgr)

	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)

	protected := r.Group("/api")
	protected.Use(mgr.RequireAuth())
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant_id": auth.TenantID(c)})
	})
	return r, st
}

func postJSON(r *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := authRouter(t)

	w := postJSON(r, "/api/auth/register", `{"email":"owner@example.com","password":"s3cret-pass","business_name":"Toko Maju"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}
	var reg struct {
		Token  string       `json:"token"`
		Tenant store.Tenant `json:"tenant"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("parse register response: %v", err)
	}
	if reg.Token == "" || reg.Tenant.ID == "" {
		t.Fatalf("register response incomplete: %s", w.Body.String())
	}
	if reg.Tenant.SubscriptionStatus != store.SubscriptionTrial {
		t.Errorf("new tenant status = %q, want trial", reg.Tenant.SubscriptionStatus)
	}
	if strings.Contains(w.Body.String(), "s3cret-pass") || strings.Contains(w.Body.String(), "password_hash") {
		t.Error("register response must not leak password material")
	}

	// Duplicate email.
	w = postJSON(r, "/api/auth/register", `{"email":"owner@example.com","password":"another-pass","business_name":"Other"}`, "")
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}

	// Login with the right and wrong password.
	w = postJSON(r, "/api/auth/login", `{"email":"owner@example.com","password":"s3cret-pass"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	w = postJSON(r, "/api/auth/login", `{"email":"owner@example.com","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}
	w = postJSON(r, "/api/auth/login", `{"email":"nobody@example.com","password":"whatever1"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d, want 401", w.Code)
	}

	// The issued token opens protected routes and resolves the tenant.
	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	wr := httptest.NewRecorder()
	r.ServeHTTP(wr, req)
	if wr.Code != http.StatusOK {
		t.Fatalf("whoami status = %d", wr.Code)
	}
	var who struct {
		TenantID string `json:"tenant_id"`
	}
	json.Unmarshal(wr.Body.Bytes(), &who)
	if who.TenantID != reg.Tenant.ID {
		t.Errorf("whoami = %q, want %q", who.TenantID, reg.Tenant.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	r, _ := authRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"s3cret-pass","business_name":"Toko"}`},
		{"invalid email", `{"email":"not-an-email","password":"s3cret-pass","business_name":"Toko"}`},
		{"short password", `{"email":"a@example.com","password":"short","business_name":"Toko"}`},
		{"missing business name", `{"email":"a@example.com","password":"s3cret-pass"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postJSON(r, "/api/auth/register", tt.body, ""); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestRequireAuthRejects(t *testing.T) {
	r, _ := authRouter(t)

	req := httptest.NewRequest("GET", "/api/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}

	// Tokens signed with a different secret are rejected.
	other := auth.NewManager("other-secret")
	token, err := other.IssueToken("t1", "a@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req = httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("foreign token status = %d, want 401", w.Code)
	}
}
