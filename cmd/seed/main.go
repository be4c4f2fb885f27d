package main

import (
	"fmt"
	"os"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/config"
	"nuvio-server/internal/store"

	"github.com/sirupsen/logrus"
)

// Seeds a demo tenant with a small catalog so the dashboard and widget can be
// exercised without manual setup. Safe to re-run: it exits if the demo email
// already exists.
func main() {
	cfg := config.Load()

	st, err := store.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logrus.Fatalf("Failed to open store: %v", err)
	}

	email := "demo@nuvio.local"
	if _, err := st.GetTenantByEmail(email); err == nil {
		fmt.Println("demo tenant already exists, nothing to do")
		os.Exit(0)
	}

	hash, err := auth.HashPassword("demo-password")
	if err != nil {
		logrus.Fatalf("Failed to hash password: %v", err)
	}

	tenant := &store.Tenant{
		Email:        email,
		PasswordHash: hash,
		BusinessName: "Kopi Nuvio",
	}
	if err := st.CreateTenant(tenant); err != nil {
		logrus.Fatalf("Failed to create tenant: %v", err)
	}

	if err := st.UpdateTenantProfile(tenant.ID, map[string]interface{}{
		"business_description": "Specialty coffee roastery and cafe in Bandung",
		"whats_app_number":     "+6281200000001",
		"instagram_handle":     "kopinuvio",
		"website":              "https://kopinuvio.example.com",
	}); err != nil {
		logrus.Fatalf("Failed to update profile: %v", err)
	}

	products := []store.Product{
		{TenantID: tenant.ID, Name: "Arabica Gayo 250g", Price: 95000, Description: "Single origin beans, medium roast"},
		{TenantID: tenant.ID, Name: "Robusta Lampung 250g", Price: 65000, Description: "Bold and earthy, great for espresso"},
		{TenantID: tenant.ID, Name: "Cold Brew Bottle 500ml", Price: 35000, Description: "Slow steeped for 18 hours"},
	}
	if err := st.CreateProducts(products); err != nil {
		logrus.Fatalf("Failed to seed products: %v", err)
	}

	faqs := []struct{ q, a string }{
		{"Do you ship outside Java?", "Yes, we ship nationwide via JNE and SiCepat."},
		{"What are your opening hours?", "Every day 08.00-22.00 WIB."},
	}
	for _, f := range faqs {
		if err := st.CreateFAQ(&store.FAQ{TenantID: tenant.ID, Question: f.q, Answer: f.a}); err != nil {
			logrus.Fatalf("Failed to seed FAQ: %v", err)
		}
	}

	fmt.Printf("seeded demo tenant %s (%s)\n", tenant.ID, email)
}
