package chat

import "testing"

func TestExtractLead(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantFound bool
		wantLead  bool
		wantReply string
		wantName  string
		wantPhone string
	}{
		{
			name:      "no marker",
			reply:     "Thanks for reaching out!",
			wantFound: false,
			wantReply: "Thanks for reaching out!",
		},
		{
			name:      "well-formed marker",
			reply:     `Noted, we'll contact you soon. :::LEAD_DATA={"name":"Budi","phone":"081234567890"}:::`,
			wantFound: true,
			wantLead:  true,
			wantReply: "Noted, we'll contact you soon.",
			wantName:  "Budi",
			wantPhone: "081234567890",
		},
		{
			name:      "marker mid-reply",
			reply:     `Saved. :::LEAD_DATA={"name":"Sari","phone":"0812"}::: Anything else?`,
			wantFound: true,
			wantLead:  true,
			wantReply: "Saved.  Anything else?",
			wantName:  "Sari",
			wantPhone: "0812",
		},
		{
			name:      "malformed payload still strips marker",
			reply:     `Got it. :::LEAD_DATA={"name":"Budi","phone":}:::`,
			wantFound: true,
			wantLead:  false,
			wantReply: "Got it.",
		},
		{
			name:      "extra fields ignored",
			reply:     `Ok :::LEAD_DATA={"name":"Ani","phone":"0813","city":"Bandung"}:::`,
			wantFound: true,
			wantLead:  true,
			wantReply: "Ok",
			wantName:  "Ani",
			wantPhone: "0813",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead, cleaned, found := extractLead(tt.reply)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if cleaned != tt.wantReply {
				t.Errorf("cleaned = %q, want %q", cleaned, tt.wantReply)
			}
			if tt.wantLead {
				if lead == nil {
					t.Fatal("expected a parsed lead, got nil")
				}
				if lead.Name != tt.wantName || lead.Phone != tt.wantPhone {
					t.Errorf("lead = %+v, want name=%q phone=%q", lead, tt.wantName, tt.wantPhone)
				}
			} else if lead != nil {
				t.Errorf("expected no lead, got %+v", lead)
			}
		})
	}
}
