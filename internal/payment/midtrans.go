package payment

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	midtransSandboxBase    = "https://app.sandbox.midtrans.com/snap/v1"
	midtransProductionBase = "https://app.midtrans.com/snap/v1"

	// SubscriptionAmount is the fixed monthly price in IDR. Plans are not
	// parameterized yet.
	SubscriptionAmount = 200000
	// SubscriptionPeriod is the window added per settled payment.
	SubscriptionPeriod = 30 * 24 * time.Hour

	orderPrefix = "nv"
)

// MidtransClient creates Snap transactions against the gateway.
type MidtransClient struct {
	serverKey string
	baseURL   string
	http      *http.Client
}

func NewMidtrans(serverKey string, production bool) *MidtransClient {
	base := midtransSandboxBase
	if production {
		base = midtransProductionBase
	}
	return &MidtransClient{
		serverKey: serverKey,
		baseURL:   base,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// SnapTransaction is the gateway's redirect handle for a created invoice.
type SnapTransaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// OrderID builds the gateway-visible order identifier. The tenant id stays
// embedded for gateway-side traceability; callback routing resolves the
// Invoice record instead of parsing this string.
func OrderID(tenantID string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", orderPrefix, tenantID, now.Unix())
}

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails []snapItem `json:"item_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email,omitempty"`
	} `json:"customer_details"`
}

type snapItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// CreateTransaction builds a fixed-amount subscription transaction and
// returns the gateway token and redirect URL.
func (c *MidtransClient) CreateTransaction(ctx context.Context, orderID, customerName, customerEmail string) (*SnapTransaction, error) {
	var reqBody snapRequest
	reqBody.TransactionDetails.OrderID = orderID
	reqBody.TransactionDetails.GrossAmount = SubscriptionAmount
	reqBody.ItemDetails = []snapItem{{
		ID:       "nuvio-sub-30d",
		Name:     "Nuvio subscription (30 days)",
		Price:    SubscriptionAmount,
		Quantity: 1,
	}}
	reqBody.CustomerDetails.FirstName = customerName
	reqBody.CustomerDetails.Email = customerEmail

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/transactions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.serverKey+":")))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("midtrans API error: %s - %s", resp.Status, string(respBody))
	}

	var snap SnapTransaction
	if err := json.Unmarshal(respBody, &snap); err != nil {
		return nil, fmt.Errorf("midtrans parse response: %w", err)
	}
	return &snap, nil
}

// Signature recomputes the Midtrans notification signature: sha512 over
// order id + status code + gross amount + server key.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
