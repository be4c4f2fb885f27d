package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrChannelNotFound means neither discovery strategy yielded a WhatsApp
// phone number. The Discovery traces explain what each strategy saw.
var ErrChannelNotFound = errors.New("no linked whatsapp channel found")

// GraphClient talks to the Meta graph API during identity linking.
type GraphClient struct {
	baseURL string
	http    *http.Client
}

func NewGraphClient(baseURL string) *GraphClient {
	return &GraphClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Channel is a discovered WhatsApp business phone number.
type Channel struct {
	PhoneNumberID string `json:"phone_number_id"`
	DisplayNumber string `json:"display_number"`
	VerifiedName  string `json:"verified_name"`
}

// Discovery is the outcome of the linking attempt, including per-strategy
// traces for the not-found diagnostic response.
type Discovery struct {
	Channel *Channel `json:"channel,omitempty"`
	Traces  []string `json:"traces"`
}

func (c *GraphClient) get(ctx context.Context, path, accessToken string, params url.Values, dest interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("graph API error: %s - %s", resp.Status, string(body))
	}
	return json.Unmarshal(body, dest)
}

// VerifyToken confirms the access token resolves to a profile.
func (c *GraphClient) VerifyToken(ctx context.Context, accessToken string) (string, error) {
	var me struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/me", accessToken, nil, &me); err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}
	if me.ID == "" {
		return "", fmt.Errorf("verify token: empty profile id")
	}
	return me.ID, nil
}

type phoneNumber struct {
	ID                 string `json:"id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	VerifiedName       string `json:"verified_name"`
}

// DiscoverChannel runs the two discovery strategies in order: the direct
// business-to-phone-number edge, then the page-to-linked-channel edge.
func (c *GraphClient) DiscoverChannel(ctx context.Context, accessToken string) (*Discovery, error) {
	disc := &Discovery{}

	if ch := c.discoverDirect(ctx, accessToken, disc); ch != nil {
		disc.Channel = ch
		return disc, nil
	}
	if ch := c.discoverViaPages(ctx, accessToken, disc); ch != nil {
		disc.Channel = ch
		return disc, nil
	}
	return disc, ErrChannelNotFound
}

func (c *GraphClient) discoverDirect(ctx context.Context, accessToken string, disc *Discovery) *Channel {
	var wabas struct {
		Data []struct {
			ID           string `json:"id"`
			PhoneNumbers struct {
				Data []phoneNumber `json:"data"`
			} `json:"phone_numbers"`
		} `json:"data"`
	}
	params := url.Values{"fields": {"id,phone_numbers{id,display_phone_number,verified_name}"}}
	if err := c.get(ctx, "/me/whatsapp_business_accounts", accessToken, params, &wabas); err != nil {
		disc.Traces = append(disc.Traces, fmt.Sprintf("direct edge: %v", err))
		return nil
	}
	disc.Traces = append(disc.Traces, fmt.Sprintf("direct edge: %d business accounts", len(wabas.Data)))

	for _, waba := range wabas.Data {
		if len(waba.PhoneNumbers.Data) > 0 {
			return toChannel(waba.PhoneNumbers.Data[0])
		}
	}
	disc.Traces = append(disc.Traces, "direct edge: no phone numbers on any account")
	return nil
}

func (c *GraphClient) discoverViaPages(ctx context.Context, accessToken string, disc *Discovery) *Channel {
	var pages struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/me/accounts", accessToken, nil, &pages); err != nil {
		disc.Traces = append(disc.Traces, fmt.Sprintf("page edge: %v", err))
		return nil
	}
	disc.Traces = append(disc.Traces, fmt.Sprintf("page edge: %d pages", len(pages.Data)))

	for _, page := range pages.Data {
		var linked struct {
			WhatsAppBusinessAccount struct {
				PhoneNumbers struct {
					Data []phoneNumber `json:"data"`
				} `json:"phone_numbers"`
			} `json:"whatsapp_business_account"`
		}
		params := url.Values{"fields": {"whatsapp_business_account{phone_numbers{id,display_phone_number,verified_name}}"}}
		if err := c.get(ctx, "/"+page.ID, accessToken, params, &linked); err != nil {
			disc.Traces = append(disc.Traces, fmt.Sprintf("page %s: %v", page.ID, err))
			continue
		}
		if numbers := linked.WhatsAppBusinessAccount.PhoneNumbers.Data; len(numbers) > 0 {
			return toChannel(numbers[0])
		}
		disc.Traces = append(disc.Traces, fmt.Sprintf("page %s: no linked channel", page.ID))
	}
	return nil
}

func toChannel(pn phoneNumber) *Channel {
	return &Channel{
		PhoneNumberID: pn.ID,
		DisplayNumber: pn.DisplayPhoneNumber,
		VerifiedName:  pn.VerifiedName,
	}
}
