package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nuvio-server/internal/ai"

	"github.com/sirupsen/logrus"
)

const (
	// MinContentLength rejects pages whose extracted text is too thin to
	// describe a business.
	MinContentLength = 200
	// Content above MaxContentLength is cut to a head+tail window so the
	// completion request stays bounded.
	MaxContentLength = 12000
	headWindow       = 9000
	tailWindow       = 2500
)

// ErrContentTooShort means the page text was below MinContentLength; no
// completion call is made in that case.
var ErrContentTooShort = errors.New("extracted content too short")

const extractionInstruction = `Extract business information from the page text below.
Respond with strict JSON only, no markdown fences, matching:
{"business_name":"","description":"","whatsapp":"","instagram":"","products":[{"name":"","price":0,"description":""}]}
Use empty strings for unknown fields and an empty array when no products are listed.`

// ExtractResult is the structured shape the completion provider is asked
// to return. Callers must stay defensive: on parse failure the handler
// returns the raw text instead.
type ExtractResult struct {
	BusinessName string             `json:"business_name"`
	Description  string             `json:"description"`
	WhatsApp     string             `json:"whatsapp"`
	Instagram    string             `json:"instagram"`
	Products     []ExtractedProduct `json:"products"`
}

type ExtractedProduct struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Crawler fetches rendered page text through an extraction proxy and asks
// the completion provider for structured business data.
type Crawler struct {
	proxyBase string
	ai        ai.Completer
	http      *http.Client
}

func New(proxyBase string, completer ai.Completer) *Crawler {
	return &Crawler{
		proxyBase: strings.TrimRight(proxyBase, "/"),
		ai:        completer,
		http:      &http.Client{Timeout: 45 * time.Second},
	}
}

// Extract crawls url and returns either an *ExtractResult or, when the
// provider's output was not valid JSON, the raw reply string.
func (c *Crawler) Extract(ctx context.Context, url string) (*ExtractResult, string, error) {
	content, err := c.fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}
	if len(content) < MinContentLength {
		return nil, "", ErrContentTooShort
	}
	content = trimWindow(content)

	reply, err := c.ai.Complete(ctx, extractionInstruction, nil, content)
	if err != nil {
		return nil, "", fmt.Errorf("extraction completion: %w", err)
	}

	var result ExtractResult
	if err := json.Unmarshal([]byte(stripFences(reply)), &result); err != nil {
		logrus.WithError(err).WithField("url", url).Warn("extraction output was not valid JSON, returning raw text")
		return nil, reply, nil
	}
	return &result, "", nil
}

func (c *Crawler) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.proxyBase+"/"+url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("extraction proxy error: %s - %s", resp.Status, string(body))
	}
	return string(body), nil
}

// trimWindow keeps the head and tail of oversized content. The head carries
// most business pages' identity, the tail often holds contact footers.
func trimWindow(content string) string {
	if len(content) <= MaxContentLength {
		return content
	}
	return content[:headWindow] + "\n...\n" + content[len(content)-tailWindow:]
}

// stripFences drops a ```json fence a model may wrap around its output
// despite the strict-JSON instruction.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
