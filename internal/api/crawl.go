package api

import (
	"errors"
	"net/http"

	"nuvio-server/internal/auth"
	"nuvio-server/internal/crawler"
	"nuvio-server/internal/store"

	"github.com/gin-gonic/gin"
)

// CrawlHandler serves website extraction and product import for onboarding.
type CrawlHandler struct {
	crawler *crawler.Crawler
	store   *store.Store
}

func NewCrawlHandler(cr *crawler.Crawler, st *store.Store) *CrawlHandler {
	return &CrawlHandler{crawler: cr, store: st}
}

type crawlRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *CrawlHandler) Extract(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, raw, err := h.crawler.Extract(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, crawler.ErrContentTooShort) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "page content too short to extract business info"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		// The provider's output did not parse as JSON; hand the raw text
		// back so the dashboard can show it.
		c.JSON(http.StatusOK, gin.H{"raw": raw})
		return
	}
	c.JSON(http.StatusOK, result)
}

type importRequest struct {
	Products []crawler.ExtractedProduct `json:"products" binding:"required"`
}

// Import persists extracted products onto the authenticated tenant.
func (h *CrawlHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID := auth.TenantID(c)
	products := make([]store.Product, 0, len(req.Products))
	for _, p := range req.Products {
		if p.Name == "" {
			continue
		}
		products = append(products, store.Product{
			TenantID:    tenantID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
		})
	}

	if err := h.store.CreateProducts(products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": len(products)})
}
