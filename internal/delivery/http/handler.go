package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feirou/backend/internal/domain"
	"github.com/feirou/backend/internal/usecase"
)

// RouteOptimizer runs a shopping-route optimization.
type RouteOptimizer interface {
	Optimize(ctx context.Context, request domain.OptimizeRequest) (*domain.RouteReport, error)
}

// PriceSyncer runs price-sync jobs and audit matches.
type PriceSyncer interface {
	SyncProducts(ctx context.Context, products []domain.Product, categoryIDs []string) (*usecase.SyncSummary, error)
	MatchMarket(ctx context.Context, marketID string, observation domain.ExternalObservation) (*domain.MatchResult, error)
}

// ProductLister lists catalog products for sync runs without an explicit
// product list.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	optimizer RouteOptimizer
	syncer    PriceSyncer
	catalog   ProductLister
}

// NewHandler creates a new HTTP handler
func NewHandler(optimizer RouteOptimizer, syncer PriceSyncer, catalog ProductLister) *Handler {
	return &Handler{
		optimizer: optimizer,
		syncer:    syncer,
		catalog:   catalog,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "feirou-backend",
		"version": "1.0.0",
	})
}

// OptimizeRoute handles shopping-route optimization requests
func (h *Handler) OptimizeRoute(c *gin.Context) {
	if h.optimizer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Route optimization not configured",
		})
		return
	}

	var request domain.OptimizeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	report, err := h.optimizer.Optimize(c.Request.Context(), request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

type matchRequest struct {
	MarketID    string                     `json:"marketId"`
	Observation domain.ExternalObservation `json:"observation"`
}

// MatchMarket handles audit matching of one observation against one
// registered market
func (h *Handler) MatchMarket(c *gin.Context) {
	if h.syncer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Market matching not configured",
		})
		return
	}

	var request matchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}
	if request.MarketID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "marketId is required",
		})
		return
	}

	result, err := h.syncer.MatchMarket(c.Request.Context(), request.MarketID, request.Observation)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type syncRequest struct {
	Products    []domain.Product `json:"products"`
	CategoryIDs []string         `json:"categoryIds"`
}

// SyncPrices triggers a price-sync run. When no products are supplied the
// whole catalog is synced.
func (h *Handler) SyncPrices(c *gin.Context) {
	if h.syncer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Price sync not configured",
		})
		return
	}

	var request syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}
	}

	products := request.Products
	if len(products) == 0 && h.catalog != nil {
		catalogProducts, err := h.catalog.ListProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load catalog products",
			})
			return
		}
		products = catalogProducts
	}

	summary, err := h.syncer.SyncProducts(c.Request.Context(), products, request.CategoryIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// respondError maps domain errors onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoCandidateMarkets):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMarketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPriceFeedFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Price feed temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
