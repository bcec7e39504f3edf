package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
	"github.com/kursline/kursline/internal/app/service"
	"github.com/kursline/kursline/internal/http/middleware"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger       *zap.Logger
	OfferService service.OfferService
	Affiliate    *service.AffiliateService
}

// APIHandler implements the management API endpoints.
type APIHandler struct {
	logger       *zap.Logger
	offerService service.OfferService
	affiliate    *service.AffiliateService
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:       logger,
		offerService: deps.OfferService,
		affiliate:    deps.Affiliate,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		api.Post("/offers", h.CreateOffer)
		api.Get("/offers", h.ListOffers)
		api.Get("/offers/:type/:id", h.GetOffer)
		api.Put("/offers/:type/:id", h.UpdateOffer)
		api.Delete("/offers/:type/:id", h.DeleteOffer)
		api.Get("/affiliates/:id/stats", h.AffiliateStats)
	}
}

// CreateOfferRequest is the body of POST /api/offers.
type CreateOfferRequest struct {
	ID                   string     `json:"id"`
	Type                 string     `json:"type"`
	Title                string     `json:"title"`
	Price                int64      `json:"price"`
	Currency             string     `json:"currency"`
	IntroMediaURL        string     `json:"intro_media_url"`
	IntroDurationSeconds int        `json:"intro_duration_seconds"`
	Disabled             bool       `json:"disabled"`
	ExpiresAt            *time.Time `json:"expires_at"`
}

// OfferResponse mirrors the stored offer.
type OfferResponse struct {
	ID                   string     `json:"id"`
	Type                 string     `json:"type"`
	Title                string     `json:"title"`
	Price                int64      `json:"price"`
	Currency             string     `json:"currency"`
	IntroMediaURL        string     `json:"intro_media_url"`
	IntroDurationSeconds int        `json:"intro_duration_seconds"`
	Disabled             bool       `json:"disabled"`
	ExpiresAt            *time.Time `json:"expires_at"`
	CreatedAt            time.Time  `json:"created_at"`
}

func offerResponse(offer *model.Offer) OfferResponse {
	return OfferResponse{
		ID:                   offer.ID,
		Type:                 string(offer.Type),
		Title:                offer.Title,
		Price:                offer.Price,
		Currency:             offer.Currency,
		IntroMediaURL:        offer.IntroMediaURL,
		IntroDurationSeconds: offer.IntroDurationSeconds,
		Disabled:             offer.Disabled,
		ExpiresAt:            offer.ExpiresAt,
		CreatedAt:            offer.CreatedAt,
	}
}

func isAdmin(c *fiber.Ctx) bool {
	sess := middleware.SessionFrom(c)
	return sess != nil && sess.Admin
}

// CreateOffer handles POST /api/offers.
func (h *APIHandler) CreateOffer(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin access required",
		})
	}

	var req CreateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	offerType := model.OfferType(req.Type)
	if !offerType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be one of: course, ebook",
		})
	}
	if req.ID == "" || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id and title are required",
		})
	}
	if req.Price < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "price must not be negative",
		})
	}
	if req.IntroDurationSeconds < 0 || req.IntroDurationSeconds > 3600 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "intro_duration_seconds must be between 0 and 3600",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	offer, err := h.offerService.CreateOffer(ctx, service.CreateOfferInput{
		ID:                   req.ID,
		Type:                 offerType,
		Title:                req.Title,
		Price:                req.Price,
		Currency:             req.Currency,
		IntroMediaURL:        req.IntroMediaURL,
		IntroDurationSeconds: req.IntroDurationSeconds,
		Disabled:             req.Disabled,
		ExpiresAt:            req.ExpiresAt,
	})
	if err != nil {
		h.logger.Error("failed to create offer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create offer",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(offerResponse(offer))
}

// ListOffers handles GET /api/offers.
func (h *APIHandler) ListOffers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	offerType := model.OfferType(c.Query("type"))
	if offerType != "" && !offerType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be one of: course, ebook",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	offers, err := h.offerService.ListOffers(ctx, offerType, limit, offset)
	if err != nil {
		h.logger.Error("failed to list offers", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list offers",
		})
	}

	out := make([]OfferResponse, 0, len(offers))
	for i := range offers {
		out = append(out, offerResponse(&offers[i]))
	}
	return c.JSON(fiber.Map{"offers": out})
}

// GetOffer handles GET /api/offers/:type/:id.
func (h *APIHandler) GetOffer(c *fiber.Ctx) error {
	offerType := model.OfferType(c.Params("type"))
	if !offerType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be one of: course, ebook",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	offer, err := h.offerService.GetOffer(ctx, offerType, c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "offer not found",
			})
		}
		h.logger.Error("failed to get offer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get offer",
		})
	}

	return c.JSON(offerResponse(offer))
}

// UpdateOfferRequest is the body of PUT /api/offers/:type/:id.
type UpdateOfferRequest struct {
	Title                *string    `json:"title"`
	Price                *int64     `json:"price"`
	Currency             *string    `json:"currency"`
	IntroMediaURL        *string    `json:"intro_media_url"`
	IntroDurationSeconds *int       `json:"intro_duration_seconds"`
	Disabled             *bool      `json:"disabled"`
	ExpiresAt            *time.Time `json:"expires_at"`
}

// UpdateOffer handles PUT /api/offers/:type/:id.
func (h *APIHandler) UpdateOffer(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin access required",
		})
	}

	offerType := model.OfferType(c.Params("type"))
	if !offerType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be one of: course, ebook",
		})
	}

	var req UpdateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	offer, err := h.offerService.UpdateOffer(ctx, offerType, c.Params("id"), service.UpdateOfferInput{
		Title:                req.Title,
		Price:                req.Price,
		Currency:             req.Currency,
		IntroMediaURL:        req.IntroMediaURL,
		IntroDurationSeconds: req.IntroDurationSeconds,
		Disabled:             req.Disabled,
		ExpiresAt:            req.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "offer not found",
			})
		}
		h.logger.Error("failed to update offer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update offer",
		})
	}

	return c.JSON(offerResponse(offer))
}

// DeleteOffer handles DELETE /api/offers/:type/:id.
func (h *APIHandler) DeleteOffer(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin access required",
		})
	}

	offerType := model.OfferType(c.Params("type"))
	if !offerType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be one of: course, ebook",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := h.offerService.DeleteOffer(ctx, offerType, c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "offer not found",
			})
		}
		h.logger.Error("failed to delete offer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete offer",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AffiliateStats handles GET /api/affiliates/:id/stats. Affiliates can read
// their own stats; admins can read anyone's.
func (h *APIHandler) AffiliateStats(c *fiber.Ctx) error {
	referrerID := c.Params("id")

	sess := middleware.SessionFrom(c)
	if sess == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}
	if !sess.Admin && (!sess.Affiliate || sess.UserID != referrerID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "not your affiliate account",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := h.affiliate.Stats(ctx, referrerID)
	if err != nil {
		h.logger.Error("failed to load affiliate stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
		})
	}

	return c.JSON(stats)
}
