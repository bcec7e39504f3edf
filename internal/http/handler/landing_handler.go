package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
	"github.com/kursline/kursline/internal/app/service"
	"github.com/kursline/kursline/internal/http/middleware"
	"github.com/kursline/kursline/internal/http/view"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LandingDeps groups dependencies required by the landing handlers.
type LandingDeps struct {
	Logger   *zap.Logger
	Offers   repository.OfferRepository
	Tracker  *service.AttributionTracker
	Postgres *pgxpool.Pool
	Redis    *redis.Client
}

// LandingHandler serves the health endpoint, the landing pages and the click
// registration endpoint.
type LandingHandler struct {
	logger   *zap.Logger
	offers   repository.OfferRepository
	tracker  *service.AttributionTracker
	postgres *pgxpool.Pool
	redis    *redis.Client
}

// NewLandingHandler creates a landing handler with the provided dependencies.
func NewLandingHandler(deps LandingDeps) *LandingHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LandingHandler{
		logger:   logger,
		offers:   deps.Offers,
		tracker:  deps.Tracker,
		postgres: deps.Postgres,
		redis:    deps.Redis,
	}
}

// Register wires landing routes onto the provided router.
func (h *LandingHandler) Register(router fiber.Router, clickLimit fiber.Handler) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/o/:type/:id", h.Landing)
	if clickLimit != nil {
		router.Post("/api/clicks", clickLimit, h.RegisterClick)
	} else {
		router.Post("/api/clicks", h.RegisterClick)
	}
}

// Health reports liveness plus backing-store connectivity.
func (h *LandingHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.Map{
		"service": "kursline",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if h.postgres != nil {
		if err := h.postgres.Ping(ctx); err != nil {
			status["postgres"] = "down"
			status["status"] = "degraded"
		} else {
			status["postgres"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
			status["status"] = "degraded"
		} else {
			status["redis"] = "ok"
		}
	}
	return c.JSON(status)
}

// Landing handles GET /o/:type/:id. It records attribution when the visit
// carries a new referrer key and renders the countdown-gated offer page.
func (h *LandingHandler) Landing(c *fiber.Ctx) error {
	offerType := model.OfferType(c.Params("type"))
	offerID := c.Params("id")
	referrerID := c.Query("ref")

	if !offerType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "offer type must be one of: course, ebook",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	offer, loadErr := h.loadOffer(ctx, offerType, offerID)
	if loadErr != nil {
		return c.Status(loadErr.StatusCode).JSON(fiber.Map{
			"error": loadErr.Message,
		})
	}

	// Attribution never blocks the render; registration runs in the
	// background and failures are retried on a later visit.
	visitorID := middleware.Visitor(c)
	if h.tracker != nil && h.tracker.ShouldRecord(ctx, visitorID, offerType, offerID, referrerID) {
		click := service.Click{
			VisitorID:  visitorID,
			OfferType:  offerType,
			OfferID:    offerID,
			ReferrerID: referrerID,
			IP:         c.IP(),
			UserAgent:  c.Get("User-Agent"),
		}
		go func() {
			if err := h.tracker.Record(context.Background(), click); err != nil {
				h.logger.Error("failed to record attribution click",
					zap.String("offer_id", offerID), zap.Error(err))
			}
		}()
	}

	gate := service.NewRevealGateFromProbe(offer.IntroDurationSeconds)

	html, err := view.RenderLandingPage(view.LandingPageData{
		Title:         offer.Title,
		OfferType:     string(offer.Type),
		OfferID:       offer.ID,
		Price:         formatPrice(offer.Price, offer.Currency),
		IntroMediaURL: offer.IntroMediaURL,
		CountdownSecs: gate.Remaining(),
		ReferrerID:    referrerID,
	})
	if err != nil {
		h.logger.Error("failed to render landing page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}

	return c.Type("html", "utf-8").SendString(html)
}

// RegisterClickRequest is the body of POST /api/clicks.
type RegisterClickRequest struct {
	OfferType  string `json:"offer_type"`
	OfferID    string `json:"offer_id"`
	ReferrerID string `json:"referrer_id"`
}

// RegisterClick handles POST /api/clicks for clients that register
// explicitly instead of via the landing page.
func (h *LandingHandler) RegisterClick(c *fiber.Ctx) error {
	var req RegisterClickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	offerType := model.OfferType(req.OfferType)
	if !offerType.Valid() || req.OfferID == "" || req.ReferrerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "offer_type, offer_id and referrer_id are required",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	visitorID := middleware.Visitor(c)
	if !h.tracker.ShouldRecord(ctx, visitorID, offerType, req.OfferID, req.ReferrerID) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"recorded": false})
	}

	err := h.tracker.Record(ctx, service.Click{
		VisitorID:  visitorID,
		OfferType:  offerType,
		OfferID:    req.OfferID,
		ReferrerID: req.ReferrerID,
		IP:         c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})
	if err != nil {
		h.logger.Error("failed to record click", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to record click",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"recorded": true})
}

type offerLoadError struct {
	StatusCode int
	Message    string
}

func (h *LandingHandler) loadOffer(ctx context.Context, offerType model.OfferType, id string) (*model.Offer, *offerLoadError) {
	offer, err := h.offers.Get(ctx, offerType, id)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, &offerLoadError{
				StatusCode: fiber.StatusNotFound,
				Message:    "offer not found",
			}
		}
		h.logger.Error("failed to load offer", zap.Error(err), zap.String("id", id))
		return nil, &offerLoadError{
			StatusCode: fiber.StatusInternalServerError,
			Message:    "internal server error",
		}
	}

	if offer.Disabled {
		return nil, &offerLoadError{
			StatusCode: fiber.StatusGone,
			Message:    "offer is no longer available",
		}
	}
	if offer.ExpiresAt != nil && time.Now().After(*offer.ExpiresAt) {
		return nil, &offerLoadError{
			StatusCode: fiber.StatusGone,
			Message:    "offer expired",
		}
	}

	return offer, nil
}

func formatPrice(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, currency)
}
