package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kursline/kursline/internal/app/model"
	"github.com/kursline/kursline/internal/app/repository"
	"github.com/kursline/kursline/internal/app/service"
	"github.com/kursline/kursline/internal/http/view"
	"go.uber.org/zap"
)

// SettlementDeps groups dependencies required by checkout and settlement
// handlers.
type SettlementDeps struct {
	Logger       *zap.Logger
	Checkout     *service.CheckoutService
	PollInterval int // seconds, baked into the settlement page script
	BudgetSecs   int
}

// SettlementHandler implements checkout, the status endpoint and the
// settlement screen.
type SettlementHandler struct {
	logger       *zap.Logger
	checkout     *service.CheckoutService
	pollInterval int
	budgetSecs   int
}

// NewSettlementHandler creates a settlement handler with the provided
// dependencies.
func NewSettlementHandler(deps SettlementDeps) *SettlementHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementHandler{
		logger:       logger,
		checkout:     deps.Checkout,
		pollInterval: deps.PollInterval,
		budgetSecs:   deps.BudgetSecs,
	}
}

// Register wires checkout and settlement routes onto the provided router.
func (h *SettlementHandler) Register(router fiber.Router) {
	router.Post("/api/checkout", h.Checkout)
	router.Get("/api/transactions/:id/status", h.Status)
	router.Get("/pay/:transactionID", h.SettlementPage)
	// Direct navigation without a transaction is its own terminal state.
	router.Get("/pay/", h.SettlementPageMissing)
	router.Get("/pay", h.SettlementPageMissing)
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	OfferType  string `json:"offer_type"`
	OfferID    string `json:"offer_id"`
	ReferrerID string `json:"referrer_id,omitempty"`
	CouponCode string `json:"coupon_code,omitempty"`
}

// CheckoutResponse is returned on successful checkout.
type CheckoutResponse struct {
	TransactionID string `json:"transaction_id"`
	PayURL        string `json:"pay_url"`
	SettlementURL string `json:"settlement_url"`
}

// Checkout handles POST /api/checkout.
func (h *SettlementHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	offerType := model.OfferType(req.OfferType)
	if !offerType.Valid() || req.OfferID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "offer_type and offer_id are required",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := h.checkout.Checkout(ctx, service.CheckoutInput{
		OfferType:  offerType,
		OfferID:    req.OfferID,
		ReferrerID: req.ReferrerID,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "offer not found",
			})
		}
		h.logger.Error("checkout failed", zap.Error(err))
		// Surfaced to the user as a blocking message; resubmission is manual.
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "checkout failed, please try again",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(CheckoutResponse{
		TransactionID: result.TransactionID,
		PayURL:        result.PayURL,
		SettlementURL: "/pay/" + result.TransactionID,
	})
}

// Status handles GET /api/transactions/:id/status for the settlement page's
// polling loop.
func (h *SettlementHandler) Status(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	status, err := h.checkout.TransactionStatus(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrMissingTransaction) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing transaction id",
			})
		}
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "transaction not found",
			})
		}
		h.logger.Error("failed to load transaction status", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{"status": status})
}

// SettlementPage handles GET /pay/:transactionID.
func (h *SettlementHandler) SettlementPage(c *fiber.Ctx) error {
	id := c.Params("transactionID")
	if id == "" {
		return h.SettlementPageMissing(c)
	}

	html, err := view.RenderSettlementPage(view.SettlementPageData{
		TransactionID: id,
		StatusURL:     "/api/transactions/" + id + "/status",
		SuccessURL:    "/login",
		PollInterval:  h.pollInterval,
		BudgetSecs:    h.budgetSecs,
	})
	if err != nil {
		h.logger.Error("failed to render settlement page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}
	return c.Type("html", "utf-8").SendString(html)
}

// SettlementPageMissing renders the terminal "something went wrong" screen
// shown when settlement is entered without a transaction. No status calls
// are made from that screen.
func (h *SettlementHandler) SettlementPageMissing(c *fiber.Ctx) error {
	html, err := view.RenderSettlementPage(view.SettlementPageData{
		Title:   "Something went wrong",
		Missing: true,
	})
	if err != nil {
		h.logger.Error("failed to render settlement page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}
	return c.Status(fiber.StatusBadRequest).Type("html", "utf-8").SendString(html)
}
