package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kursline/kursline/internal/app/repository"
	"github.com/kursline/kursline/internal/app/service"
	"github.com/kursline/kursline/internal/app/session"
	inthttp "github.com/kursline/kursline/internal/http/handler"
	"github.com/kursline/kursline/internal/http/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure and domain dependencies required by the
// HTTP server.
type Dependencies struct {
	Logger       *zap.Logger
	Postgres     *pgxpool.Pool
	Redis        *redis.Client
	Offers       repository.OfferRepository
	OfferService service.OfferService
	Tracker      *service.AttributionTracker
	Checkout     *service.CheckoutService
	Affiliate    *service.AffiliateService
	Sessions     *session.TokenSigner
	PollInterval int
	BudgetSecs   int
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.VisitorID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())
	if s.deps.Sessions != nil {
		s.app.Use(middleware.Auth(s.deps.Sessions))
	}

	var clickLimit fiber.Handler
	if s.deps.Redis != nil {
		clickLimit = middleware.RateLimit(s.deps.Redis, middleware.ClickRateLimitConfig(), s.deps.Logger)
	}

	landing := inthttp.NewLandingHandler(inthttp.LandingDeps{
		Logger:   s.deps.Logger,
		Offers:   s.deps.Offers,
		Tracker:  s.deps.Tracker,
		Postgres: s.deps.Postgres,
		Redis:    s.deps.Redis,
	})
	landing.Register(s.app, clickLimit)

	settlement := inthttp.NewSettlementHandler(inthttp.SettlementDeps{
		Logger:       s.deps.Logger,
		Checkout:     s.deps.Checkout,
		PollInterval: s.deps.PollInterval,
		BudgetSecs:   s.deps.BudgetSecs,
	})
	settlement.Register(s.app)

	api := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:       s.deps.Logger,
		OfferService: s.deps.OfferService,
		Affiliate:    s.deps.Affiliate,
	})
	api.Register(s.app)
}
