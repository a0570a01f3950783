package server

import (
	"context"

	"backend-kinfolk/internal/auth"
	"backend-kinfolk/internal/billing"
	"backend-kinfolk/internal/config"
	"backend-kinfolk/internal/db"
	"backend-kinfolk/internal/event"
	"backend-kinfolk/internal/follow"
	"backend-kinfolk/internal/group"
	"backend-kinfolk/internal/tag"
	"backend-kinfolk/internal/visibility"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	app   *fiber.App
	cfg   config.Config
	log   *zap.Logger
	redis *redis.Client
	cache *billing.SnapshotCache
}

// New wires every service onto one fiber app. The visibility engine reads
// follow, tag, group and billing state through their services directly; no
// separate read models.
func New(cfg config.Config, querier db.Querier, redisClient *redis.Client, log *zap.Logger) *Server {
	cache := billing.NewSnapshotCache(cfg.EntitlementCacheTTL, nil)

	authSvc := auth.NewService(cfg.JWTSecret, querier)
	followSvc := follow.NewService(querier)
	tagSvc := tag.NewService(querier)
	groupSvc := group.NewService(querier, followSvc)
	billingSvc := billing.NewService(querier, cache, redisClient)
	eventSvc := event.NewService(querier)

	engine := visibility.NewEngine(followSvc, tagSvc, groupSvc, billingSvc)

	requireAuth := auth.JWTMiddleware(cfg.JWTSecret)
	optionalAuth := auth.OptionalJWTMiddleware(cfg.JWTSecret)

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.Environment == "production"})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth.RegisterRoutes(app.Group("/auth"), authSvc)
	follow.RegisterRoutes(app.Group("/follows"), followSvc, requireAuth)
	tag.RegisterRoutes(app.Group("/tags"), tagSvc, requireAuth)
	group.RegisterRoutes(app.Group("/groups"), groupSvc, requireAuth)
	billing.RegisterRoutes(app.Group("/subscriptions"), billingSvc, requireAuth)
	event.RegisterRoutes(app.Group("/events"), eventSvc, engine, requireAuth, optionalAuth)

	return &Server{app: app, cfg: cfg, log: log, redis: redisClient, cache: cache}
}

// Listen blocks serving requests. The invalidation listener runs until ctx
// is canceled so snapshot evictions from other instances land here too.
func (s *Server) Listen(ctx context.Context) error {
	if s.redis != nil {
		go s.cache.ListenInvalidations(ctx, s.redis)
	}
	s.log.Info("server listening", zap.String("addr", s.cfg.ServerPort))
	return s.app.Listen(s.cfg.ServerPort)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
