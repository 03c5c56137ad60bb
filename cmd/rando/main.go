package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/randoapp/rando-service/internal/auth"
	"github.com/randoapp/rando-service/internal/config"
	"github.com/randoapp/rando-service/internal/handlers"
	"github.com/randoapp/rando-service/internal/identity"
	"github.com/randoapp/rando-service/internal/logger"
	"github.com/randoapp/rando-service/internal/mapurl"
	"github.com/randoapp/rando-service/internal/metrics"
	"github.com/randoapp/rando-service/internal/model"
	"github.com/randoapp/rando-service/internal/pipeline"
	"github.com/randoapp/rando-service/internal/recognition"
	"github.com/randoapp/rando-service/internal/repository"
	"github.com/randoapp/rando-service/internal/resizer"
	"github.com/randoapp/rando-service/internal/response"
	"github.com/randoapp/rando-service/internal/staging"
	"github.com/randoapp/rando-service/internal/storage"
)

func main() {
	cfgPath := os.Getenv("RANDO_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	log, err := logger.New(dev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	db := mc.Database(cfg.Mongo.Database)
	repo := repository.NewRandoRepo(db.Collection(cfg.Mongo.RandoCollection), db.Collection(cfg.Mongo.UserCollection))

	// S3
	store, err := storage.NewS3Store(context.Background(), cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint, cfg.AWS.PublicBaseURL)
	if err != nil {
		log.Fatalf("s3 init: %v", err)
	}

	// redis (rate limiting)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// pipeline collaborators
	stager := staging.NewStager(cfg.Static.Folder)
	rz := resizer.New(stager.Abs, map[model.SizeClass]resizer.Bounds{
		model.SizeSmall:  {Width: cfg.Image.Small.Width, Height: cfg.Image.Small.Height},
		model.SizeMedium: {Width: cfg.Image.Medium.Width, Height: cfg.Image.Medium.Height},
		model.SizeLarge:  {Width: cfg.Image.Large.Width, Height: cfg.Image.Large.Height},
	}, cfg.Image.Quality)

	scanners := make([]recognition.Scanner, 0, len(cfg.Recognition.Scanners))
	for _, sc := range cfg.Recognition.Scanners {
		timeout := time.Duration(sc.TimeoutSeconds) * time.Second
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		scanners = append(scanners, recognition.NewHTTPScanner(sc.Name, sc.Endpoint, timeout, cfg.Recognition.BreakerMaxFails, cfg.BreakerCooldown))
	}
	recognizer := recognition.NewService(log, scanners...)

	maps := mapurl.NewResolver(cfg.Map.URLTemplate, cfg.Map.Zoom, map[model.SizeClass]int{
		model.SizeSmall:  cfg.Map.SmallSize,
		model.SizeMedium: cfg.Map.MediumSize,
		model.SizeLarge:  cfg.Map.LargeSize,
	}, mapurl.NoGeo{})

	pipe := pipeline.New(pipeline.Deps{
		Identity:        identity.NewGenerator(cfg.Static.IDByteLength, cfg.Static.PrefixLength, cfg.Static.FileExt),
		Stager:          stager,
		Resizer:         rz,
		Recognizer:      recognizer,
		Publisher:       store,
		Maps:            maps,
		Persister:       repo,
		Projector:       response.NewProjector(cfg.DetectedTag),
		EnabledScanners: cfg.Recognition.EnabledScanners,
		RunTimeout:      cfg.RunTimeout,
		Log:             log,
	})

	// JWT
	verifier, err := auth.NewJWTVerifier(cfg.JWT.PublicKeyPath)
	if err != nil {
		log.Fatalf("jwt init: %v", err)
	}

	// fiber app & routes
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    cfg.Image.MaxUploadMB * 1024 * 1024,
	})
	h := handlers.NewHandler(pipe, repo, log, cfg.Image.MaxUploadMB)
	limiter := handlers.NewRateLimiter(rdb, "rando:upload", cfg.RateLimit.Limit, cfg.RateLimitWindow)
	authd := auth.Middleware(verifier)

	app.Post("/image", authd, limiter.MiddlewareByKey(ownerKey), h.PostImage)
	app.Post("/report/:id", authd, h.Report)
	app.Post("/bonappetit/:id", authd, h.BonAppetit)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// metrics on its own listener, scrape-only
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port+1), mux); err != nil {
			log.Warnf("metrics listener stopped: %v", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		log.Infof("starting rando service on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown requested")
	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	_ = app.Shutdown()
	_ = rdb.Close()
	_ = mc.Disconnect(timeoutCtx)
	log.Info("shutdown completed")
}

func ownerKey(c *fiber.Ctx) string {
	if owner, ok := auth.OwnerFromCtx(c); ok {
		return owner.Email
	}
	return c.IP()
}
