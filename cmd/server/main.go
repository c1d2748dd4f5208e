package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Korak-997/emma-wave/config"
	"github.com/Korak-997/emma-wave/handlers"
	"github.com/Korak-997/emma-wave/internal/audioproc"
	"github.com/Korak-997/emma-wave/internal/clips"
	"github.com/Korak-997/emma-wave/internal/clipstore"
	"github.com/Korak-997/emma-wave/internal/diarize/pyannote"
	"github.com/Korak-997/emma-wave/internal/ffmpeg"
	"github.com/Korak-997/emma-wave/internal/pipeline"
	"github.com/Korak-997/emma-wave/internal/requestlog"
	"github.com/Korak-997/emma-wave/internal/segment"
	"github.com/Korak-997/emma-wave/internal/telemetry"
	"github.com/Korak-997/emma-wave/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := config.NewLogger(cfg)

	transcoder := ffmpeg.New()
	if !transcoder.Available() {
		logger.Warn("ffmpeg not found on PATH; non-canonical uploads will be rejected")
	}

	engine := pyannote.New(pyannote.Config{
		BaseURL: cfg.Engine.URL,
		Timeout: time.Duration(cfg.Engine.TimeoutSeconds) * time.Second,
	})

	// The model failing to come up is startup-fatal: no request should be
	// served while the engine is unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	available := engine.IsAvailable(ctx)
	cancel()
	if !available {
		logger.Fatalf("Diarization engine is not reachable at %s", cfg.Engine.URL)
	}
	logger.Info("Diarization engine is loaded and reachable")

	localStore, err := clipstore.NewLocal(cfg.Clips.Dir, cfg.Clips.URLBase)
	if err != nil {
		logger.Fatalf("Failed to initialize clip directory: %v", err)
	}

	var store clipstore.Store = localStore
	if cfg.Clips.Backend == "supabase" {
		store, err = clipstore.NewSupabase(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Bucket)
		if err != nil {
			logger.Fatalf("Failed to initialize Supabase storage: %v", err)
		}
	}

	recorder, err := requestlog.NewRecorder(cfg.RequestLog.Dir, cfg.RequestLog.Enabled, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize request log directory: %v", err)
	}

	processor := pipeline.NewProcessor(
		audioproc.NewNormalizer(transcoder, logger),
		engine,
		clips.NewExtractor(clips.DeliveryMode(cfg.Clips.Delivery), store),
		telemetry.NewCollector(cfg.Telemetry.DiskPath, cfg.Telemetry.GPUEnabled, logger),
		recorder,
		pipeline.Options{
			Merge: segment.MergeOptions{
				GapThreshold: cfg.Pipeline.GapThreshold,
				MinDuration:  cfg.Pipeline.MinDuration,
			},
			SamplingInterval: cfg.SamplingInterval(),
		},
		logger,
	)

	h := handlers.NewApplicationHandler(processor, engine, recorder, logger, localStore.Dir(), cfg.MaxUploadBytes())

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadBytes()) + 1024*1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(logger))

	app.Post("/diarize", h.DiarizeAudio)
	app.Get("/health", h.HealthCheck)
	app.Get("/audio/:filename", h.GetAudio)
	app.Get("/logs", h.ListLogs)
	app.Get("/logs/:filename", h.GetLog)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	logger.Infof("Starting diarization service on port %s", cfg.Port)
	logger.Fatal(app.Listen(":" + cfg.Port))
}
