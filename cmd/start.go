package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"media-cleaner/core/catalog"
	"media-cleaner/core/config"
	"media-cleaner/core/loader"
	"media-cleaner/core/logger"
	"media-cleaner/core/metrics"
	"media-cleaner/core/middleware/auth"
	"media-cleaner/core/middleware/rayid"
	"media-cleaner/feature/integrity"
	"media-cleaner/feature/media"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the media cleaner API server",
	Long: `Starts the HTTP server exposing read-only media reports, integrity checks
and Prometheus metrics. The server never removes files.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect backends (optional; features report what is missing)
		b, _ := openBackends(cfg, logg, false)

		var m *metrics.Metrics
		if cfg.Server.MetricsEnabled {
			m = metrics.New()
		}

		// 4. Build services
		fs := afero.NewOsFs()
		source, err := catalog.New(cfg.Catalog, b.catalogDeps(cfg))
		if err != nil {
			logg.Fatal("Failed to create reference source", zap.Error(err))
		}
		mediaSvc, err := media.NewService(fs, source, cfg.Media, cfg.Server.ReferenceTTL(), m, logg)
		if err != nil {
			logg.Fatal("Failed to create media service", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(media.NewFeature(mediaSvc))
		mgr.Register(integrity.NewFeature(integrity.Deps{
			Fs:        fs,
			MediaRoot: cfg.Media.Root,
			DB:        b.db,
			Table:     cfg.Database.Table(catalog.GalleryTable),
			Client:    b.storage,
			Bucket:    cfg.Storage.Bucket,
			Objects:   referenceObjects(cfg),
		}, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(requestLogger(logg))

		// 3. Metrics (public)
		if m != nil {
			app.Use(m.Middleware())
			app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
		}

		// 4. Auth (Protect API)
		app.Use(auth.New(cfg.Server.ApiKey, "/metrics"))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

// requestLogger logs every request with its ray id.
func requestLogger(logg *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	}
}

func init() {
	RootCmd.AddCommand(startCmd)
}
