package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/growthreport/internal/api/http"
	"github.com/mind-engage/growthreport/internal/audit"
	auth "github.com/mind-engage/growthreport/internal/auth/middleware"
	"github.com/mind-engage/growthreport/internal/config"
	"github.com/mind-engage/growthreport/internal/counsel"
	"github.com/mind-engage/growthreport/internal/db"
	"github.com/mind-engage/growthreport/internal/export"
	"github.com/mind-engage/growthreport/internal/layout"
	"github.com/mind-engage/growthreport/internal/logger"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/rewards"
	"github.com/mind-engage/growthreport/internal/settings"
	"github.com/mind-engage/growthreport/internal/storage"
	"github.com/mind-engage/growthreport/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}
	log, err := logger.New(string(cfg.Mode))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("gateway stopped", "error", err)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	// --- Report pipeline ---
	var src rewards.Source = rewards.NewClient(cfg.RewardsBaseURL,
		rewards.WithTimeout(cfg.RewardsTimeout), rewards.WithLogger(log))
	if cfg.RedisURL != "" {
		rdb, err := rewards.NewRedis(openCtx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		src = rewards.NewCachedSource(src, rdb, cfg.SnapshotTTL, log)
	}
	defaults, err := report.LoadDefaults(cfg.ReportDefaultsPath)
	if err != nil {
		return err
	}
	builder := report.NewBuilder(report.NewBadgeArchive())
	ts, err := layout.NewTypesetter(cfg.FontPath, layout.WithTypesetterLogger(log))
	if err != nil {
		return err
	}
	paginator := layout.NewPaginator(ts, layout.WithExportDPI(cfg.ExportDPI), layout.WithPaginatorLogger(log))

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}
	exportLog := audit.NewExportLog(dbh)
	exp := export.NewService(src, builder, export.NewStager(), paginator, bs,
		export.WithAudit(exportLog), export.WithLogger(log))

	deps := api.Deps{
		Auth: auth.NewAuthService(cfg.AuthHMACSecret,
			auth.WithTTL(cfg.TokenTTL), auth.WithAdmin(cfg.AdminUser, cfg.AdminPassHash)),
		Settings:    settings.NewService(store.NewSQLStore(dbh, store.NSConfigs), defaults, log),
		Counsels:    counsel.NewService(store.NewSQLStore(dbh, store.NSCounsels), log),
		Submissions: counsel.NewSubmissions(store.NewSQLStore(dbh, store.NSSubmissions)),
		Export:      exp,
		Blobs:       bs,
		ExportLog:   exportLog,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(requestTimeout(2*time.Minute, "/reports/export"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition", "X-Export-Overflow"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	api.Mount(r, deps)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
