package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/config"
	"github.com/mrlokans/readinglist/internal/database"
	"github.com/mrlokans/readinglist/internal/database/books"
	"github.com/mrlokans/readinglist/internal/database/importruns"
	"github.com/mrlokans/readinglist/internal/gutendex"
	http_controllers "github.com/mrlokans/readinglist/internal/http"
	"github.com/mrlokans/readinglist/internal/logging"
	"github.com/mrlokans/readinglist/internal/scheduler"
	"github.com/mrlokans/readinglist/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Background workers stop before the listener so queued imports can finish
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()

	log.Printf("Reading list %s starting, database %s", version, cfg.Database.Path)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	source := gutendex.NewClient(
		gutendex.WithBaseURL(cfg.Import.URL),
		gutendex.WithTimeout(cfg.Import.Timeout),
	)
	svc := catalogue.NewService(books.NewRepository(db.DB), source)

	importRuns := importruns.NewRepository(db.DB)
	if n, err := importRuns.FailStale(context.Background()); err != nil {
		log.Printf("Failed to close interrupted import runs: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d interrupted import runs as failed", n)
	}
	svc.SetProgressReporter(importRuns)

	if err := svc.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load reading list: %v", err)
	}
	log.Printf("Loaded %d books", len(svc.Books()))

	routerCfg := http_controllers.RouterConfig{
		Catalogue:     svc,
		Database:      db,
		ImportHistory: importRuns,
		Version:       version,
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg, svc)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		routerCfg.ImportQueue = taskClient
	}

	// Initialize periodic import if enabled
	var importScheduler *scheduler.ImportScheduler
	if cfg.ImportSchedule.Enabled {
		importScheduler = scheduler.NewImportScheduler(svc, cfg.ImportSchedule.Schedule, 0)
		if err := importScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start import scheduler: %v", err)
		}
		routerCfg.ImportSchedule = importScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if importScheduler != nil {
			importScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
