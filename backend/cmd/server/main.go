package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"digital-garden/backend/internal/api"
	"digital-garden/backend/internal/content"
	"digital-garden/backend/internal/github"
	"digital-garden/backend/internal/graph"
	"digital-garden/backend/internal/knowledge"
	"digital-garden/backend/internal/registry"
	"digital-garden/backend/pkg/config"
	"digital-garden/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			panic(fmt.Sprintf("Invalid LOG_LEVEL: %v", err))
		}
	}

	log := logger.Get()
	log.Info("Starting digital garden server...",
		zap.String("env", cfg.Env),
		zap.String("data_dir", cfg.DataDir),
		zap.Bool("github", cfg.GitHubEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := content.NewStore(cfg.DataDir, cfg.PackagesManifest)
	if cfg.WatchData {
		watcher, err := store.Watch(ctx)
		if err != nil {
			log.Warn("Data directory watch disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	deps := newDeps(cfg, store, log)

	// Optional Neo4j export of the current graphs
	if cfg.Neo4jEnabled() {
		go syncNeo4j(ctx, cfg, deps, log)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	<-ctx.Done()

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// newDeps builds the upstream clients from configuration
func newDeps(cfg *config.Config, store *content.Store, log *zap.Logger) api.Deps {
	hc := &http.Client{Timeout: 20 * time.Second}

	var gh *github.Client
	if cfg.GitHubEnabled() {
		opts := []github.Option{
			github.WithHTTPClient(hc),
			github.WithRateLimit(cfg.GitHubRateLimit),
			github.WithLogger(log.Named("github")),
		}
		if cfg.GitHubToken != "" {
			opts = append(opts, github.WithToken(cfg.GitHubToken))
		}
		gh = github.NewClient(cfg.GitHubAPIURL, opts...)
	}

	return api.Deps{
		Config: cfg,
		Store:  store,
		GitHub: gh,
		Registry: registry.NewService(
			registry.NewNPMClient(cfg.NPMRegistryURL, cfg.NPMAPIURL, hc),
			registry.NewPyPIClient(cfg.PyPIURL, hc),
		),
		Logger: log.Named("api"),
	}
}

// syncNeo4j pushes one graph per grouping mode. Failures only log; the
// site never depends on Neo4j.
func syncNeo4j(ctx context.Context, cfg *config.Config, deps api.Deps, log *zap.Logger) {
	repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, log.Named("graph"))
	if err != nil {
		log.Warn("Neo4j export disabled", zap.Error(err))
		return
	}
	defer repo.Close(context.Background())

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Warn("Failed to create Neo4j schema", zap.Error(err))
	}

	projects, err := deps.Store.Projects()
	if deps.GitHub != nil {
		if live, ghErr := deps.GitHub.FetchProjects(ctx, cfg.GitHubUsername, cfg.ProjectLimit); ghErr == nil && len(live) > 0 {
			projects, err = live, nil
		}
	}
	if err != nil {
		log.Warn("Failed to load projects for Neo4j export", zap.Error(err))
		return
	}

	for _, mode := range knowledge.GroupingModes {
		data := knowledge.Build(projects, knowledge.Options{Grouping: mode})
		if _, err := repo.ExportGraph(ctx, mode, data); err != nil {
			log.Warn("Neo4j export failed", zap.String("mode", string(mode)), zap.Error(err))
		}
	}
}
