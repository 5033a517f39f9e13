// Package api exposes the garden over HTTP: static data files, the GitHub
// and registry proxy, and the knowledge graph views.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"digital-garden/backend/internal/cache"
	"digital-garden/backend/internal/content"
	"digital-garden/backend/internal/github"
	"digital-garden/backend/internal/portfolio"
	"digital-garden/backend/internal/registry"
	"digital-garden/backend/pkg/config"
	"digital-garden/backend/pkg/logger"
)

// Deps are the collaborators the router serves from. GitHub may be nil when
// no username is configured.
type Deps struct {
	Config   *config.Config
	Store    *content.Store
	GitHub   *github.Client
	Registry *registry.Service
	Logger   *zap.Logger
	Now      func() time.Time
}

// Server holds the handlers and their proxy caches
type Server struct {
	cfg      *config.Config
	store    *content.Store
	gh       *github.Client
	registry *registry.Service
	log      *zap.Logger
	now      func() time.Time

	projects     *cache.Cache[[]portfolio.Project]
	attestations *cache.Cache[[]portfolio.PackageAttestation]
}

// NewServer wires the handlers; cached responses are dropped whenever a
// watched data file changes
func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger.Named("api")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Registry == nil {
		d.Registry = registry.NewService(nil, nil)
	}
	s := &Server{
		cfg:          d.Config,
		store:        d.Store,
		gh:           d.GitHub,
		registry:     d.Registry,
		log:          d.Logger,
		now:          d.Now,
		projects:     cache.New[[]portfolio.Project](cache.DefaultSize, d.Config.CacheTTL),
		attestations: cache.New[[]portfolio.PackageAttestation](cache.DefaultSize, d.Config.CacheTTL),
	}
	d.Store.OnChange(func(name string) {
		s.log.Debug("Data file changed, purging proxy cache", zap.String("file", name))
		s.projects.Purge()
		s.attestations.Purge()
	})
	return s
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(d Deps) *gin.Engine {
	return NewServer(d).Router()
}

// Router registers the routes on a new engine
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(s.log))
	router.Use(recovery(s.log))
	router.Use(cors())

	router.GET("/health", s.health)
	router.GET("/data/:file", s.staticFile)
	router.GET("/graph", s.graphPage)

	api := router.Group("/api")
	{
		api.GET("/config", s.portfolioConfig)
		api.GET("/papers", s.papers)

		gh := api.Group("/github")
		gh.GET("/projects", s.githubProjects)
		gh.GET("/user", s.githubUser)

		g := api.Group("/graph")
		g.GET("", s.graphData)
		g.GET("/svg", s.graphSVG)
		g.GET("/nodes/:id/menu", s.nodeMenu)

		api.GET("/packages/attestations", s.packageAttestations)

		api.GET("/sponsorships/tiers", s.sponsorshipTiers)
		api.GET("/sponsorships/summary", s.sponsorshipSummary)

		api.GET("/bitcoin", s.bitcoin)
		api.GET("/bitcoin/qr.png", s.bitcoinQR)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"github": s.gh != nil,
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}
