package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"digital-garden/backend/internal/portfolio"
	"digital-garden/backend/internal/sponsor"
	apperrors "digital-garden/backend/pkg/errors"
)

// Data source reported in the X-Data-Source header
const (
	sourceGitHub = "github"
	sourceStatic = "static"
)

const dataSourceHeader = "X-Data-Source"

// staticFile serves a raw JSON data file for static hosting parity
func (s *Server) staticFile(c *gin.Context) {
	name := c.Param("file")
	raw, err := s.store.Raw(name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": displayName(name) + " not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// displayName turns "config.json" into "Config"
func displayName(file string) string {
	base := strings.TrimSuffix(file, ".json")
	if base == "" {
		return "File"
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

func (s *Server) portfolioConfig(c *gin.Context) {
	cfg, err := s.store.Config()
	if err != nil {
		s.respondError(c, err)
		return
	}
	if cfg.GitHubUsername == "" {
		cfg.GitHubUsername = s.cfg.GitHubUsername
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) papers(c *gin.Context) {
	papers, err := s.store.Papers()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, portfolio.FilterPapers(papers, c.Query("q")))
}

// loadProjects prefers live GitHub projects and falls back to the static
// projects file when GitHub is not configured, fails or has nothing to show
func (s *Server) loadProjects(ctx context.Context) ([]portfolio.Project, string, error) {
	if s.gh != nil && s.cfg.GitHubUsername != "" {
		user := s.cfg.GitHubUsername
		projects, err := s.projects.GetOrLoad(ctx, "projects:"+user, func(ctx context.Context) ([]portfolio.Project, error) {
			return s.gh.FetchProjects(ctx, user, s.cfg.ProjectLimit)
		})
		switch {
		case err == nil && len(projects) > 0:
			return projects, sourceGitHub, nil
		case ctx.Err() != nil:
			return nil, "", apperrors.NewContextCancelled("fetch projects", ctx.Err())
		case err != nil:
			s.log.Warn("GitHub projects unavailable, serving static projects",
				zap.String("user", user),
				zap.Error(err),
			)
		}
	}
	projects, err := s.store.Projects()
	if err != nil {
		return nil, "", err
	}
	return projects, sourceStatic, nil
}

func (s *Server) githubProjects(c *gin.Context) {
	projects, source, err := s.loadProjects(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header(dataSourceHeader, source)
	c.JSON(http.StatusOK, portfolio.FilterProjects(projects, c.Query("q")))
}

func (s *Server) githubUser(c *gin.Context) {
	if s.gh == nil {
		s.respondError(c, apperrors.ErrGitHubNotConfigured)
		return
	}
	user, err := s.gh.AuthenticatedUser(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) sponsorshipTiers(c *gin.Context) {
	tiers, err := s.store.Sponsorships(s.cfg.SponsorsAccount)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiers})
}

// sponsorshipSummary describes a tier choice for an optional project
func (s *Server) sponsorshipSummary(c *gin.Context) {
	tiers, err := s.store.Sponsorships(s.cfg.SponsorsAccount)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var tier *portfolio.SponsorshipTier
	if id := c.Query("tier"); id != "" {
		t, ok := sponsor.FindTier(tiers, id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tier not found"})
			return
		}
		tier = &t
	}

	var project *portfolio.Project
	if id := c.Query("project"); id != "" {
		projects, _, err := s.loadProjects(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return
		}
		for i := range projects {
			if projects[i].ID == id {
				project = &projects[i]
				break
			}
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
	}

	resp := gin.H{"summary": sponsor.Summary(tier, project)}
	if tier != nil {
		resp["tier"] = tier
		resp["url"] = tier.GitHubSponsorsURL
	}
	c.JSON(http.StatusOK, resp)
}

// bitcoinAddress reads the address from the portfolio config
func (s *Server) bitcoinAddress() (string, error) {
	cfg, err := s.store.Config()
	if err != nil {
		return "", err
	}
	return cfg.BitcoinAddress, nil
}

func (s *Server) bitcoin(c *gin.Context) {
	address, err := s.bitcoinAddress()
	if err != nil {
		s.respondError(c, err)
		return
	}
	amount, _ := strconv.ParseFloat(c.Query("amount"), 64)
	uri, err := sponsor.BitcoinURI(address, amount)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": strings.TrimSpace(address), "uri": uri})
}

func (s *Server) bitcoinQR(c *gin.Context) {
	address, err := s.bitcoinAddress()
	if err != nil {
		s.respondError(c, err)
		return
	}
	amount, _ := strconv.ParseFloat(c.Query("amount"), 64)
	size, _ := strconv.Atoi(c.Query("size"))

	png, err := sponsor.QRCode(address, amount, size)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
