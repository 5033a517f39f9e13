// Package main provides the garden CLI: offline graph builds, renders,
// static exports and Neo4j syncs.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"digital-garden/backend/internal/content"
	"digital-garden/backend/internal/github"
	"digital-garden/backend/internal/portfolio"
	"digital-garden/backend/pkg/config"
	"digital-garden/backend/pkg/logger"
)

// Version is set at build time via ldflags
var Version = "dev"

// Exit codes
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitConfigError = 2
)

var (
	dataDir   string
	manifest  string
	useGitHub bool
	verbose   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "garden",
	Short: "Build and publish the digital garden knowledge graph",
	Long: `garden works on the same data directory as the server.

It prints knowledge graphs as JSON, renders them as SVG or HTML, exports
static data files for hosting without the server, and pushes graphs to
Neo4j. Projects come from the data directory unless --github is set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := "production"
		if verbose {
			env = "development"
		}
		return logger.Init(env)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&manifest, "manifest", "", "Package manifest (default: PACKAGES_MANIFEST)")
	rootCmd.PersistentFlags().BoolVar(&useGitHub, "github", false, "Fetch projects from GitHub instead of projects.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.Version = Version
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if manifest != "" {
		cfg.PackagesManifest = manifest
	}
	return cfg, nil
}

func openStore(cfg *config.Config) *content.Store {
	return content.NewStore(cfg.DataDir, cfg.PackagesManifest)
}

// loadProjects returns live GitHub projects with --github, else the static file
func loadProjects(ctx context.Context, cfg *config.Config, store *content.Store) ([]portfolio.Project, error) {
	if !useGitHub {
		return store.Projects()
	}
	if !cfg.GitHubEnabled() {
		return nil, fmt.Errorf("--github requires GITHUB_USERNAME")
	}
	opts := []github.Option{
		github.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		github.WithRateLimit(cfg.GitHubRateLimit),
		github.WithLogger(logger.Named("github")),
	}
	if cfg.GitHubToken != "" {
		opts = append(opts, github.WithToken(cfg.GitHubToken))
	}
	client := github.NewClient(cfg.GitHubAPIURL, opts...)
	projects, err := client.FetchProjects(ctx, cfg.GitHubUsername, cfg.ProjectLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching GitHub projects: %w", err)
	}
	logger.Get().Debug("Loaded GitHub projects", zap.Int("count", len(projects)))
	return projects, nil
}
