package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"digital-garden/backend/internal/api"
	"digital-garden/backend/internal/content"
	"digital-garden/backend/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		DataDir:         "",
		GitHubAPIURL:    "https://api.github.com",
		GitHubRateLimit: 5,
		ProjectLimit:    12,
		CacheTTL:        time.Minute,
		NPMRegistryURL:  "https://registry.npmjs.org",
		NPMAPIURL:       "https://api.npmjs.org",
		PyPIURL:         "https://pypi.org",
	}
}

func TestNewDeps_WithoutGitHub(t *testing.T) {
	cfg := testConfig()
	deps := newDeps(cfg, content.NewStore(t.TempDir(), ""), zap.NewNop())

	assert.Nil(t, deps.GitHub)
	assert.NotNil(t, deps.Registry)
	assert.Same(t, cfg, deps.Config)
}

func TestNewDeps_WithGitHub(t *testing.T) {
	cfg := testConfig()
	cfg.GitHubUsername = "gardener"
	cfg.GitHubToken = "secret"
	deps := newDeps(cfg, content.NewStore(t.TempDir(), ""), zap.NewNop())

	require.NotNil(t, deps.GitHub)
	assert.True(t, deps.GitHub.HasToken())
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	router := api.NewRouter(newDeps(cfg, content.NewStore(t.TempDir(), ""), zap.NewNop()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}
