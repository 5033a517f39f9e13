package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"digital-garden/backend/internal/portfolio"
	apperrors "digital-garden/backend/pkg/errors"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL,
		WithToken("secret"),
		WithRateLimit(1000),
		WithClock(func() time.Time { return now }),
		WithLogger(zap.NewNop()),
	)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchProjects(t *testing.T) {
	var languageCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/users/gardener/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "owner", r.URL.Query().Get("type"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, []map[string]interface{}{
			{"id": 1, "name": "seed-vault", "full_name": "gardener/seed-vault", "html_url": "https://github.com/gardener/seed-vault",
				"language": "Go", "topics": []string{"storage"}, "stargazers_count": 5,
				"created_at": "2023-01-01T00:00:00Z", "updated_at": "2025-05-20T00:00:00Z"},
			{"id": 2, "name": "forked", "full_name": "gardener/forked", "fork": true},
			{"id": 3, "name": "old-stuff", "full_name": "gardener/old-stuff", "archived": true},
			{"id": 4, "name": "secret", "full_name": "gardener/secret", "private": true},
			{"id": 5, "name": "gardener", "full_name": "gardener/gardener"},
			{"id": 6, "name": "tiny", "full_name": "gardener/tiny", "language": "",
				"created_at": "2025-05-25T00:00:00Z", "updated_at": "2025-05-26T00:00:00Z"},
		})
	})
	mux.HandleFunc("/repos/gardener/seed-vault/languages", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&languageCalls, 1)
		w.Write([]byte(`{"Go": 9000, "Shell": 300, "Makefile": 20, "Dockerfile": 10, "HCL": 5, "Nix": 1}`))
	})
	mux.HandleFunc("/repos/gardener/tiny/languages", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&languageCalls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := newTestClient(t, mux)
	projects, err := c.FetchProjects(context.Background(), "gardener", 12)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&languageCalls))

	seed := projects[0]
	assert.Equal(t, "1", seed.ID)
	assert.Equal(t, "Seed Vault", seed.Title)
	assert.Equal(t, "A GitHub repository project", seed.Description)
	assert.Equal(t, []string{"Go", "Shell", "Makefile", "Dockerfile", "HCL"}, seed.Technologies)
	assert.Equal(t, []string{"storage"}, seed.Topics)
	assert.Equal(t, portfolio.StatusMature, seed.Status)
	assert.Equal(t, "Jan 1, 2023", seed.CreatedAt)
	assert.Equal(t, "May 20, 2025", seed.LastUpdated)

	// language lookup failed and the repo reports none
	tiny := projects[1]
	assert.Equal(t, []string{"Code"}, tiny.Technologies)
	assert.Equal(t, portfolio.StatusBlooming, tiny.Status)
	assert.Equal(t, []string{}, tiny.Topics)
}

func TestFetchProjects_Limit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/u/repos", func(w http.ResponseWriter, r *http.Request) {
		var repos []map[string]interface{}
		for i := 1; i <= 15; i++ {
			repos = append(repos, map[string]interface{}{"id": i, "name": "r", "full_name": "u/r", "language": "Go"})
		}
		writeJSON(w, repos)
	})
	mux.HandleFunc("/repos/u/r/languages", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	projects, err := newTestClient(t, mux).FetchProjects(context.Background(), "u", 12)
	require.NoError(t, err)
	assert.Len(t, projects, 12)
	assert.Equal(t, "12", projects[11].ID)
	assert.Equal(t, []string{"Go"}, projects[0].Technologies)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		check   func(t *testing.T, err error)
	}{
		{"not found", http.StatusNotFound, nil, func(t *testing.T, err error) {
			var nf *apperrors.ErrGitHubNotFound
			assert.ErrorAs(t, err, &nf)
			assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
		}},
		{"unauthorized", http.StatusUnauthorized, nil, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, apperrors.ErrGitHubUnauthorized)
		}},
		{"rate limited", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": "1750000000"}, func(t *testing.T, err error) {
			var rl *apperrors.ErrGitHubRateLimited
			require.ErrorAs(t, err, &rl)
			assert.Equal(t, int64(1750000000), rl.ResetAt.Unix())
			assert.Equal(t, http.StatusTooManyRequests, apperrors.HTTPStatus(err))
		}},
		{"server error", http.StatusBadGateway, nil, func(t *testing.T, err error) {
			var rf *apperrors.ErrGitHubRequestFailed
			require.ErrorAs(t, err, &rf)
			assert.Equal(t, http.StatusBadGateway, rf.StatusCode)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeGitHub))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			_, err := c.ListUserRepos(context.Background(), "someone")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestAuthenticatedUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		writeJSON(w, map[string]string{"login": "gardener", "name": "Green Thumb"})
	}))
	u, err := c.AuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gardener", u.Login)
	assert.Equal(t, "Green Thumb", u.Name)

	anon := NewClient("http://127.0.0.1:0", WithLogger(zap.NewNop()))
	_, err = anon.AuthenticatedUser(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrGitHubUnauthorized)
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []Repo{})
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListUserRepos(ctx, "u")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeContext))
}

func TestFormatTitle(t *testing.T) {
	tests := map[string]string{
		"seed-vault":     "Seed Vault",
		"my_repo":        "My_repo",
		"dotfiles.v2":    "Dotfiles.V2",
		"already-Upper":  "Already Upper",
		"a--b":           "A  B",
		"":               "",
		"3d-force-graph": "3d Force Graph",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatTitle(in), "FormatTitle(%q)", in)
	}
}

func TestDetermineStatus(t *testing.T) {
	day := 24 * time.Hour
	ts := func(d time.Duration) string { return now.Add(-d).Format(time.RFC3339) }

	tests := []struct {
		name  string
		repo  Repo
		langs []string
		want  portfolio.ProjectStatus
	}{
		{"languages and stars", Repo{StargazersCount: 3, CreatedAt: ts(5 * day), UpdatedAt: ts(day)}, []string{"Go", "JS", "CSS"}, portfolio.StatusMature},
		{"homepage", Repo{Homepage: "https://x.dev", CreatedAt: ts(5 * day), UpdatedAt: ts(day)}, nil, portfolio.StatusMature},
		{"old and active", Repo{CreatedAt: ts(400 * day), UpdatedAt: ts(10 * day)}, nil, portfolio.StatusMature},
		{"old and idle", Repo{CreatedAt: ts(400 * day), UpdatedAt: ts(90 * day)}, nil, portfolio.StatusBlooming},
		{"two months", Repo{CreatedAt: ts(60 * day), UpdatedAt: ts(60 * day)}, nil, portfolio.StatusGrowing},
		{"few stars", Repo{StargazersCount: 2, CreatedAt: ts(5 * day), UpdatedAt: ts(day)}, []string{"Go", "JS", "CSS"}, portfolio.StatusBlooming},
		{"brand new", Repo{CreatedAt: ts(2 * day), UpdatedAt: ts(day)}, nil, portfolio.StatusBlooming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineStatus(tt.repo, tt.langs, now))
		})
	}
}

func TestOrderedKeys(t *testing.T) {
	keys, err := orderedKeys(json.RawMessage(`{"Zig": 1, "Ada": {"nested": true}, "C": 3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Zig", "Ada", "C"}, keys)

	_, err = orderedKeys(json.RawMessage(`["Go"]`))
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expected object"))
}
