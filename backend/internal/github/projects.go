package github

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"digital-garden/backend/internal/constants"
	"digital-garden/backend/internal/portfolio"
)

// FetchProjects lists the user's showcase repositories and converts them to
// projects. Forks, archived and private repositories are skipped along with
// the profile repository named after the user. At most limit projects are
// returned, in API order.
func (c *Client) FetchProjects(ctx context.Context, user string, limit int) ([]portfolio.Project, error) {
	repos, err := c.ListUserRepos(ctx, user)
	if err != nil {
		return nil, err
	}

	active := ShowcaseRepos(repos, user)
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	c.log.Info("Fetched repositories",
		zap.String("user", user),
		zap.Int("total", len(repos)),
		zap.Int("active", len(active)),
	)

	projects := make([]portfolio.Project, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.LanguageFetchConcurrency)
	for i, repo := range active {
		i, repo := i, repo
		g.Go(func() error {
			langs, err := c.Languages(gctx, repo.FullName)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// a missing language breakdown never drops the project
				c.log.Warn("Failed to fetch languages",
					zap.String("repo", repo.FullName),
					zap.Error(err),
				)
				langs = nil
			}
			projects[i] = ToProject(repo, langs, c.now())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return projects, nil
}

// ShowcaseRepos filters out forks, archived and private repositories and the
// profile repository whose name equals the user
func ShowcaseRepos(repos []Repo, user string) []Repo {
	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		if r.Fork || r.Archived || r.Private || r.Name == user {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ToProject converts a repository and its languages into a project
func ToProject(r Repo, langs []string, now time.Time) portfolio.Project {
	desc := r.Description
	if desc == "" {
		desc = constants.DefaultDescription
	}

	techs := langs
	if len(techs) == 0 {
		lang := r.Language
		if lang == "" {
			lang = constants.DefaultTechnology
		}
		techs = []string{lang}
	}

	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	return portfolio.Project{
		ID:           strconv.FormatInt(r.ID, 10),
		Title:        FormatTitle(r.Name),
		Description:  desc,
		Technologies: techs,
		Topics:       topics,
		GitHubURL:    r.HTMLURL,
		LiveURL:      r.Homepage,
		Status:       DetermineStatus(r, langs, now),
		LastUpdated:  formatDate(r.UpdatedAt),
		CreatedAt:    formatDate(r.CreatedAt),
	}
}

// FormatTitle turns a repository name into a display title: dashes become
// spaces and the first letter of every word is upper-cased.
func FormatTitle(name string) string {
	name = strings.ReplaceAll(name, "-", " ")
	b := []byte(name)
	prevWord := false
	for i, ch := range b {
		w := isWordByte(ch)
		if w && !prevWord && ch >= 'a' && ch <= 'z' {
			b[i] = ch - 'a' + 'A'
		}
		prevWord = w
	}
	return string(b)
}

func isWordByte(ch byte) bool {
	return ch == '_' || (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// DetermineStatus grades a repository's maturity. Mature repositories have
// several languages and some stars, a homepage, or a long history with
// recent activity. Repositories between one and six months old are growing;
// everything else is blooming.
func DetermineStatus(r Repo, langs []string, now time.Time) portfolio.ProjectStatus {
	created, createdOK := parseTime(r.CreatedAt)
	updated, updatedOK := parseTime(r.UpdatedAt)

	var age, idle time.Duration
	if createdOK {
		age = now.Sub(created)
	}
	if updatedOK {
		idle = now.Sub(updated)
	}

	switch {
	case len(langs) > constants.MatureMinLanguages && r.StargazersCount > constants.MatureMinStargazers,
		r.Homepage != "",
		createdOK && updatedOK && age > constants.MatureMinAge && idle < constants.MatureMaxIdle:
		return portfolio.StatusMature
	case createdOK && age > constants.GrowingMinAge && age < constants.MatureMinAge:
		return portfolio.StatusGrowing
	default:
		return portfolio.StatusBlooming
	}
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// formatDate renders an API timestamp the way project cards show dates
func formatDate(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.Format(constants.DisplayDateLayout)
}
