// Package content loads the static JSON and YAML files that back the site:
// profile config, curated projects, research papers, sponsorship tiers and
// the package manifest.
package content

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"digital-garden/backend/internal/portfolio"
	"digital-garden/backend/internal/registry"
	"digital-garden/backend/internal/sponsor"
	apperrors "digital-garden/backend/pkg/errors"
	"digital-garden/backend/pkg/logger"
)

// Static file names under the data directory
const (
	ConfigFile       = "config.json"
	ProjectsFile     = "projects.json"
	PapersFile       = "papers.json"
	SponsorshipsFile = "sponsorships.json"
)

// PublicFiles are served verbatim under /data
var PublicFiles = []string{ConfigFile, ProjectsFile, PapersFile, SponsorshipsFile}

// Store reads data files lazily and keeps them in memory until invalidated
type Store struct {
	dir          string
	manifestPath string

	mu    sync.RWMutex
	files map[string][]byte
	// gen changes on Invalidate; reads started before it do not write back
	gen uint64

	listenersMu sync.Mutex
	listeners   []func(name string)

	log *zap.Logger
}

// NewStore creates a store over dir. A relative manifest path is resolved
// against dir.
func NewStore(dir, manifestPath string) *Store {
	if manifestPath != "" && !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(dir, manifestPath)
	}
	return &Store{
		dir:          dir,
		manifestPath: manifestPath,
		files:        make(map[string][]byte),
		log:          logger.Named("content"),
	}
}

// Dir is the data directory
func (s *Store) Dir() string { return s.dir }

// OnChange registers fn to run after a watched file is invalidated
func (s *Store) OnChange(fn func(name string)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Invalidate drops the cached copy of a file and notifies listeners
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	s.gen++
	delete(s.files, name)
	s.mu.Unlock()

	s.listenersMu.Lock()
	listeners := append([]func(string){}, s.listeners...)
	s.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(name)
	}
}

func (s *Store) pathOf(name string) string {
	if s.manifestPath != "" && name == filepath.Base(s.manifestPath) {
		return s.manifestPath
	}
	return filepath.Join(s.dir, name)
}

// read returns file bytes, from memory when possible
func (s *Store) read(name string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.files[name]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := os.ReadFile(s.pathOf(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewContentNotFound(name, err)
		}
		return nil, apperrors.NewContentInvalid(name, err)
	}

	s.remember(name, data, gen)
	return data, nil
}

// remember caches data read under gen unless an Invalidate ran since
func (s *Store) remember(name string, data []byte, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.files[name] = data
	return true
}

func isPublic(name string) bool {
	for _, f := range PublicFiles {
		if f == name {
			return true
		}
	}
	return false
}

// Raw returns a public data file verbatim. Unknown names and missing files
// are not found; files that are not valid JSON are invalid.
func (s *Store) Raw(name string) ([]byte, error) {
	if !isPublic(name) {
		return nil, apperrors.NewContentNotFound(name, nil)
	}
	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, apperrors.NewContentInvalid(name, errors.New("not valid JSON"))
	}
	return data, nil
}

// decode reads name into out. found is false when the file does not exist.
func (s *Store) decode(name string, out interface{}) (found bool, err error) {
	data, err := s.read(name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return true, apperrors.NewContentInvalid(name, err)
	}
	return true, nil
}

// DefaultConfig is served when no config file exists
func DefaultConfig() portfolio.Config {
	c := portfolio.Config{
		Bio:    "I'm a passionate developer and researcher who believes in the power of open source and continuous learning.",
		Skills: []string{"React", "TypeScript", "Python", "Node.js"},
	}
	c.ApplyDefaults()
	return c
}

// Config returns the site profile with defaults applied
func (s *Store) Config() (portfolio.Config, error) {
	var c portfolio.Config
	found, err := s.decode(ConfigFile, &c)
	if err != nil {
		return portfolio.Config{}, err
	}
	if !found {
		return DefaultConfig(), nil
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return portfolio.Config{}, apperrors.NewContentInvalid(ConfigFile, err)
	}
	return c, nil
}

// Projects returns the curated projects; invalid records are skipped
func (s *Store) Projects() ([]portfolio.Project, error) {
	var raw []portfolio.Project
	if _, err := s.decode(ProjectsFile, &raw); err != nil {
		return nil, err
	}
	out := make([]portfolio.Project, 0, len(raw))
	for i := range raw {
		p := raw[i]
		p.ApplyDefaults()
		if err := p.Validate(); err != nil {
			s.log.Warn("Skipping invalid project", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Papers returns the research papers; invalid records are skipped
func (s *Store) Papers() ([]portfolio.ResearchPaper, error) {
	var raw []portfolio.ResearchPaper
	if _, err := s.decode(PapersFile, &raw); err != nil {
		return nil, err
	}
	out := make([]portfolio.ResearchPaper, 0, len(raw))
	for i := range raw {
		p := raw[i]
		p.ApplyDefaults()
		if err := p.Validate(); err != nil {
			s.log.Warn("Skipping invalid paper", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type sponsorshipsDoc struct {
	Tiers []portfolio.SponsorshipTier `json:"tiers"`
}

// Sponsorships returns the configured tiers, or the built-in tiers for
// account when the file is missing or lists none. Tiers without a sponsor
// link get one pointing at account.
func (s *Store) Sponsorships(account string) ([]portfolio.SponsorshipTier, error) {
	var doc sponsorshipsDoc
	found, err := s.decode(SponsorshipsFile, &doc)
	if err != nil {
		return nil, err
	}
	if !found || len(doc.Tiers) == 0 {
		return sponsor.DefaultTiers(account), nil
	}
	out := make([]portfolio.SponsorshipTier, 0, len(doc.Tiers))
	for _, t := range doc.Tiers {
		if t.GitHubSponsorsURL == "" && account != "" {
			t.GitHubSponsorsURL = sponsor.SponsorURL(account, t.ID)
		}
		if t.Benefits == nil {
			t.Benefits = []string{}
		}
		if err := t.Validate(); err != nil {
			s.log.Warn("Skipping invalid sponsorship tier", zap.String("id", t.ID), zap.Error(err))
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Manifest returns the package manifest, empty when none is configured
func (s *Store) Manifest() (*registry.Manifest, error) {
	if s.manifestPath == "" {
		return &registry.Manifest{Packages: []registry.ManifestEntry{}}, nil
	}
	name := filepath.Base(s.manifestPath)
	data, err := s.read(name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return &registry.Manifest{Packages: []registry.ManifestEntry{}}, nil
		}
		return nil, err
	}
	m, err := registry.ParseManifest(data)
	if err != nil {
		return nil, apperrors.NewContentInvalid(name, err)
	}
	return m, nil
}
