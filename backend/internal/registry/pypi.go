package registry

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"digital-garden/backend/internal/portfolio"
	apperrors "digital-garden/backend/pkg/errors"
	"digital-garden/backend/pkg/logger"
)

// PyPIClient reads package metadata and PEP 740 provenance from PyPI
type PyPIClient struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

// NewPyPIClient creates a client against baseURL, e.g. https://pypi.org
func NewPyPIClient(baseURL string, hc *http.Client) *PyPIClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &PyPIClient{
		httpClient: hc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        logger.Named("registry.pypi"),
	}
}

type pypiProject struct {
	Info struct {
		Name       string `json:"name"`
		Version    string `json:"version"`
		Summary    string `json:"summary"`
		License    string `json:"license"`
		Author     string `json:"author"`
		Maintainer string `json:"maintainer"`
	} `json:"info"`
	URLs []struct {
		Filename   string `json:"filename"`
		UploadTime string `json:"upload_time_iso_8601"`
	} `json:"urls"`
}

// Lookup resolves the latest release and checks the provenance of its first file
func (c *PyPIClient) Lookup(ctx context.Context, name string) (portfolio.PackageAttestation, error) {
	var proj pypiProject
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/pypi/"+url.PathEscape(name)+"/json", &proj); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return portfolio.PackageAttestation{}, apperrors.NewRegistryPackageNotFound(string(portfolio.RegistryPyPI), name)
		}
		return portfolio.PackageAttestation{}, apperrors.NewRegistryLookupFailed(string(portfolio.RegistryPyPI), name, err)
	}

	info := proj.Info
	rec := portfolio.PackageAttestation{
		ID:          RecordID(portfolio.RegistryPyPI, name),
		PackageName: name,
		Version:     info.Version,
		Registry:    portfolio.RegistryPyPI,
		Description: info.Summary,
		PackageURL:  PackageURL(portfolio.RegistryPyPI, name),
		License:     firstLine(info.License),
		Maintainers: uniqueNonEmpty(info.Author, info.Maintainer),
	}

	if len(proj.URLs) == 0 || info.Version == "" {
		rec.AttestationStatus = portfolio.AttestationPending
		return rec, nil
	}
	file := proj.URLs[0]
	rec.PublishedAt = file.UploadTime

	provenance := c.baseURL + "/integrity/" + url.PathEscape(name) + "/" + url.PathEscape(info.Version) + "/" + url.PathEscape(file.Filename) + "/provenance"
	err := getJSON(ctx, c.httpClient, provenance, nil)
	switch {
	case err == nil:
		rec.AttestationStatus = portfolio.AttestationVerified
		rec.AttestationURL = provenance
	case isStatus(err, http.StatusNotFound):
		rec.AttestationStatus = portfolio.AttestationUnverified
	default:
		c.log.Warn("Provenance lookup failed", zap.String("package", name), zap.Error(err))
		rec.AttestationStatus = portfolio.AttestationError
	}
	return rec, nil
}

// firstLine trims full license texts pasted into the license field
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func uniqueNonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
