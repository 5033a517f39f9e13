package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"digital-garden/backend/internal/portfolio"
	apperrors "digital-garden/backend/pkg/errors"
	"digital-garden/backend/pkg/logger"
)

// NPMClient reads package metadata, provenance and download counts from npm
type NPMClient struct {
	httpClient  *http.Client
	registryURL string
	apiURL      string
	log         *zap.Logger
}

// NewNPMClient creates a client for the registry (registry.npmjs.org) and
// the downloads API (api.npmjs.org)
func NewNPMClient(registryURL, apiURL string, hc *http.Client) *NPMClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &NPMClient{
		httpClient:  hc,
		registryURL: strings.TrimRight(registryURL, "/"),
		apiURL:      strings.TrimRight(apiURL, "/"),
		log:         logger.Named("registry.npm"),
	}
}

type npmPackument struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	DistTags    map[string]string `json:"dist-tags"`
	License     json.RawMessage   `json:"license"`
	Maintainers []struct {
		Name string `json:"name"`
	} `json:"maintainers"`
	Time map[string]string `json:"time"`
}

type npmAttestations struct {
	Attestations []struct {
		PredicateType string `json:"predicateType"`
	} `json:"attestations"`
}

type npmDownloads struct {
	Downloads int64 `json:"downloads"`
}

// escapeName keeps the scope of scoped packages in one path segment
func escapeName(name string) string {
	return strings.Replace(name, "/", "%2F", 1)
}

// Lookup resolves the latest version of a package and its provenance status
func (c *NPMClient) Lookup(ctx context.Context, name string) (portfolio.PackageAttestation, error) {
	var pkg npmPackument
	if err := getJSON(ctx, c.httpClient, c.registryURL+"/"+escapeName(name), &pkg); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return portfolio.PackageAttestation{}, apperrors.NewRegistryPackageNotFound(string(portfolio.RegistryNPM), name)
		}
		return portfolio.PackageAttestation{}, apperrors.NewRegistryLookupFailed(string(portfolio.RegistryNPM), name, err)
	}

	version := pkg.DistTags["latest"]
	rec := portfolio.PackageAttestation{
		ID:          RecordID(portfolio.RegistryNPM, name),
		PackageName: name,
		Version:     version,
		Registry:    portfolio.RegistryNPM,
		Description: pkg.Description,
		PackageURL:  PackageURL(portfolio.RegistryNPM, name),
		PublishedAt: pkg.Time[version],
		License:     licenseName(pkg.License),
		Maintainers: make([]string, 0, len(pkg.Maintainers)),
	}
	for _, m := range pkg.Maintainers {
		if m.Name != "" {
			rec.Maintainers = append(rec.Maintainers, m.Name)
		}
	}

	rec.DownloadCount = c.downloads(ctx, name)

	if version == "" {
		rec.AttestationStatus = portfolio.AttestationPending
		return rec, nil
	}

	var att npmAttestations
	err := getJSON(ctx, c.httpClient, c.registryURL+"/-/npm/v1/attestations/"+escapeName(name)+"@"+version, &att)
	switch {
	case err == nil && len(att.Attestations) > 0:
		rec.AttestationStatus = portfolio.AttestationVerified
		rec.AttestationURL = rec.PackageURL + "/v/" + version + "#provenance"
	case err == nil, isStatus(err, http.StatusNotFound):
		rec.AttestationStatus = portfolio.AttestationUnverified
	default:
		c.log.Warn("Attestation lookup failed", zap.String("package", name), zap.Error(err))
		rec.AttestationStatus = portfolio.AttestationError
	}
	return rec, nil
}

// downloads returns last month's download count, zero when unavailable
func (c *NPMClient) downloads(ctx context.Context, name string) int64 {
	if c.apiURL == "" {
		return 0
	}
	var d npmDownloads
	if err := getJSON(ctx, c.httpClient, c.apiURL+"/downloads/point/last-month/"+name, &d); err != nil {
		c.log.Debug("Download count unavailable", zap.String("package", name), zap.Error(err))
		return 0
	}
	return d.Downloads
}

// licenseName accepts both "MIT" and the legacy {"type": "MIT"} form
func licenseName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Type
	}
	return ""
}
