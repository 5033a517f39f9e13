// Package registry looks up published packages on npm and PyPI and reports
// whether their latest release carries a provenance attestation.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"digital-garden/backend/internal/portfolio"
)

// ManifestEntry names one package to report on
type ManifestEntry struct {
	Name        string             `yaml:"name"`
	Registry    portfolio.Registry `yaml:"registry"`
	Version     string             `yaml:"version,omitempty"`
	Description string             `yaml:"description,omitempty"`
}

// Manifest is the list of packages shown on the attestations page
type Manifest struct {
	Packages []ManifestEntry `yaml:"packages"`
}

// ParseManifest decodes a YAML manifest, rejecting unknown fields,
// unnamed packages and unsupported registries
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &Manifest{Packages: []ManifestEntry{}}, nil
		}
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	for i := range m.Packages {
		e := &m.Packages[i]
		e.Name = strings.TrimSpace(e.Name)
		e.Registry = portfolio.Registry(strings.ToLower(strings.TrimSpace(string(e.Registry))))
		if e.Name == "" {
			return nil, fmt.Errorf("manifest entry %d has no name", i)
		}
		if !knownRegistry(e.Registry) {
			return nil, fmt.Errorf("manifest entry %s: unsupported registry %q", e.Name, e.Registry)
		}
	}
	if m.Packages == nil {
		m.Packages = []ManifestEntry{}
	}
	return &m, nil
}

func knownRegistry(r portfolio.Registry) bool {
	switch r {
	case portfolio.RegistryNPM, portfolio.RegistryPyPI, portfolio.RegistryCargo,
		portfolio.RegistryNuGet, portfolio.RegistryMaven:
		return true
	}
	return false
}

// PackageURL is the public page of a package on its registry
func PackageURL(r portfolio.Registry, name string) string {
	switch r {
	case portfolio.RegistryNPM:
		return "https://www.npmjs.com/package/" + name
	case portfolio.RegistryPyPI:
		return "https://pypi.org/project/" + url.PathEscape(name) + "/"
	case portfolio.RegistryCargo:
		return "https://crates.io/crates/" + url.PathEscape(name)
	case portfolio.RegistryNuGet:
		return "https://www.nuget.org/packages/" + url.PathEscape(name)
	case portfolio.RegistryMaven:
		// group:artifact coordinates
		return "https://central.sonatype.com/artifact/" + strings.ReplaceAll(name, ":", "/")
	default:
		return ""
	}
}

// RecordID is a stable id for a package, so cached and fresh lookups agree
func RecordID(r portfolio.Registry, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(PackageURL(r, name))).String()
}
