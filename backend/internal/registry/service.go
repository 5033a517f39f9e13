package registry

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"digital-garden/backend/internal/constants"
	"digital-garden/backend/internal/portfolio"
	"digital-garden/backend/pkg/logger"
)

// Lookuper resolves one package on a registry
type Lookuper interface {
	Lookup(ctx context.Context, name string) (portfolio.PackageAttestation, error)
}

// Service fans manifest entries out to the registry clients
type Service struct {
	clients map[portfolio.Registry]Lookuper
	log     *zap.Logger
}

// NewService wires the npm and PyPI clients; either may be nil
func NewService(npm, pypi Lookuper) *Service {
	s := &Service{
		clients: make(map[portfolio.Registry]Lookuper),
		log:     logger.Named("registry"),
	}
	if npm != nil {
		s.clients[portfolio.RegistryNPM] = npm
	}
	if pypi != nil {
		s.clients[portfolio.RegistryPyPI] = pypi
	}
	return s
}

// Attestations looks up every entry concurrently and returns one record per
// entry in manifest order. Registries without a client yield pending records
// and failed lookups yield error records; only cancellation of ctx fails the
// call.
func (s *Service) Attestations(ctx context.Context, entries []ManifestEntry) ([]portfolio.PackageAttestation, error) {
	out := make([]portfolio.PackageAttestation, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.AttestationConcurrency)
	for i, e := range entries {
		i, e := i, e
		client, ok := s.clients[e.Registry]
		if !ok {
			out[i] = manifestRecord(e, portfolio.AttestationPending)
			continue
		}
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(gctx, constants.RegistryTimeout)
			defer cancel()

			rec, err := client.Lookup(lctx, e.Name)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("Package lookup failed",
					zap.String("registry", string(e.Registry)),
					zap.String("package", e.Name),
					zap.Error(err),
				)
				out[i] = manifestRecord(e, portfolio.AttestationError)
				return nil
			}
			if rec.Description == "" {
				rec.Description = e.Description
			}
			rec.ApplyDefaults()
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// clients fold a cancelled fetch into an error record
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// manifestRecord builds a record from manifest data alone
func manifestRecord(e ManifestEntry, status portfolio.AttestationStatus) portfolio.PackageAttestation {
	rec := portfolio.PackageAttestation{
		ID:                RecordID(e.Registry, e.Name),
		PackageName:       e.Name,
		Version:           e.Version,
		Registry:          e.Registry,
		Description:       e.Description,
		AttestationStatus: status,
		PackageURL:        PackageURL(e.Registry, e.Name),
	}
	rec.ApplyDefaults()
	return rec
}

// Summary counts records by outcome for the attestations page
type Summary struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
	// Issues are unverified or errored packages
	Issues int `json:"issues"`
}

// Summarize counts attestation outcomes
func Summarize(records []portfolio.PackageAttestation) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.AttestationStatus {
		case portfolio.AttestationVerified:
			s.Verified++
		case portfolio.AttestationPending:
			s.Pending++
		case portfolio.AttestationUnverified, portfolio.AttestationError:
			s.Issues++
		}
	}
	return s
}
