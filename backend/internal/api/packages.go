package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"digital-garden/backend/internal/portfolio"
	"digital-garden/backend/internal/registry"
)

const attestationsKey = "attestations"

type attestationsResponse struct {
	Attestations []portfolio.PackageAttestation `json:"attestations"`
	Summary      registry.Summary               `json:"summary"`
}

// packageAttestations lists the manifest packages with their provenance
// status. The summary counts every package, not only the filtered ones.
func (s *Server) packageAttestations(c *gin.Context) {
	records, err := s.attestations.GetOrLoad(c.Request.Context(), attestationsKey, func(ctx context.Context) ([]portfolio.PackageAttestation, error) {
		m, err := s.store.Manifest()
		if err != nil {
			return nil, err
		}
		return s.registry.Attestations(ctx, m.Packages)
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attestationsResponse{
		Attestations: portfolio.FilterAttestations(records, c.Query("registry"), c.Query("q")),
		Summary:      registry.Summarize(records),
	})
}
