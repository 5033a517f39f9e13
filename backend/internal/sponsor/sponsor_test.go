package sponsor

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital-garden/backend/internal/portfolio"
	apperrors "digital-garden/backend/pkg/errors"
)

func TestSponsorURL(t *testing.T) {
	assert.Equal(t, "https://github.com/sponsors/gardener?tier_id=seedling", SponsorURL("gardener", "seedling"))
	assert.Equal(t, "https://github.com/sponsors/gardener", SponsorURL("gardener", ""))
}

func TestDefaultTiers(t *testing.T) {
	tiers := DefaultTiers("gardener")
	require.Len(t, tiers, 4)

	var amounts []int
	for _, tier := range tiers {
		amounts = append(amounts, tier.Amount)
		assert.NoError(t, tier.Validate())
	}
	assert.Equal(t, []int{5, 15, 25, 50}, amounts)
	assert.Equal(t, "https://github.com/sponsors/gardener?tier_id=bespoke", tiers[3].GitHubSponsorsURL)

	bare := DefaultTiers("")
	assert.Empty(t, bare[0].GitHubSponsorsURL)

	tier, ok := FindTier(tiers, "mature")
	require.True(t, ok)
	assert.Equal(t, 25, tier.Amount)
	_, ok = FindTier(tiers, "oak")
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	tier := &portfolio.SponsorshipTier{ID: "growing", Amount: 15}
	assert.Equal(t, "General Support $15/month", Summary(tier, nil))
	assert.Equal(t, "Seed Vault $15/month", Summary(tier, &portfolio.Project{Title: "Seed Vault"}))
	assert.Equal(t, "General Support", Summary(nil, nil))
}

func TestBitcoinURI(t *testing.T) {
	uri, err := BitcoinURI(" bc1qgarden ", 0)
	require.NoError(t, err)
	assert.Equal(t, "bitcoin:bc1qgarden", uri)

	uri, err = BitcoinURI("bc1qgarden", 0.0005)
	require.NoError(t, err)
	assert.Equal(t, "bitcoin:bc1qgarden?amount=0.0005", uri)

	_, err = BitcoinURI("", 1)
	assert.ErrorIs(t, err, apperrors.ErrBitcoinNotConfigured)
}

func TestQRCode(t *testing.T) {
	data, err := QRCode("bc1qgarden", 0, 128)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	data, err = QRCode("bc1qgarden", 0, 5000)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, MaxQRSize, img.Bounds().Dx())

	_, err = QRCode("", 0, 128)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}
