// Package sponsor builds GitHub Sponsors links, the built-in tier list and
// Bitcoin payment QR codes.
package sponsor

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"digital-garden/backend/internal/portfolio"
	apperrors "digital-garden/backend/pkg/errors"
)

// GeneralSupport labels a sponsorship not tied to a project
const GeneralSupport = "General Support"

// QR code sizing bounds in pixels
const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// SponsorURL links to a tier on the account's GitHub Sponsors page
func SponsorURL(account, tierID string) string {
	u := "https://github.com/sponsors/" + url.PathEscape(account)
	if tierID == "" {
		return u
	}
	return u + "?tier_id=" + url.QueryEscape(tierID)
}

// DefaultTiers is the tier list used when no sponsorships file exists
func DefaultTiers(account string) []portfolio.SponsorshipTier {
	tiers := []portfolio.SponsorshipTier{
		{
			ID:          "seedling",
			Name:        "🌱 Seedling",
			Amount:      5,
			Description: "Plant seeds for future growth",
			Benefits:    []string{"Supporter badge on GitHub", "Early access to updates", "Community Discord access"},
		},
		{
			ID:          "growing",
			Name:        "🌿 Growing",
			Amount:      15,
			Description: "Nurture ongoing development",
			Benefits:    []string{"Priority issue responses", "Name in project credits", "Monthly progress reports", "All Seedling benefits"},
		},
		{
			ID:          "mature",
			Name:        "🌳 Mature",
			Amount:      25,
			Description: "Support established projects",
			Benefits:    []string{"Feature request priority", "1-on-1 monthly calls", "Logo/link on project pages", "All previous benefits"},
		},
		{
			ID:          "bespoke",
			Name:        "🌺 Bespoke",
			Amount:      50,
			Description: "Custom sponsorship arrangement",
			Benefits:    []string{"Custom sponsorship terms", "Direct collaboration opportunities", "Dedicated support channel", "All previous benefits"},
		},
	}
	if account != "" {
		for i := range tiers {
			tiers[i].GitHubSponsorsURL = SponsorURL(account, tiers[i].ID)
		}
	}
	return tiers
}

// FindTier looks a tier up by id
func FindTier(tiers []portfolio.SponsorshipTier, id string) (portfolio.SponsorshipTier, bool) {
	for _, t := range tiers {
		if t.ID == id {
			return t, true
		}
	}
	return portfolio.SponsorshipTier{}, false
}

// Summary describes a sponsorship choice, e.g. "Seed Vault $15/month".
// A nil project means general support; a nil tier omits the amount.
func Summary(tier *portfolio.SponsorshipTier, project *portfolio.Project) string {
	label := GeneralSupport
	if project != nil && project.Title != "" {
		label = project.Title
	}
	amount := ""
	if tier != nil {
		amount = fmt.Sprintf("$%d/month", tier.Amount)
	}
	return strings.TrimSpace(label + " " + amount)
}

// BitcoinURI builds a BIP-21 payment URI. A non-positive amount is omitted.
func BitcoinURI(address string, amountBTC float64) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", apperrors.ErrBitcoinNotConfigured
	}
	uri := "bitcoin:" + address
	if amountBTC > 0 {
		uri += "?amount=" + strconv.FormatFloat(amountBTC, 'f', -1, 64)
	}
	return uri, nil
}

// QRCode renders the payment URI for address as a PNG of size x size pixels
func QRCode(address string, amountBTC float64, size int) ([]byte, error) {
	uri, err := BitcoinURI(address, amountBTC)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	if size < MinQRSize {
		size = MinQRSize
	}
	if size > MaxQRSize {
		size = MaxQRSize
	}
	png, err := qrcode.Encode(uri, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
