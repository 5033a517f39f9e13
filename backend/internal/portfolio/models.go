package portfolio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ProjectStatus is how far a project has grown
type ProjectStatus string

const (
	StatusBlooming ProjectStatus = "blooming"
	StatusGrowing  ProjectStatus = "growing"
	StatusMature   ProjectStatus = "mature"
)

// PaperStatus is the publication state of a research paper
type PaperStatus string

const (
	PaperPublished PaperStatus = "published"
	PaperPreprint  PaperStatus = "preprint"
	PaperInReview  PaperStatus = "in-review"
)

// Registry identifies a package registry
type Registry string

const (
	RegistryNPM   Registry = "npm"
	RegistryPyPI  Registry = "pypi"
	RegistryCargo Registry = "cargo"
	RegistryNuGet Registry = "nuget"
	RegistryMaven Registry = "maven"
)

// AttestationStatus is the provenance state of a published package version
type AttestationStatus string

const (
	AttestationVerified   AttestationStatus = "verified"
	AttestationUnverified AttestationStatus = "unverified"
	AttestationPending    AttestationStatus = "pending"
	AttestationError      AttestationStatus = "error"
)

// Project is a portfolio entry, usually derived from a GitHub repository
type Project struct {
	ID           string        `json:"id" validate:"required"`
	Title        string        `json:"title" validate:"required"`
	Description  string        `json:"description"`
	Technologies []string      `json:"technologies"`
	Topics       []string      `json:"topics"`
	GitHubURL    string        `json:"githubUrl,omitempty" validate:"omitempty,url"`
	LiveURL      string        `json:"liveUrl,omitempty" validate:"omitempty,url"`
	Status       ProjectStatus `json:"status" validate:"omitempty,oneof=blooming growing mature"`
	LastUpdated  string        `json:"lastUpdated"`
	CreatedAt    string        `json:"createdAt"`
}

// ResearchPaper is a published or in-progress paper
type ResearchPaper struct {
	ID         string      `json:"id" validate:"required"`
	Title      string      `json:"title" validate:"required"`
	Authors    []string    `json:"authors" validate:"required,min=1"`
	Abstract   string      `json:"abstract"`
	Journal    string      `json:"journal,omitempty"`
	Conference string      `json:"conference,omitempty"`
	Year       int         `json:"year" validate:"required,gte=1900"`
	DOI        string      `json:"doi,omitempty"`
	PDFURL     string      `json:"pdfUrl,omitempty" validate:"omitempty,url"`
	Tags       []string    `json:"tags"`
	Status     PaperStatus `json:"status" validate:"omitempty,oneof=published preprint in-review"`
	CreatedAt  string      `json:"createdAt"`
}

// Config is the owner profile shown across the site
type Config struct {
	Name           string   `json:"name"`
	Tagline        string   `json:"tagline"`
	Bio            string   `json:"bio"`
	Skills         []string `json:"skills"`
	Location       string   `json:"location"`
	BitcoinAddress string   `json:"bitcoinAddress,omitempty"`
	GitHubUsername string   `json:"githubUsername,omitempty"`
	Email          string   `json:"email,omitempty" validate:"omitempty,email"`
}

// SponsorshipTier is a recurring GitHub Sponsors option
type SponsorshipTier struct {
	ID                string   `json:"id" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	Amount            int      `json:"amount" validate:"gt=0"`
	Description       string   `json:"description"`
	Benefits          []string `json:"benefits"`
	GitHubSponsorsURL string   `json:"githubSponsorsUrl" validate:"omitempty,url"`
}

// PackageAttestation is the provenance record of a published package
type PackageAttestation struct {
	ID                string            `json:"id"`
	PackageName       string            `json:"packageName" validate:"required"`
	Version           string            `json:"version"`
	Registry          Registry          `json:"registry" validate:"required,oneof=npm pypi cargo nuget maven"`
	Description       string            `json:"description,omitempty"`
	AttestationStatus AttestationStatus `json:"attestationStatus" validate:"required,oneof=verified unverified pending error"`
	AttestationURL    string            `json:"attestationUrl,omitempty"`
	PackageURL        string            `json:"packageUrl"`
	PublishedAt       string            `json:"publishedAt"`
	DownloadCount     int64             `json:"downloadCount,omitempty"`
	License           string            `json:"license,omitempty"`
	Maintainers       []string          `json:"maintainers"`
}

// Defaults for Config when fields are absent
const (
	DefaultName     = "Digital Garden"
	DefaultTagline  = "A place where ideas grow and projects bloom"
	DefaultLocation = "Based in the Cloud"
)

// ApplyDefaults fills fields that the schema gives default values
func (p *Project) ApplyDefaults() {
	if p.Status == "" {
		p.Status = StatusGrowing
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Topics == nil {
		p.Topics = []string{}
	}
}

// ApplyDefaults fills fields that the schema gives default values
func (p *ResearchPaper) ApplyDefaults() {
	if p.Status == "" {
		p.Status = PaperPreprint
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Abstract = PlainText(p.Abstract)
}

// ApplyDefaults fills fields that the schema gives default values
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Tagline == "" {
		c.Tagline = DefaultTagline
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
}

// ApplyDefaults normalizes empty collections
func (a *PackageAttestation) ApplyDefaults() {
	if a.Maintainers == nil {
		a.Maintainers = []string{}
	}
	if a.AttestationStatus == "" {
		a.AttestationStatus = AttestationPending
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the project against its schema
func (p *Project) Validate() error {
	return validateStruct("project", p.ID, p)
}

// Validate checks the paper against its schema
func (p *ResearchPaper) Validate() error {
	return validateStruct("paper", p.ID, p)
}

// Validate checks the config against its schema
func (c *Config) Validate() error {
	return validateStruct("config", c.Name, c)
}

// Validate checks the tier against its schema
func (t *SponsorshipTier) Validate() error {
	return validateStruct("sponsorship tier", t.ID, t)
}

// Validate checks the attestation record against its schema
func (a *PackageAttestation) Validate() error {
	return validateStruct("package", a.PackageName, a)
}

func validateStruct(kind, id string, v interface{}) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s %q invalid: %s", kind, id, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%s %q invalid: %w", kind, id, err)
}
