package constants

import "time"

// Knowledge graph sizing
const (
	// RepositoryBaseVal is the size of a repository node with no technologies
	RepositoryBaseVal = 8
	// RepositoryValPerTechnology grows a repository node per listed technology
	RepositoryValPerTechnology = 2
	// GroupNodeVal is the size of every group node; larger than most repositories
	GroupNodeVal = 15
	// DefaultNodeVal is used by the renderer when a node carries no size
	DefaultNodeVal = 10
	// LinkValue is the strength of every repository-group link
	LinkValue = 1
	// UnknownStatus groups projects that carry no status in status mode
	UnknownStatus = "unknown"
)

// GitHub source
const (
	// ReposPerPage is the page size requested from the repos listing
	ReposPerPage = 20
	// MaxLanguagesPerRepo caps the technologies taken from the languages endpoint
	MaxLanguagesPerRepo = 5
	// LanguageFetchConcurrency bounds parallel languages requests
	LanguageFetchConcurrency = 4
	// DefaultDescription is used for repositories without a description
	DefaultDescription = "A GitHub repository project"
	// DefaultTechnology is used when a repository reports no language at all
	DefaultTechnology = "Code"
	// DisplayDateLayout formats project dates the way cards show them
	DisplayDateLayout = "Jan 2, 2006"
)

// Project maturity thresholds
const (
	MatureMinAge        = 180 * 24 * time.Hour
	MatureMaxIdle       = 30 * 24 * time.Hour
	GrowingMinAge       = 30 * 24 * time.Hour
	MatureMinLanguages  = 2
	MatureMinStargazers = 2
)

// Registry lookups
const (
	// AttestationConcurrency bounds parallel registry lookups
	AttestationConcurrency = 6
	// RegistryTimeout bounds a single registry lookup
	RegistryTimeout = 15 * time.Second
)

// HTTP
const (
	// RequestIDHeader carries the per-request id in and out of the server
	RequestIDHeader = "X-Request-ID"
	// UserAgent identifies outbound requests
	UserAgent = "DigitalGarden/1.0"
)
