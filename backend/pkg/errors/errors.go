package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGitHub represents GitHub API errors
	ErrorTypeGitHub ErrorType = "github"
	// ErrorTypeRegistry represents npm/PyPI registry errors
	ErrorTypeRegistry ErrorType = "registry"
	// ErrorTypeContent represents static content errors
	ErrorTypeContent ErrorType = "content"
	// ErrorTypeGraph represents knowledge graph and Neo4j errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeSponsor represents sponsorship errors
	ErrorTypeSponsor ErrorType = "sponsor"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Category returns the error type; promoted to every error embedding BaseError.
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// GitHub Errors

// ErrGitHubNotConfigured is returned when no GitHub username is configured
var ErrGitHubNotConfigured = NewBaseError(ErrorTypeGitHub, "GitHub username not configured", nil)

// ErrGitHubUnauthorized is returned when the token is rejected
var ErrGitHubUnauthorized = NewBaseError(ErrorTypeGitHub, "GitHub API authentication failed", nil)

// ErrGitHubRequestFailed is returned for non-success GitHub responses
type ErrGitHubRequestFailed struct {
	*BaseError
	Endpoint   string
	StatusCode int
}

func NewGitHubRequestFailed(endpoint string, statusCode int, err error) *ErrGitHubRequestFailed {
	return &ErrGitHubRequestFailed{
		BaseError:  NewBaseError(ErrorTypeGitHub, fmt.Sprintf("GitHub API error: %s (status %d)", endpoint, statusCode), err),
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// ErrGitHubNotFound is returned when a user or repository does not exist
type ErrGitHubNotFound struct {
	*BaseError
	Resource string
}

func NewGitHubNotFound(resource string) *ErrGitHubNotFound {
	return &ErrGitHubNotFound{
		BaseError: NewBaseError(ErrorTypeGitHub, fmt.Sprintf("not found: %s", resource), nil),
		Resource:  resource,
	}
}

// ErrGitHubRateLimited is returned when the API rate limit is exhausted
type ErrGitHubRateLimited struct {
	*BaseError
	ResetAt time.Time
}

func NewGitHubRateLimited(resetAt time.Time) *ErrGitHubRateLimited {
	return &ErrGitHubRateLimited{
		BaseError: NewBaseError(ErrorTypeGitHub, "GitHub API rate limit exceeded", nil),
		ResetAt:   resetAt,
	}
}

// Registry Errors

// ErrRegistryPackageNotFound is returned when a registry has no such package
type ErrRegistryPackageNotFound struct {
	*BaseError
	Registry string
	Package  string
}

func NewRegistryPackageNotFound(registry, pkg string) *ErrRegistryPackageNotFound {
	return &ErrRegistryPackageNotFound{
		BaseError: NewBaseError(ErrorTypeRegistry, fmt.Sprintf("%s package not found: %s", registry, pkg), nil),
		Registry:  registry,
		Package:   pkg,
	}
}

// ErrRegistryLookupFailed is returned when a registry request fails
type ErrRegistryLookupFailed struct {
	*BaseError
	Registry string
	Package  string
}

func NewRegistryLookupFailed(registry, pkg string, err error) *ErrRegistryLookupFailed {
	return &ErrRegistryLookupFailed{
		BaseError: NewBaseError(ErrorTypeRegistry, fmt.Sprintf("%s lookup failed: %s", registry, pkg), err),
		Registry:  registry,
		Package:   pkg,
	}
}

// Content Errors

// ErrContentNotFound is returned when a static data file is missing
type ErrContentNotFound struct {
	*BaseError
	Name string
}

func NewContentNotFound(name string, err error) *ErrContentNotFound {
	return &ErrContentNotFound{
		BaseError: NewBaseError(ErrorTypeContent, fmt.Sprintf("content not found: %s", name), err),
		Name:      name,
	}
}

// ErrContentInvalid is returned when a static data file cannot be decoded or validated
type ErrContentInvalid struct {
	*BaseError
	Name string
}

func NewContentInvalid(name string, err error) *ErrContentInvalid {
	return &ErrContentInvalid{
		BaseError: NewBaseError(ErrorTypeContent, fmt.Sprintf("invalid content: %s", name), err),
		Name:      name,
	}
}

// Graph Errors

// ErrGraphInvalidGrouping is returned for an unknown grouping mode
type ErrGraphInvalidGrouping struct {
	*BaseError
	Mode string
}

func NewGraphInvalidGrouping(mode string) *ErrGraphInvalidGrouping {
	return &ErrGraphInvalidGrouping{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("unknown grouping mode %q: must be topic, technology, status, or year", mode), nil),
		Mode:      mode,
	}
}

// ErrGraphNodeNotFound is returned when a node id is not in the graph
type ErrGraphNodeNotFound struct {
	*BaseError
	NodeID string
}

func NewGraphNodeNotFound(nodeID string) *ErrGraphNodeNotFound {
	return &ErrGraphNodeNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("node not found: %s", nodeID), nil),
		NodeID:    nodeID,
	}
}

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// Sponsor Errors

// ErrBitcoinNotConfigured is returned when no Bitcoin address is configured
var ErrBitcoinNotConfigured = NewBaseError(ErrorTypeSponsor, "bitcoin address not configured", nil)

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// ErrContextTimeout is returned when context times out
type ErrContextTimeout struct {
	*BaseError
	Operation string
	Timeout   time.Duration
}

func NewContextTimeout(operation string, timeout time.Duration) *ErrContextTimeout {
	return &ErrContextTimeout{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context timeout: %s (timeout: %v)", operation, timeout), nil),
		Operation: operation,
		Timeout:   timeout,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type categorized interface {
	Category() ErrorType
}

// IsErrorType checks if any error in the chain is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if c, ok := err.(categorized); ok && c.Category() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	var rateLimited *ErrGitHubRateLimited
	if stderrors.As(err, &rateLimited) {
		return true
	}
	var ghFailed *ErrGitHubRequestFailed
	if stderrors.As(err, &ghFailed) {
		return ghFailed.StatusCode >= 500
	}
	var lookup *ErrRegistryLookupFailed
	if stderrors.As(err, &lookup) {
		return true
	}
	// Graph connection errors are retryable
	var conn *ErrGraphConnectionFailed
	return stderrors.As(err, &conn)
}

// IsNotFound reports whether err means the requested resource does not exist
func IsNotFound(err error) bool {
	return HTTPStatus(err) == http.StatusNotFound
}

// HTTPStatus maps an error to the status code the REST proxy responds with
func HTTPStatus(err error) int {
	var (
		ghNotFound   *ErrGitHubNotFound
		pkgNotFound  *ErrRegistryPackageNotFound
		contentMiss  *ErrContentNotFound
		nodeMiss     *ErrGraphNodeNotFound
		badGrouping  *ErrGraphInvalidGrouping
		rateLimited  *ErrGitHubRateLimited
		ghFailed     *ErrGitHubRequestFailed
		timeoutError *ErrContextTimeout
	)
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &ghNotFound), stderrors.As(err, &pkgNotFound),
		stderrors.As(err, &contentMiss), stderrors.As(err, &nodeMiss),
		stderrors.Is(err, ErrBitcoinNotConfigured):
		return http.StatusNotFound
	case stderrors.As(err, &badGrouping):
		return http.StatusBadRequest
	case stderrors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case stderrors.Is(err, ErrGitHubNotConfigured):
		return http.StatusServiceUnavailable
	case stderrors.As(err, &ghFailed), stderrors.Is(err, ErrGitHubUnauthorized),
		IsErrorType(err, ErrorTypeRegistry):
		return http.StatusBadGateway
	case stderrors.As(err, &timeoutError):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
