package internal

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Limits applied by InputValidator
const (
	MaxIDLength    = 100
	MaxQueryLength = 500
	DefaultLimit   = 10
	MaxLimit       = 100
)

// InputValidator provides input validation and sanitization for cache and upstream operations
type InputValidator struct {
	maxIDLength    int
	maxQueryLength int
	maxLimit       int
}

// NewInputValidator creates a new input validator with default settings
func NewInputValidator() *InputValidator {
	return &InputValidator{
		maxIDLength:    MaxIDLength,
		maxQueryLength: MaxQueryLength,
		maxLimit:       MaxLimit,
	}
}

// ValidateID validates an internal or external entity identifier and returns it trimmed
func (v *InputValidator) ValidateID(id, fieldName string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", NewValidationError(fmt.Sprintf("%s cannot be empty", fieldName), nil)
	}

	if len(trimmed) > v.maxIDLength {
		return "", NewValidationError(fmt.Sprintf("%s exceeds maximum length of %d characters", fieldName, v.maxIDLength), nil)
	}

	if !utf8.ValidString(trimmed) {
		return "", NewValidationError(fmt.Sprintf("%s contains invalid UTF-8 characters", fieldName), nil)
	}

	for i, r := range trimmed {
		if unicode.IsControl(r) {
			return "", NewValidationError(fmt.Sprintf("%s contains control character at position %d", fieldName, i), nil)
		}
	}

	if strings.Contains(trimmed, "..") {
		return "", NewValidationError(fmt.Sprintf("%s contains path traversal sequence", fieldName), nil)
	}

	return trimmed, nil
}

// ValidateQuery validates free-text search input. Tabs and newlines are
// collapsed to spaces; other control characters are rejected.
func (v *InputValidator) ValidateQuery(query string) (string, error) {
	if !utf8.ValidString(query) {
		return "", NewValidationError("query contains invalid UTF-8 characters", nil)
	}

	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		case 0:
			return -1
		}
		return r
	}, query)
	sanitized = strings.TrimSpace(sanitized)

	if sanitized == "" {
		return "", NewValidationError("query cannot be empty", nil)
	}

	if len(sanitized) > v.maxQueryLength {
		return "", NewValidationError(fmt.Sprintf("query exceeds maximum length of %d bytes", v.maxQueryLength), nil)
	}

	for i, r := range sanitized {
		if unicode.IsControl(r) {
			return "", NewValidationError(fmt.Sprintf("query contains control character at position %d", i), nil)
		}
	}

	return sanitized, nil
}

// ValidateLimit returns DefaultLimit for zero and rejects negative or oversized limits
func (v *InputValidator) ValidateLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, NewValidationError(fmt.Sprintf("limit cannot be negative, got %d", limit), nil)
	}
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit > v.maxLimit {
		return 0, NewValidationError(fmt.Sprintf("limit exceeds maximum of %d, got %d", v.maxLimit, limit), nil)
	}
	return limit, nil
}

// ValidateContext validates context for timeout and cancellation
func (v *InputValidator) ValidateContext(ctx context.Context) error {
	if ctx == nil {
		return NewValidationError("context cannot be nil", nil)
	}

	select {
	case <-ctx.Done():
		return NewValidationError("context is already cancelled", ctx.Err())
	default:
		return nil
	}
}

// ValidateTTL validates time-to-live duration
func (v *InputValidator) ValidateTTL(ttl time.Duration, allowZero bool) error {
	if ttl < 0 {
		return NewValidationError("TTL cannot be negative", nil)
	}

	if !allowZero && ttl == 0 {
		return NewValidationError("TTL cannot be zero", nil)
	}

	maxTTL := 365 * 24 * time.Hour
	if ttl > maxTTL {
		return NewValidationError(fmt.Sprintf("TTL exceeds maximum allowed duration of %v", maxTTL), nil)
	}

	return nil
}

// ValidateCleanupPattern validates cleanup patterns so only cache namespaces can be removed
func (v *InputValidator) ValidateCleanupPattern(pattern string) error {
	if pattern == "" {
		return NewValidationError("cleanup pattern cannot be empty", nil)
	}

	for _, dangerous := range []string{"*", "/*", ".."} {
		if pattern == dangerous {
			return NewValidationError(fmt.Sprintf("cleanup pattern '%s' is too dangerous", pattern), nil)
		}
	}

	for _, namespace := range []string{NamespaceAlbums, NamespaceArtists, NamespaceReleaseGroups, NamespaceSearch, NamespaceCoverArt, NamespaceIndex} {
		if strings.HasPrefix(pattern, "/"+namespace+"/") {
			return nil
		}
	}

	return NewValidationError("cleanup pattern must start with a cache namespace such as /albums/ or /search/", nil)
}

// ValidateEntityData validates entity data before storage
func (v *InputValidator) ValidateEntityData(entity interface{ Validate() error }, fieldName string) error {
	if entity == nil {
		return NewValidationError(fmt.Sprintf("%s cannot be nil", fieldName), nil)
	}
	if err := entity.Validate(); err != nil {
		return NewValidationError(fmt.Sprintf("invalid %s", fieldName), err)
	}
	return nil
}
