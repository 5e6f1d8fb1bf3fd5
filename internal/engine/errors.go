package engine

import (
	"errors"
	"fmt"
)

// SiteError represents a failure raised at a specific sample site.
type SiteError struct {
	// Code identifies the error category.
	Code SiteErrorCode

	// Site is the name of the offending sample site.
	Site string

	// Message is a human-readable description.
	Message string
}

// SiteErrorCode categorizes site errors.
type SiteErrorCode string

const (
	// ErrCodeInvalidSite indicates a malformed site call: empty name or
	// missing distribution.
	ErrCodeInvalidSite SiteErrorCode = "INVALID_SITE"

	// ErrCodeDuplicateSite indicates two draws shared one site name in a run.
	ErrCodeDuplicateSite SiteErrorCode = "DUPLICATE_SITE"

	// ErrCodeEnumUnsupported indicates enumeration was requested for a
	// distribution without enumerable support.
	ErrCodeEnumUnsupported SiteErrorCode = "ENUM_UNSUPPORTED"

	// ErrCodeMissingObservation indicates an observed site without a value.
	ErrCodeMissingObservation SiteErrorCode = "MISSING_OBSERVATION"

	// ErrCodeUnresolvedSite indicates a post-draw handler saw a message no
	// resolver filled in.
	ErrCodeUnresolvedSite SiteErrorCode = "UNRESOLVED_SITE"
)

// Error implements the error interface.
func (e *SiteError) Error() string {
	if e.Site != "" {
		return fmt.Sprintf("%s: %s (site=%s)", e.Code, e.Message, e.Site)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDuplicateSite reports whether err is a duplicate-site error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateSite(err error) bool {
	var se *SiteError
	return errors.As(err, &se) && se.Code == ErrCodeDuplicateSite
}

// IsEnumUnsupported reports whether err is an unsupported-enumeration error.
func IsEnumUnsupported(err error) bool {
	var se *SiteError
	return errors.As(err, &se) && se.Code == ErrCodeEnumUnsupported
}

// newSiteError builds a SiteError with a formatted message.
func newSiteError(code SiteErrorCode, site, format string, args ...any) *SiteError {
	return &SiteError{Code: code, Site: site, Message: fmt.Sprintf(format, args...)}
}
