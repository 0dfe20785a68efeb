// Package errors provides structured error handling for subseek.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (index files, disk)
//   - 3XX: Index/network errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

import "strings"

// Category classifies an error by what went wrong.
type Category string

const (
	CategoryConfig     Category = "CONFIG"     // bad or missing configuration
	CategoryIO         Category = "IO"         // index files, disk
	CategoryNetwork    Category = "NETWORK"    // backend reachability
	CategoryValidation Category = "VALIDATION" // rejected caller input
	CategoryInternal   Category = "INTERNAL"   // everything unexpected
)

// Severity grades how a caller should react.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"   // unrecoverable, abort
	SeverityError   Severity = "ERROR"   // operation failed, caller continues
	SeverityWarning Severity = "WARNING" // degraded, continuing
	SeverityInfo    Severity = "INFO"    // informational only
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeBackendUnknown = "ERR_103_BACKEND_UNKNOWN"

	// IO errors (200-299)
	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"
	ErrCodeIndexLocked  = "ERR_202_INDEX_LOCKED"
	ErrCodeCorruptIndex = "ERR_203_CORRUPT_INDEX"
	ErrCodeFileCorrupt  = "ERR_204_FILE_CORRUPT"

	// Index/network errors (300-399)
	ErrCodeIndexTimeout     = "ERR_301_INDEX_TIMEOUT"
	ErrCodeIndexUnavailable = "ERR_302_INDEX_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidSort   = "ERR_402_INVALID_SORT"
	ErrCodeInvalidQuery  = "ERR_403_INVALID_QUERY"
	ErrCodeQueryEmpty    = "ERR_404_QUERY_EMPTY"
	ErrCodeInvalidPage   = "ERR_405_INVALID_PAGE"
	ErrCodeVideoNotFound = "ERR_406_VIDEO_NOT_FOUND"

	// Internal errors (500-599)
	ErrCodeInternal          = "ERR_501_INTERNAL"
	ErrCodeAggregationFailed = "ERR_502_AGGREGATION_FAILED"
	ErrCodeSearchFailed      = "ERR_503_SEARCH_FAILED"
	ErrCodeMetadataFailed    = "ERR_504_METADATA_FAILED"
	ErrCodeIndexFailed       = "ERR_505_INDEX_FAILED"
)

var categoryByDigit = map[byte]Category{
	'1': CategoryConfig,
	'2': CategoryIO,
	'3': CategoryNetwork,
	'4': CategoryValidation,
	'5': CategoryInternal,
}

// categoryFromCode reads the class off the code's hundreds digit.
func categoryFromCode(code string) Category {
	if strings.HasPrefix(code, "ERR_") && len(code) > 4 {
		if cat, ok := categoryByDigit[code[4]]; ok {
			return cat
		}
	}
	return CategoryInternal
}

// severityFromCode grades a code. A corrupt index cannot be worked
// around; collaborator outages are retryable and therefore warnings.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptIndex:
		return SeverityFatal
	case ErrCodeIndexTimeout, ErrCodeIndexUnavailable:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode marks collaborator outages: the whole request fails
// but an identical retry may succeed.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeIndexTimeout, ErrCodeIndexUnavailable,
		ErrCodeAggregationFailed, ErrCodeSearchFailed, ErrCodeMetadataFailed:
		return true
	default:
		return false
	}
}
