// Package errors provides standardized error handling patterns for seqmatch packages.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// The classes carry the matching engine's error taxonomy: pattern definition
// problems (unknown references, cycles, bad quantifier ranges) are Invalid and
// are rejected before a pattern ever enters the active set; extractor
// failures are Fatal to the run that observed them; messaging and storage
// hiccups in the surrounding components are Transient and may be retried.
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Classification
//
//   - Transient: connection loss, publish failures, storage unavailability (retry recommended)
//   - Invalid: rejected patterns, out-of-window positions, empty pattern sets, parse failures (do not retry)
//   - Fatal: extractor callback failures, broken configuration (stop the run)
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if _, ok := m.patterns[name]; !ok {
//	    return errors.ErrUnknownPattern
//	}
//
// Wrap errors with context for debugging:
//
//	if err := p.Validate(); err != nil {
//	    return errors.WrapInvalid(err, "Matcher", "AddPattern", "pattern validation")
//	}
//
// Check classification for handling decisions:
//
//	if err := store.Save(ctx, rec); err != nil {
//	    if errors.IsTransient(err) {
//	        // retry with backoff
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Store", "Save", "insert")       // For retryable errors
//	errors.WrapInvalid(err, "Matcher", "AddPattern", "cycle")  // For validation errors
//	errors.WrapFatal(err, "Matcher", "scan", "extractor")      // For unrecoverable errors
//
// The generic Wrap() function adds context without forcing a class:
//
//	errors.Wrap(err, "Ruleset", "Load", "read file")
//
// # Standard Error Variables
//
// Pre-defined error variables, organized by category:
//
//   - Pattern definitions: ErrInvalidPattern, ErrUnknownPattern, ErrPatternCycle, ErrInvalidQuantifier, ErrPatternInUse
//   - Match runs: ErrInvalidPosition, ErrExtractorFailed, ErrExtractorNotFound, ErrNoPatterns
//   - Component lifecycle: ErrAlreadyStarted, ErrNotStarted, ErrShuttingDown
//   - Messaging: ErrNoConnection, ErrSubscriptionFailed, ErrPublishFailed
//   - Data and config: ErrInvalidData, ErrParsingFailed, ErrInvalidConfig, ErrMissingConfig
//
// The taxonomy predicates (IsInvalidPattern, IsInvalidPosition,
// IsExtractorFailed, IsNoPatterns) group the match-facing sentinels so
// callers can branch on the kind without enumerating variables.
//
// # Retry Configuration
//
// The package includes retry support with exponential backoff:
//
//	config := errors.DefaultRetryConfig()
//	if config.ShouldRetry(err, attempt) {
//	    time.Sleep(config.BackoffDelay(attempt))
//	    // retry operation
//	}
//
// The retry configuration converts to the pkg/retry framework:
//
//	retry.Do(ctx, config.ToRetryConfig(), op)
package errors
