// Package llm - backend error classification.
//
// Adapters propagate backend errors unchanged; these helpers let callers
// decide policy (compaction, backoff, credential fixes) from the error
// text without the adapters performing any local recovery.
package llm

import (
	"strings"
)

// ErrorType categorizes backend errors for caller-side policy decisions.
type ErrorType string

const (
	ErrorTypeUnknown         ErrorType = "unknown"
	ErrorTypeContextOverflow ErrorType = "context_overflow"
	ErrorTypeRateLimit       ErrorType = "rate_limit"
	ErrorTypeAuth            ErrorType = "auth"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeFormat          ErrorType = "format"
)

// ClassifyError determines the error type from an error message.
// Returns ErrorTypeUnknown when nothing matches. Checked in order of
// specificity: overflow patterns overlap with generic 400 text, so they
// go first.
func ClassifyError(msg string) ErrorType {
	if msg == "" {
		return ErrorTypeUnknown
	}
	if IsContextOverflowMessage(msg) {
		return ErrorTypeContextOverflow
	}
	if IsRateLimitMessage(msg) {
		return ErrorTypeRateLimit
	}
	if IsAuthMessage(msg) {
		return ErrorTypeAuth
	}
	if IsTimeoutMessage(msg) {
		return ErrorTypeTimeout
	}
	if IsFormatMessage(msg) {
		return ErrorTypeFormat
	}
	return ErrorTypeUnknown
}

// IsContextOverflowError checks if an error indicates context window exceeded.
// Works across providers (OpenAI, Groq, Anthropic, OpenAI-compatible locals).
func IsContextOverflowError(err error) bool {
	if err == nil {
		return false
	}
	return IsContextOverflowMessage(err.Error())
}

// IsRateLimitError checks if an error indicates rate limiting.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	return IsRateLimitMessage(err.Error())
}

// IsAuthError checks if an error indicates authentication failure.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	return IsAuthMessage(err.Error())
}

// IsTimeoutError checks if an error indicates a timeout.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	return IsTimeoutMessage(err.Error())
}

// IsFormatError checks if an error indicates invalid request format.
func IsFormatError(err error) bool {
	if err == nil {
		return false
	}
	return IsFormatMessage(err.Error())
}

// IsContextOverflowMessage checks if an error message indicates context
// overflow. Use this when you have a string instead of an error.
func IsContextOverflowMessage(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)

	// OpenAI / Groq
	if strings.Contains(lower, "context_length_exceeded") {
		return true
	}

	// Anthropic
	if strings.Contains(lower, "context length exceeded") ||
		strings.Contains(lower, "prompt is too long") {
		return true
	}

	// Common patterns
	return strings.Contains(lower, "maximum context length") ||
		strings.Contains(lower, "request_too_large") ||
		strings.Contains(lower, "exceeds model context window") ||
		strings.Contains(lower, "context overflow")
}

// IsRateLimitMessage checks if an error message indicates rate limiting.
func IsRateLimitMessage(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "429")
}

// IsAuthMessage checks if an error message indicates authentication failure.
func IsAuthMessage(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "invalid x-api-key") ||
		strings.Contains(lower, "incorrect api key") ||
		strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "401")
}

// IsTimeoutMessage checks if an error message indicates a timeout.
func IsTimeoutMessage(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "timed out") ||
		strings.Contains(lower, "deadline exceeded")
}

// IsFormatMessage checks if an error message indicates invalid request format.
func IsFormatMessage(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "invalid_request_error") ||
		strings.Contains(lower, "invalid request format") ||
		strings.Contains(lower, "malformed") ||
		strings.Contains(lower, "unsupported tool")
}
