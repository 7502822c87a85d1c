package llm

import (
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorType
	}{
		{"", ErrorTypeUnknown},
		{"something odd happened", ErrorTypeUnknown},
		{"error: context_length_exceeded for this model", ErrorTypeContextOverflow},
		{"prompt is too long: 210000 tokens > 200000 maximum", ErrorTypeContextOverflow},
		{"This model's maximum context length is 8192 tokens", ErrorTypeContextOverflow},
		{"429 Too Many Requests", ErrorTypeRateLimit},
		{"rate_limit_error: Number of requests exceeded", ErrorTypeRateLimit},
		{"Incorrect API key provided", ErrorTypeAuth},
		{"invalid x-api-key", ErrorTypeAuth},
		{"context deadline exceeded", ErrorTypeTimeout},
		{"request timed out", ErrorTypeTimeout},
		{"invalid_request_error: tools malformed", ErrorTypeFormat},
	}

	for _, tc := range cases {
		if got := ClassifyError(tc.msg); got != tc.want {
			t.Errorf("ClassifyError(%q) = %s, want %s", tc.msg, got, tc.want)
		}
	}
}

func TestOverflowBeatsGenericFormatMatch(t *testing.T) {
	// Overflow errors often arrive wrapped in invalid_request_error
	msg := "invalid_request_error: maximum context length exceeded"
	if got := ClassifyError(msg); got != ErrorTypeContextOverflow {
		t.Errorf("ClassifyError = %s, want context_overflow", got)
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsContextOverflowError(errors.New("request_too_large")) {
		t.Error("expected overflow detection")
	}
	if IsContextOverflowError(nil) {
		t.Error("nil error must not match")
	}
	if !IsRateLimitError(errors.New("Too Many Requests")) {
		t.Error("expected rate limit detection")
	}
	if !IsAuthError(errors.New("401 unauthorized")) {
		t.Error("expected auth detection")
	}
	if !IsTimeoutError(errors.New("i/o timeout")) {
		t.Error("expected timeout detection")
	}
}
