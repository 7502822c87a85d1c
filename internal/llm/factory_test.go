package llm

import (
	"strings"
	"testing"
)

func TestNewProviderDispatch(t *testing.T) {
	cases := []struct {
		driver   string
		wantType string
	}{
		{"openai", "openai"},
		{"groq", "groq"},
		{"anthropic", "anthropic"},
	}

	for _, tc := range cases {
		p, err := NewProvider("test-"+tc.driver, ProviderConfig{Driver: tc.driver, APIKey: "test-key"})
		if err != nil {
			t.Fatalf("driver %s: %v", tc.driver, err)
		}
		if p.Type() != tc.wantType {
			t.Errorf("driver %s: type = %q", tc.driver, p.Type())
		}
		if p.Name() != "test-"+tc.driver {
			t.Errorf("driver %s: name = %q", tc.driver, p.Name())
		}
	}
}

func TestNewProviderUnknownDriver(t *testing.T) {
	_, err := NewProvider("mystery", ProviderConfig{Driver: "mystery"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !strings.Contains(err.Error(), "mystery") {
		t.Errorf("error should name the driver: %v", err)
	}
}

func TestNewProviderMissingKey(t *testing.T) {
	if _, err := NewProvider("openai", ProviderConfig{Driver: "openai"}); err == nil {
		t.Fatal("expected error without API key")
	}
}
