package token

import (
	"strings"
	"testing"
)

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("A1")
	if len(fp) != FingerprintLength {
		t.Fatalf("len = %d, want %d", len(fp), FingerprintLength)
	}
	if strings.Trim(fp, "0123456789abcdef") != "" {
		t.Errorf("Fingerprint = %q, want lowercase hex", fp)
	}
	if Fingerprint("A1") != fp {
		t.Error("Fingerprint should be deterministic")
	}
	if Fingerprint("A2") == fp {
		t.Error("different tokens should have different fingerprints")
	}
	if strings.Contains(fp, "A1") {
		t.Error("fingerprint should not contain the token")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if got := Fingerprint(""); got != "" {
		t.Errorf("Fingerprint(\"\") = %q, want empty", got)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"A1", "A1", true},
		{"A1", "A2", false},
		{"A1", "A10", false},
		{"", "", true},
		{"", "A1", false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
