package token

import (
	"regexp"
	"testing"
)

var alphabet = regexp.MustCompile(`^[A-Z2-7]+$`)

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := Generate()
		if len(tok) != Length {
			t.Fatalf("len(%q) = %d, want %d", tok, len(tok), Length)
		}
		if !alphabet.MatchString(tok) {
			t.Fatalf("token %q is not alphanumeric", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("supplied-token"); got != "supplied-token" {
		t.Errorf("Resolve(supplied) = %q", got)
	}
	if got := Resolve(""); len(got) != Length {
		t.Errorf("Resolve(\"\") = %q, want generated token", got)
	}
}
