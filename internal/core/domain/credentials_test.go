package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestDeriveInstitutionalEmail(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"two tokens", "Maria Santos", "santos@clmb.sti.archives"},
		{"case and spacing", "  maria   SANTOS  ", "santos@clmb.sti.archives"},
		{"single token", "Cher", "cher@clmb.sti.archives"},
		{"multi word surname keeps last token", "Juan Dela Cruz", "cruz@clmb.sti.archives"},
		{"tabs and newlines", "Ana\tMaria\nReyes", "reyes@clmb.sti.archives"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DeriveInstitutionalEmail(tc.in, DefaultInstitutionDomain)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDeriveInstitutionalEmail_SameSurnameSameEmail(t *testing.T) {
	a, _ := DeriveInstitutionalEmail("Maria Santos", "")
	b, _ := DeriveInstitutionalEmail("JOSE   santos", "")
	if a != b {
		t.Fatalf("expected identical emails, got %q and %q", a, b)
	}
}

func TestDeriveInstitutionalEmail_Blank(t *testing.T) {
	if _, err := DeriveInstitutionalEmail("   ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGeneratePassword_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword(12)
		if err != nil {
			t.Fatalf("GeneratePassword: %v", err)
		}
		if len(pw) != 12 {
			t.Fatalf("expected length 12, got %d", len(pw))
		}
		for _, r := range pw {
			if !strings.ContainsRune(passwordAlphabet, r) {
				t.Fatalf("character %q outside alphabet", r)
			}
		}
	}
}

func TestGeneratePassword_DefaultLength(t *testing.T) {
	pw, err := GeneratePassword(0)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(pw) != DefaultPasswordLength {
		t.Fatalf("expected default length %d, got %d", DefaultPasswordLength, len(pw))
	}
}

func TestGeneratePassword_Independent(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		pw, _ := GeneratePassword(12)
		if _, dup := seen[pw]; dup {
			t.Fatalf("duplicate password generated: %s", pw)
		}
		seen[pw] = struct{}{}
	}
}

func TestCredentialGenerator_Issue(t *testing.T) {
	g := NewCredentialGenerator("example.edu", 16)
	creds, err := g.Issue("Lea Salonga")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if creds.Email != "salonga@example.edu" {
		t.Fatalf("unexpected email %q", creds.Email)
	}
	if len(creds.Password) != 16 {
		t.Fatalf("expected 16 char password, got %d", len(creds.Password))
	}
}
