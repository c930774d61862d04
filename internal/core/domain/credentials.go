package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	DefaultInstitutionDomain = "clmb.sti.archives"
	DefaultPasswordLength    = 12

	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
)

// Credentials are the institutional login issued to an accepted registrant.
type Credentials struct {
	Email    string
	Password string
}

// CredentialGenerator issues institutional credentials for a full name.
type CredentialGenerator struct {
	Domain         string
	PasswordLength int
}

func NewCredentialGenerator(domain string, passwordLength int) CredentialGenerator {
	if strings.TrimSpace(domain) == "" {
		domain = DefaultInstitutionDomain
	}
	return CredentialGenerator{Domain: domain, PasswordLength: passwordLength}
}

func (g CredentialGenerator) Issue(fullName string) (Credentials, error) {
	email, err := DeriveInstitutionalEmail(fullName, g.Domain)
	if err != nil {
		return Credentials{}, err
	}
	password, err := GeneratePassword(g.PasswordLength)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Email: email, Password: password}, nil
}

// DeriveInstitutionalEmail builds <surname>@<domain> where the surname is the
// last whitespace-separated token of fullName. Multi-word surnames keep only
// their final word.
func DeriveInstitutionalEmail(fullName, domain string) (string, error) {
	tokens := strings.Fields(fullName)
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if domain == "" {
		domain = DefaultInstitutionDomain
	}
	surname := strings.ToLower(tokens[len(tokens)-1])
	return surname + "@" + domain, nil
}

// GeneratePassword draws length characters uniformly from the password
// alphabet using crypto/rand. Non-positive lengths use DefaultPasswordLength.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = DefaultPasswordLength
	}
	max := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
