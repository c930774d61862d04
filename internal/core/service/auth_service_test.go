package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/stiarchives/portal/internal/core/domain"
)

type stubAdminRepo struct {
	admins map[string]*domain.Admin
}

func newStubAdminRepo(t *testing.T, username, password string) *stubAdminRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &stubAdminRepo{admins: map[string]*domain.Admin{
		username: {Username: username, PasswordHash: string(hash), Role: domain.RoleAdmin},
	}}
}

func (r *stubAdminRepo) FindByUsername(_ context.Context, username string) (*domain.Admin, error) {
	a, ok := r.admins[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(t, "registrar", "s3cret"), "secret", time.Hour)

	token, admin, err := svc.Login(context.Background(), "registrar", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if admin == nil || admin.Username != "registrar" {
		t.Fatalf("unexpected admin: %+v", admin)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleAdmin {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(t, "registrar", "goodpass"), "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "registrar", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownAdmin(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(t, "registrar", "pass"), "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc := NewAuthService(newStubAdminRepo(t, "registrar", "pass"), "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
