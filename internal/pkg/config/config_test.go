package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Port != "8080" || cfg.APIPrefix != "/api" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Store.Driver != "json" || cfg.Store.UsersFile != "data/users.json" {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Lock.Mode != "none" {
		t.Fatalf("lock must be off by default, got %q", cfg.Lock.Mode)
	}
	if cfg.Files.RemoteBackend != "none" || cfg.Files.RemoteTimeout != 30*time.Second {
		t.Fatalf("unexpected files defaults: %+v", cfg.Files)
	}
	if cfg.Creds.InstitutionDomain != "clmb.sti.archives" || cfg.Creds.PasswordLength != 12 {
		t.Fatalf("unexpected credential defaults: %+v", cfg.Creds)
	}
	if cfg.Mail.PortalURL != "https://stiarchives.x10.mx" || cfg.Mail.SMTPPort != 465 {
		t.Fatalf("unexpected mail defaults: %+v", cfg.Mail)
	}
	if cfg.Admin.GuardEnabled() {
		t.Fatalf("admin guard must be off by default")
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE_DRIVER":          "mongo",
		"STORE_LOCK":            "redis",
		"REMOTE_BACKEND":        "s3",
		"REMOTE_UPLOAD_TIMEOUT": "5s",
		"S3_USE_PATH_STYLE":     "true",
		"ADMIN_JWT_SECRET":      "secret",
		"ADMIN_PASSWORD_HASH":   "$2a$10$abc",
		"CORS_ORIGINS":          "https://stiarchives.x10.mx,http://localhost:3000",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Store.Driver != "mongo" || cfg.Lock.Mode != "redis" || cfg.Files.RemoteBackend != "s3" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Files.RemoteTimeout != 5*time.Second || !cfg.Files.S3UsePathStyle {
		t.Fatalf("unexpected files config: %+v", cfg.Files)
	}
	if !cfg.Admin.GuardEnabled() {
		t.Fatalf("expected admin guard enabled")
	}
	if len(cfg.CORS) != 2 {
		t.Fatalf("expected two CORS origins, got %v", cfg.CORS)
	}
}

func TestLoadWith_InvalidEnums(t *testing.T) {
	cases := map[string]map[string]string{
		"store":  {"STORE_DRIVER": "sqlite"},
		"lock":   {"STORE_LOCK": "etcd"},
		"remote": {"REMOTE_BACKEND": "ftp"},
		"admin":  {"ADMIN_JWT_SECRET": "secret"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			if err == nil || !strings.HasPrefix(err.Error(), "config:") {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
}
