package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string   `env:"PORT,         default=8080"`
	Env       string   `env:"ENV,          default=development"`
	LogLevel  string   `env:"LOG_LEVEL,    default=info"`
	APIPrefix string   `env:"API_PREFIX,   default=/api"`
	BodyLimit string   `env:"BODY_LIMIT,   default=20M"`
	CORS      []string `env:"CORS_ORIGINS, default=*"`

	Store StoreConfig
	Lock  LockConfig
	Files FilesConfig
	Mail  MailConfig
	Creds CredentialsConfig
	Admin AdminConfig
}

type StoreConfig struct {
	Driver    string `env:"STORE_DRIVER, default=json"`
	UsersFile string `env:"USERS_FILE,   default=data/users.json"`
	MongoURI  string `env:"MONGO_URI,    default=mongodb://localhost:27017"`
	MongoDB   string `env:"MONGO_DB,     default=sti_archives"`
}

type LockConfig struct {
	Mode      string        `env:"STORE_LOCK,      default=none"`
	RedisAddr string        `env:"REDIS_ADDR,      default=localhost:6379"`
	RedisDB   int           `env:"REDIS_DB,        default=0"`
	TTL       time.Duration `env:"STORE_LOCK_TTL,  default=10s"`
	Wait      time.Duration `env:"STORE_LOCK_WAIT, default=5s"`
}

type FilesConfig struct {
	UploadDir     string        `env:"UPLOAD_DIR,            default=uploads"`
	RemoteBackend string        `env:"REMOTE_BACKEND,        default=none"`
	RemoteTimeout time.Duration `env:"REMOTE_UPLOAD_TIMEOUT, default=30s"`

	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3Region       string `env:"S3_REGION,         default=us-east-1"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3PublicURL    string `env:"S3_PUBLIC_URL"`
	S3KeyPrefix    string `env:"S3_KEY_PREFIX"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE, default=false"`

	DriveCredentialsFile string `env:"DRIVE_CREDENTIALS_FILE, default=credentials.json"`
	DriveFolderID        string `env:"DRIVE_FOLDER_ID"`
}

type MailConfig struct {
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,     default=465"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPSecurity string `env:"SMTP_SECURITY"`
	From         string `env:"MAIL_FROM"`
	PortalURL    string `env:"PORTAL_URL,    default=https://stiarchives.x10.mx"`
	Workers      int    `env:"MAIL_WORKERS,  default=4"`
}

type CredentialsConfig struct {
	InstitutionDomain string `env:"INSTITUTION_DOMAIN, default=clmb.sti.archives"`
	PasswordLength    int    `env:"PASSWORD_LENGTH,    default=12"`
}

type AdminConfig struct {
	JWTSecret    string        `env:"ADMIN_JWT_SECRET"`
	Username     string        `env:"ADMIN_USERNAME,      default=admin"`
	PasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	TokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL,     default=12h"`
}

// GuardEnabled reports whether admin endpoints require a bearer token.
func (a AdminConfig) GuardEnabled() bool { return a.JWTSecret != "" }

func (c *Config) IsDevelopment() bool { return strings.EqualFold(c.Env, "development") }

// Load reads a .env file when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadWith resolves the configuration from l and validates the enum settings.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "json", "mongo":
	default:
		return fmt.Errorf("STORE_DRIVER must be json or mongo, got %q", c.Store.Driver)
	}
	switch c.Lock.Mode {
	case "none", "redis":
	default:
		return fmt.Errorf("STORE_LOCK must be none or redis, got %q", c.Lock.Mode)
	}
	switch c.Files.RemoteBackend {
	case "none", "s3", "drive":
	default:
		return fmt.Errorf("REMOTE_BACKEND must be none, s3 or drive, got %q", c.Files.RemoteBackend)
	}
	if c.Admin.GuardEnabled() && c.Admin.PasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required when ADMIN_JWT_SECRET is set")
	}
	return nil
}
