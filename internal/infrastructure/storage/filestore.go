package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stiarchives/portal/internal/api/metrics"
	"github.com/stiarchives/portal/internal/core/domain"
	"github.com/stiarchives/portal/internal/core/ports"
)

const (
	DefaultUploadDir     = "uploads"
	defaultRemoteTimeout = 30 * time.Second

	// Attempts at a free local name; all but the first carry a random token.
	maxNameAttempts = 4
)

// FileStore writes evidence files to the upload directory and then tries to
// move them to a remote backend. Remote failures leave the local copy in place.
type FileStore struct {
	dir     string
	remote  ports.RemoteBackend
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
	token   func() string
}

// NewFileStore returns a FileStore. remote may be nil to keep every file locally.
func NewFileStore(dir string, remote ports.RemoteBackend, timeout time.Duration, log zerolog.Logger) *FileStore {
	if dir == "" {
		dir = DefaultUploadDir
	}
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &FileStore{dir: dir, remote: remote, timeout: timeout, log: log, now: time.Now, token: nameToken}
}

func (s *FileStore) backendName() string {
	if s.remote == nil {
		return "none"
	}
	return s.remote.Name()
}

func (s *FileStore) Store(ctx context.Context, ownerID, filename string, content io.Reader) (string, error) {
	name, localPath, err := s.writeLocal(ownerID, filename, content)
	if err != nil {
		return "", err
	}

	log := s.log.With().Str("user_id", ownerID).Str("location", localPath).Str("backend", s.backendName()).Logger()

	if s.remote == nil {
		metrics.LocalFallbackTotal.WithLabelValues("none", "disabled").Inc()
		log.Debug().Msg("no remote backend, evidence kept locally")
		return localPath, nil
	}

	f, err := os.Open(localPath)
	if err != nil {
		metrics.LocalFallbackTotal.WithLabelValues(s.backendName(), "open_failed").Inc()
		log.Warn().Err(err).Msg("reopen for upload failed, evidence kept locally")
		return localPath, nil
	}

	uploadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	obj, err := s.remote.Upload(uploadCtx, name, contentType(name), f)
	_ = f.Close()
	if err != nil {
		metrics.RemoteUploadDuration.WithLabelValues(s.backendName(), "error").Observe(time.Since(start).Seconds())
		metrics.LocalFallbackTotal.WithLabelValues(s.backendName(), "upload_failed").Inc()
		log.Warn().Err(err).Msg("remote upload failed, evidence kept locally")
		return localPath, nil
	}
	metrics.RemoteUploadDuration.WithLabelValues(s.backendName(), "ok").Observe(time.Since(start).Seconds())

	if err := s.remote.Publish(uploadCtx, obj); err != nil {
		log.Warn().Err(err).Str("object", obj.ID).Msg("public read not granted, upload kept")
	}

	if err := os.Remove(localPath); err != nil {
		log.Warn().Err(err).Msg("local copy not removed after upload")
	}

	log.Info().Str("object", obj.ID).Str("url", obj.URL).Msg("evidence uploaded")
	return obj.URL, nil
}

// writeLocal creates a new file in the upload directory. A name already taken,
// such as by a double submit within the same millisecond, is retried with a
// random token.
func (s *FileStore) writeLocal(ownerID, filename string, content io.Reader) (string, string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("%w: create upload dir: %w", domain.ErrStorage, err)
	}

	now := s.now()
	var (
		name      string
		localPath string
		f         *os.File
		err       error
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		token := ""
		if attempt > 0 {
			token = s.token()
		}
		name = storedName(ownerID, filename, now, token)
		localPath = filepath.Join(s.dir, name)
		f, err = os.OpenFile(localPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", "", fmt.Errorf("%w: create %s: %w", domain.ErrStorage, localPath, err)
	}

	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(localPath)
		return "", "", fmt.Errorf("%w: write %s: %w", domain.ErrStorage, localPath, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(localPath)
		return "", "", fmt.Errorf("%w: close %s: %w", domain.ErrStorage, localPath, err)
	}
	return name, localPath, nil
}

func nameToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Resolve maps a stored location to a redirect or to a local file inside the
// upload directory.
func (s *FileStore) Resolve(location string) (ports.ResolvedFile, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return ports.ResolvedFile{}, fmt.Errorf("%w: path is required", domain.ErrValidation)
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return ports.ResolvedFile{RedirectURL: location}, nil
	}

	candidate := location
	if !strings.ContainsAny(candidate, `/\`) {
		candidate = filepath.Join(s.dir, candidate)
	}

	root, err := filepath.Abs(s.dir)
	if err != nil {
		return ports.ResolvedFile{}, fmt.Errorf("%w: upload dir: %w", domain.ErrStorage, err)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return ports.ResolvedFile{}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, location)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ports.ResolvedFile{}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, location)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return ports.ResolvedFile{}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, location)
	}
	if err != nil {
		return ports.ResolvedFile{}, fmt.Errorf("%w: stat %s: %w", domain.ErrStorage, location, err)
	}
	return ports.ResolvedFile{Path: abs}, nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
