package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/stiarchives/portal/internal/core/domain"
	"github.com/stiarchives/portal/internal/core/ports"
)

const driveViewURL = "https://drive.google.com/file/d/%s/view?usp=sharing"

// DriveConfig selects the service account and target folder for Google Drive uploads.
type DriveConfig struct {
	CredentialsFile string
	FolderID        string
}

type DriveBackend struct {
	svc      *drive.Service
	folderID string
}

// NewDriveBackend fails with ErrRemoteUnavailable when the service account
// file is missing, which callers treat as "no remote backend".
func NewDriveBackend(ctx context.Context, cfg DriveConfig) (*DriveBackend, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("%w: drive credentials file not configured", domain.ErrRemoteUnavailable)
	}
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		return nil, fmt.Errorf("%w: drive credentials: %w", domain.ErrRemoteUnavailable, err)
	}
	return newDriveBackend(ctx, cfg.FolderID,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
}

func newDriveBackend(ctx context.Context, folderID string, opts ...option.ClientOption) (*DriveBackend, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: drive client: %w", domain.ErrRemoteUnavailable, err)
	}
	return &DriveBackend{svc: svc, folderID: folderID}, nil
}

func (b *DriveBackend) Name() string { return "drive" }

func (b *DriveBackend) Upload(ctx context.Context, name, contentType string, content io.Reader) (ports.RemoteObject, error) {
	meta := &drive.File{Name: name}
	if b.folderID != "" {
		meta.Parents = []string{b.folderID}
	}

	created, err := b.svc.Files.Create(meta).
		Media(content, googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return ports.RemoteObject{}, fmt.Errorf("drive create %s: %w", name, err)
	}
	if created.Id == "" {
		return ports.RemoteObject{}, errors.New("drive create: empty file id")
	}
	return ports.RemoteObject{ID: created.Id, URL: fmt.Sprintf(driveViewURL, created.Id)}, nil
}

// Publish shares the file with anyone holding the link.
func (b *DriveBackend) Publish(ctx context.Context, obj ports.RemoteObject) error {
	_, err := b.svc.Permissions.Create(obj.ID, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("drive share %s: %w", obj.ID, err)
	}
	return nil
}
