package ports

import (
	"context"
	"io"
)

// FileStore keeps uploaded evidence files, remotely when possible.
type FileStore interface {
	Store(ctx context.Context, ownerID, filename string, content io.Reader) (string, error)
	Resolve(location string) (ResolvedFile, error)
}

// ResolvedFile is either a redirect to a remote object or a local path.
type ResolvedFile struct {
	RedirectURL string
	Path        string
}

func (r ResolvedFile) IsRemote() bool { return r.RedirectURL != "" }

// RemoteObject identifies a file held by a remote backend.
type RemoteObject struct {
	ID  string
	URL string
}

// RemoteBackend is an object-storage provider the FileStore uploads to.
type RemoteBackend interface {
	Name() string
	Upload(ctx context.Context, name, contentType string, content io.Reader) (RemoteObject, error)
	Publish(ctx context.Context, obj RemoteObject) error
}
