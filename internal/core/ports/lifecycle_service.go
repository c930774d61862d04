package ports

import (
	"context"
	"io"

	"github.com/stiarchives/portal/internal/core/domain"
)

type EvidenceFile struct {
	Filename string
	Content  io.Reader
}

type SignupInput struct {
	FullName      string
	PersonalEmail string
	ExternalID    string
	Role          string
	Section       string
	Evidence      *EvidenceFile
}

type IssuedCredentials struct {
	SchoolEmail string `json:"school_email"`
	Password    string `json:"password"`
}

type LifecycleService interface {
	Signup(ctx context.Context, input SignupInput) error
	Review(ctx context.Context, externalID string, action domain.ReviewAction) error
	Remove(ctx context.Context, externalID string) error
	ListUsers(ctx context.Context) ([]domain.UserRecord, error)
	IssueCredentialEmail(ctx context.Context, fullName, personalEmail string) (*IssuedCredentials, error)
	SendUpdateEmail(ctx context.Context, to, subject, message string) error
}
