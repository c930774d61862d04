package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/stiarchives/portal/internal/core/domain"
	"github.com/stiarchives/portal/internal/core/ports"
)

// LifecycleDeps groups the collaborators of the lifecycle service.
type LifecycleDeps struct {
	Users       ports.UserRepository
	Files       ports.FileStore
	Notifier    ports.Notifier
	MailQueue   ports.MailQueue
	Locker      ports.MutationLocker
	Credentials domain.CredentialGenerator
	Mail        MailContent
}

// LifecycleService runs signup, review and removal of registrants.
type LifecycleService struct {
	users    ports.UserRepository
	files    ports.FileStore
	notifier ports.Notifier
	queue    ports.MailQueue
	locker   ports.MutationLocker
	creds    domain.CredentialGenerator
	mail     MailContent
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewLifecycleService(deps LifecycleDeps, log zerolog.Logger) *LifecycleService {
	locker := deps.Locker
	if locker == nil {
		locker = noopLocker{}
	}
	return &LifecycleService{
		users:    deps.Users,
		files:    deps.Files,
		notifier: deps.Notifier,
		queue:    deps.MailQueue,
		locker:   locker,
		creds:    deps.Credentials,
		mail:     deps.Mail,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newRecordID,
	}
}

func newRecordID() string {
	return ulid.Make().String()
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context) (func(), error) { return func() {}, nil }

// Signup stores the evidence file and appends a pending record. No email is sent.
func (s *LifecycleService) Signup(ctx context.Context, in ports.SignupInput) error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PersonalEmail = strings.TrimSpace(in.PersonalEmail)
	in.ExternalID = strings.TrimSpace(in.ExternalID)
	in.Role = strings.TrimSpace(in.Role)
	in.Section = strings.TrimSpace(in.Section)

	if in.FullName == "" || in.PersonalEmail == "" || in.ExternalID == "" || in.Role == "" || in.Section == "" {
		return fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	}
	if in.Evidence == nil || in.Evidence.Content == nil {
		return fmt.Errorf("%w: raf file is required", domain.ErrValidation)
	}

	ctx = context.WithoutCancel(ctx)

	creds, err := s.creds.Issue(in.FullName)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	location, err := s.files.Store(ctx, in.ExternalID, in.Evidence.Filename, in.Evidence.Content)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	record := domain.UserRecord{
		ID:                 s.newID(),
		ExternalID:         in.ExternalID,
		FullName:           in.FullName,
		InstitutionalEmail: creds.Email,
		PersonalEmail:      in.PersonalEmail,
		IssuedPassword:     creds.Password,
		Role:               in.Role,
		Section:            in.Section,
		EvidenceLocation:   location,
		CreatedAt:          s.now(),
		State:              domain.StatePending,
	}

	err = s.mutate(ctx, func(records []domain.UserRecord) ([]domain.UserRecord, bool, error) {
		return append(records, record), true, nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", in.ExternalID).Str("location", location).Msg("signup not persisted")
		return fmt.Errorf("signup: %w", err)
	}

	s.log.Info().Str("user_id", in.ExternalID).Str("email", creds.Email).Str("location", location).Msg("registrant signed up")
	return nil
}

func (s *LifecycleService) Accept(ctx context.Context, externalID string) error {
	return s.Review(ctx, externalID, domain.ActionAccept)
}

func (s *LifecycleService) Reject(ctx context.Context, externalID string) error {
	return s.Review(ctx, externalID, domain.ActionReject)
}

func (s *LifecycleService) Ban(ctx context.Context, externalID string) error {
	return s.Review(ctx, externalID, domain.ActionBan)
}

// Review applies an admin action to the first record addressed by externalID.
// On accept the credential email is queued only after the record is saved.
func (s *LifecycleService) Review(ctx context.Context, externalID string, action domain.ReviewAction) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if _, err := domain.ParseReviewAction(string(action)); err != nil {
		return err
	}

	var reviewed domain.UserRecord
	err := s.mutate(ctx, func(records []domain.UserRecord) ([]domain.UserRecord, bool, error) {
		idx, err := domain.FindByExternalID(records, externalID)
		if err != nil {
			return nil, false, err
		}
		records[idx].Apply(action, s.now())
		reviewed = records[idx]
		return records, true, nil
	})
	if err != nil {
		return fmt.Errorf("review %s: %w", action, err)
	}

	s.log.Info().Str("user_id", externalID).Str("action", string(action)).Msg("registrant reviewed")

	if action == domain.ActionAccept {
		s.queueVerifiedEmail(reviewed)
	}
	return nil
}

func (s *LifecycleService) queueVerifiedEmail(u domain.UserRecord) {
	if u.PersonalEmail == "" {
		s.log.Warn().Str("user_id", u.ExternalID).Msg("no personal email on record, credential email skipped")
		return
	}
	msg, err := s.mail.Verified(u.PersonalEmail, u.FullName, u.InstitutionalEmail, u.IssuedPassword)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", u.ExternalID).Msg("credential email not rendered")
		return
	}
	s.queue.Enqueue(msg)
}

// Remove deletes every record addressed by externalID. Removing an unknown id succeeds.
func (s *LifecycleService) Remove(ctx context.Context, externalID string) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}

	removed := 0
	err := s.mutate(ctx, func(records []domain.UserRecord) ([]domain.UserRecord, bool, error) {
		var kept []domain.UserRecord
		kept, removed = domain.RemoveByExternalID(records, externalID)
		return kept, removed > 0, nil
	})
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	s.log.Info().Str("user_id", externalID).Int("removed", removed).Msg("registrant removed")
	return nil
}

func (s *LifecycleService) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	records, err := s.users.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if records == nil {
		records = []domain.UserRecord{}
	}
	return records, nil
}

// IssueCredentialEmail mints credentials not tied to any record and sends them
// synchronously.
func (s *LifecycleService) IssueCredentialEmail(ctx context.Context, fullName, personalEmail string) (*ports.IssuedCredentials, error) {
	fullName = strings.TrimSpace(fullName)
	personalEmail = strings.TrimSpace(personalEmail)
	if fullName == "" || personalEmail == "" {
		return nil, fmt.Errorf("%w: fullname and personal_email are required", domain.ErrValidation)
	}

	creds, err := s.creds.Issue(fullName)
	if err != nil {
		return nil, fmt.Errorf("issue credentials: %w", err)
	}
	msg, err := s.mail.Welcome(personalEmail, fullName, creds.Email, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("issue credentials: %w", err)
	}
	if err := s.send(ctx, msg); err != nil {
		return nil, err
	}

	return &ports.IssuedCredentials{SchoolEmail: creds.Email, Password: creds.Password}, nil
}

func (s *LifecycleService) SendUpdateEmail(ctx context.Context, to, subject, message string) error {
	to = strings.TrimSpace(to)
	subject = strings.TrimSpace(subject)
	if to == "" || subject == "" || strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: to_email, subject, and message are required", domain.ErrValidation)
	}
	return s.send(ctx, ports.EmailMessage{To: to, Subject: subject, Body: message})
}

func (s *LifecycleService) send(ctx context.Context, msg ports.EmailMessage) error {
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("email not sent")
		return fmt.Errorf("%w: %w", domain.ErrEmailDelivery, err)
	}
	s.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// mutate runs one locked read-modify-write cycle. fn reports whether the
// collection changed; unchanged collections are not written back.
func (s *LifecycleService) mutate(ctx context.Context, fn func([]domain.UserRecord) ([]domain.UserRecord, bool, error)) error {
	ctx = context.WithoutCancel(ctx)

	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire store lock: %w", domain.ErrStorage, err)
	}
	defer unlock()

	records, err := s.users.LoadAll(ctx)
	if err != nil {
		return err
	}
	updated, changed, err := fn(records)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.users.SaveAll(ctx, updated)
}
