package service

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/stiarchives/portal/internal/core/ports"
)

const (
	DefaultPortalURL = "https://stiarchives.x10.mx"

	subjectVerified = "Your STI Archives Account Has Been Verified!"
	subjectCreated  = "Your STI Archives Account Has Been Created!"
)

var credentialTemplate = template.Must(template.New("credentials").Parse(`Hello {{.Name}},

{{.Headline}}

Login Credentials:
- Email: {{.Email}}
- Password: {{.Password}}

You can now log in at: {{.PortalURL}}

Please keep this information secure.

Best regards,
STI Archives Team
`))

type credentialMail struct {
	Name      string
	Headline  string
	Email     string
	Password  string
	PortalURL string
}

// MailContent renders the transactional emails sent to registrants.
type MailContent struct {
	PortalURL string
}

func (m MailContent) portalURL() string {
	if m.PortalURL == "" {
		return DefaultPortalURL
	}
	return m.PortalURL
}

// Verified is sent when an administrator accepts a registrant.
func (m MailContent) Verified(to, name, email, password string) (ports.EmailMessage, error) {
	return m.render(to, subjectVerified, credentialMail{
		Name:     name,
		Headline: "Your STI Archives account has been verified by the admin!",
		Email:    email,
		Password: password,
	})
}

// Welcome carries credentials issued outside the review flow.
func (m MailContent) Welcome(to, name, email, password string) (ports.EmailMessage, error) {
	return m.render(to, subjectCreated, credentialMail{
		Name:     name,
		Headline: "Your STI Archives account has been successfully created!",
		Email:    email,
		Password: password,
	})
}

func (m MailContent) render(to, subject string, data credentialMail) (ports.EmailMessage, error) {
	data.PortalURL = m.portalURL()
	var buf bytes.Buffer
	if err := credentialTemplate.Execute(&buf, data); err != nil {
		return ports.EmailMessage{}, fmt.Errorf("render %q: %w", subject, err)
	}
	return ports.EmailMessage{To: to, Subject: subject, Body: buf.String()}, nil
}
