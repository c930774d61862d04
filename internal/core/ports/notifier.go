package ports

import "context"

type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// Notifier hands a message to the mail provider. A nil error means accepted,
// not delivered.
type Notifier interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// MailQueue accepts messages for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg EmailMessage)
}
