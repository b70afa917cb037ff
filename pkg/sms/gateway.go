package sms

import "context"

// Gateway defines the interface for sending SMS messages
type Gateway interface {
	// SendMessage sends one SMS to a single recipient.
	// Returns the provider's message identifier and an error if the send failed.
	SendMessage(ctx context.Context, to, message string) (string, error)

	// GetName returns the name of the SMS gateway implementation
	GetName() string
}
