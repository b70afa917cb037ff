package models

// RawSubmission is one inbound registration event as received from the form
// provider, before any shape detection or field mapping.
type RawSubmission struct {
	// CorrelationID identifies the event at the transport layer
	CorrelationID string `json:"correlation_id"`

	// Body is the parsed JSON payload, if the request carried one
	Body map[string]interface{} `json:"body"`

	// RawRequest is the URL-encoded payload some webhook variants send
	// in place of structured JSON
	RawRequest string `json:"raw_request"`

	// IPAddress is the submitting client's address, for the audit trail
	IPAddress string `json:"ip_address"`

	// UserAgent is the submitting client's user agent header
	UserAgent string `json:"user_agent"`
}

// NormalizedSubmission is the result of running one raw submission through
// the normalizer: a pending guest draft plus the flat field view used for
// consent detection.
type NormalizedSubmission struct {
	// Guest is the canonical draft, status pending, identity best-effort
	Guest *Guest

	// Fields maps each source field name, stripped of any ID prefix, to
	// its extracted string value
	Fields map[string]string

	// SubmissionID is the provider's identifier for this submission
	SubmissionID string
}
