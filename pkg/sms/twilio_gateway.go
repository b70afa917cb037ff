package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// TwilioGateway implements SMS sending via the Twilio Messages API
type TwilioGateway struct {
	apiURL     string
	accountSID string
	authToken  string
	fromNumber string
	client     *http.Client
}

// TwilioConfig holds configuration for the Twilio gateway
type TwilioConfig struct {
	APIURL     string
	AccountSID string
	AuthToken  string
	FromNumber string
}

// NewTwilioGateway creates a new Twilio SMS gateway client
func NewTwilioGateway(config TwilioConfig) *TwilioGateway {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = "https://api.twilio.com/2010-04-01"
	}

	return &TwilioGateway{
		apiURL:     apiURL,
		accountSID: config.AccountSID,
		authToken:  config.AuthToken,
		fromNumber: config.FromNumber,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// messageResponse represents the Twilio message creation response
type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Message      string `json:"message"` // error body for 4xx responses
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// FormatPhoneNumber converts a phone number to E.164 format.
// Input: "555-123-4567" or "(555) 123 4567" or "+15551234567"
// Output: "+15551234567"
func FormatPhoneNumber(phone string) (string, error) {
	cleaned := nonDigits.ReplaceAllString(phone, "")

	// 10-digit national numbers get the NANP country code
	if len(cleaned) == 10 {
		cleaned = "1" + cleaned
	}

	if len(cleaned) < 11 || len(cleaned) > 15 {
		return "", fmt.Errorf("invalid phone number length after formatting: %d digits", len(cleaned))
	}

	return "+" + cleaned, nil
}

// SendMessage sends one SMS via the Twilio Messages endpoint
func (g *TwilioGateway) SendMessage(ctx context.Context, to, message string) (string, error) {
	formattedTo, err := FormatPhoneNumber(to)
	if err != nil {
		return "", fmt.Errorf("failed to format phone number: %w", err)
	}

	form := url.Values{}
	form.Set("To", formattedTo)
	form.Set("From", g.fromNumber)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", g.apiURL, g.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create SMS request: %w", err)
	}

	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read SMS response: %w", err)
	}

	var msgResp messageResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("SMS sending failed (status %d): %s", resp.StatusCode, msgResp.Message)
	}

	if msgResp.ErrorCode != nil {
		return "", fmt.Errorf("SMS sending failed: %s (error code: %d)", msgResp.ErrorMessage, *msgResp.ErrorCode)
	}

	return msgResp.SID, nil
}

// GetName returns the name of this SMS gateway
func (g *TwilioGateway) GetName() string {
	return "Twilio Messages API"
}
