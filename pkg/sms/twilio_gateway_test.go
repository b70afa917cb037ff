package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTwilioGateway(t *testing.T) {
	config := TwilioConfig{
		AccountSID: "ACtest",
		AuthToken:  "secret",
		FromNumber: "+15550001111",
	}

	gateway := NewTwilioGateway(config)

	assert.NotNil(t, gateway)
	assert.Equal(t, "https://api.twilio.com/2010-04-01", gateway.apiURL)
	assert.Equal(t, config.AccountSID, gateway.accountSID)
	assert.Equal(t, config.AuthToken, gateway.authToken)
	assert.Equal(t, config.FromNumber, gateway.fromNumber)
	assert.NotNil(t, gateway.client)
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{
			name:     "10-digit national number",
			input:    "5551234567",
			expected: "+15551234567",
		},
		{
			name:     "with dashes",
			input:    "555-123-4567",
			expected: "+15551234567",
		},
		{
			name:     "with parentheses and spaces",
			input:    "(555) 123 4567",
			expected: "+15551234567",
		},
		{
			name:     "already E.164",
			input:    "+15551234567",
			expected: "+15551234567",
		},
		{
			name:     "11 digits with country code",
			input:    "15551234567",
			expected: "+15551234567",
		},
		{
			name:        "too short",
			input:       "555-1111",
			expectError: true,
		},
		{
			name:        "empty",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FormatPhoneNumber(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSendMessage(t *testing.T) {
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"To":   r.PostFormValue("To"),
			"From": r.PostFormValue("From"),
			"Body": r.PostFormValue("Body"),
		}

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ACtest", user)
		assert.Equal(t, "secret", pass)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sid":    "SM123",
			"status": "queued",
		})
	}))
	defer server.Close()

	gateway := NewTwilioGateway(TwilioConfig{
		APIURL:     server.URL,
		AccountSID: "ACtest",
		AuthToken:  "secret",
		FromNumber: "+15550001111",
	})

	sid, err := gateway.SendMessage(context.Background(), "555-123-4567", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)
	assert.Equal(t, "+15551234567", gotForm["To"])
	assert.Equal(t, "+15550001111", gotForm["From"])
	assert.Equal(t, "hello", gotForm["Body"])
}

func TestSendMessage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Authentication Error",
		})
	}))
	defer server.Close()

	gateway := NewTwilioGateway(TwilioConfig{
		APIURL:     server.URL,
		AccountSID: "ACtest",
		AuthToken:  "wrong",
		FromNumber: "+15550001111",
	})

	_, err := gateway.SendMessage(context.Background(), "5551234567", "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication Error")
}
