package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visitordesk/checkin-backend/internal/models"
)

func TestNormalizer_PhoneNumberAcrossShapes(t *testing.T) {
	normalizer := NewNormalizerService()

	tests := []struct {
		name string
		sub  *models.RawSubmission
	}{
		{
			name: "structured answers with stable field ID",
			sub: &models.RawSubmission{
				Body: map[string]interface{}{
					"submissionID": "6100000042",
					"answers": map[string]interface{}{
						"152": map[string]interface{}{
							"name":   "phone",
							"text":   "Phone Number",
							"answer": "555-0199",
						},
					},
				},
			},
		},
		{
			name: "structured answers matched by question label",
			sub: &models.RawSubmission{
				Body: map[string]interface{}{
					"answers": map[string]interface{}{
						"3": map[string]interface{}{
							"name":   "contactNumber",
							"text":   "What is your phone number?",
							"answer": "555-0199",
						},
					},
				},
			},
		},
		{
			name: "flat prefixed JSON keys",
			sub: &models.RawSubmission{
				Body: map[string]interface{}{
					"q152_phone": "555-0199",
				},
			},
		},
		{
			name: "URL-encoded raw request",
			sub: &models.RawSubmission{
				RawRequest: "q152_phoneNumber=555-0199&submissionID=6100000042",
			},
		},
		{
			name: "guest-shaped object",
			sub: &models.RawSubmission{
				Body: map[string]interface{}{
					"fullName":    "Ada Lovelace",
					"phoneNumber": "555-0199",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizer.Normalize(tt.sub)
			require.NoError(t, err)
			assert.Equal(t, "555-0199", result.Guest.PhoneNumber)
		})
	}
}

func TestNormalizer_NameSplitting(t *testing.T) {
	normalizer := NewNormalizerService()

	result, err := normalizer.Normalize(&models.RawSubmission{
		Body: map[string]interface{}{
			"fullName": "Ada Lovelace",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ada", result.Guest.FirstName)
	assert.Equal(t, "Lovelace", result.Guest.LastName)
}

func TestNormalizer_CompositeAnswerValues(t *testing.T) {
	normalizer := NewNormalizerService()

	result, err := normalizer.Normalize(&models.RawSubmission{
		Body: map[string]interface{}{
			"answers": map[string]interface{}{
				"16": map[string]interface{}{
					"name":   "name",
					"text":   "Full Name",
					"answer": map[string]interface{}{"first": "Grace", "last": "Hopper"},
				},
				"152": map[string]interface{}{
					"name":   "phone",
					"text":   "Phone Number",
					"answer": map[string]interface{}{"area": "212", "phone": "5550147"},
				},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", result.Guest.FullName)
	assert.Equal(t, "Grace", result.Guest.FirstName)
	assert.Equal(t, "Hopper", result.Guest.LastName)
	assert.Equal(t, "2125550147", result.Guest.PhoneNumber)
}

func TestNormalizer_PhoneFullVariant(t *testing.T) {
	normalizer := NewNormalizerService()

	result, err := normalizer.Normalize(&models.RawSubmission{
		Body: map[string]interface{}{
			"answers": map[string]interface{}{
				"152": map[string]interface{}{
					"name":   "phone",
					"text":   "Phone",
					"answer": map[string]interface{}{"full": "+12125550147"},
				},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "+12125550147", result.Guest.PhoneNumber)
}

func TestNormalizer_CheckboxConsentCollapse(t *testing.T) {
	normalizer := NewNormalizerService()

	tests := []struct {
		name     string
		answer   interface{}
		expected string
	}{
		{"consent keyword collapses to true", []interface{}{"I consent to SMS"}, "true"},
		{"agree keyword collapses to true", []interface{}{"I agree"}, "true"},
		{"unrelated checkbox keeps joined text", []interface{}{"coffee", "tea"}, "coffee, tea"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizer.Normalize(&models.RawSubmission{
				Body: map[string]interface{}{
					"answers": map[string]interface{}{
						"174": map[string]interface{}{
							"name":   "consent",
							"text":   "SMS Updates",
							"answer": tt.answer,
						},
					},
				},
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Fields["consent"])
		})
	}
}

func TestNormalizer_HostFieldsNotStolenByGenericAliases(t *testing.T) {
	normalizer := NewNormalizerService()

	result, err := normalizer.Normalize(&models.RawSubmission{
		Body: map[string]interface{}{
			"answers": map[string]interface{}{
				"4": map[string]interface{}{
					"name":   "hostName",
					"text":   "Who are you visiting?",
					"answer": "Alan Turing",
				},
				"7": map[string]interface{}{
					"name":   "name",
					"text":   "Your Name",
					"answer": "Ada Lovelace",
				},
				"9": map[string]interface{}{
					"name":   "hostEmail",
					"text":   "Host Email",
					"answer": "alan@office.example",
				},
				"11": map[string]interface{}{
					"name":   "email",
					"text":   "Your Email",
					"answer": "ada@guest.example",
				},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Alan Turing", result.Guest.HostName)
	assert.Equal(t, "Ada Lovelace", result.Guest.FullName)
	assert.Equal(t, "alan@office.example", result.Guest.HostEmail)
	assert.Equal(t, "ada@guest.example", result.Guest.Email)
}

func TestNormalizer_DraftDefaults(t *testing.T) {
	normalizer := NewNormalizerService()

	result, err := normalizer.Normalize(&models.RawSubmission{
		Body: map[string]interface{}{
			"submissionID": "6100000042",
			"answers": map[string]interface{}{
				"16": map[string]interface{}{
					"name":   "name",
					"text":   "Full Name",
					"answer": "Bob Smith",
				},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, result.Guest.Status)
	assert.True(t, result.Guest.NotifySlack)
	assert.NotEmpty(t, result.Guest.VisitDate)
	assert.Regexp(t, `^guest_000042_\d+$`, result.Guest.ID)
	assert.Equal(t, "6100000042", result.SubmissionID)
	assert.False(t, result.Guest.CreatedAt.IsZero())
}

func TestNormalizer_MissingFieldsDoNotFail(t *testing.T) {
	normalizer := NewNormalizerService()

	result, err := normalizer.Normalize(&models.RawSubmission{
		Body: map[string]interface{}{
			"answers": map[string]interface{}{
				"99": map[string]interface{}{
					"name":   "favoriteColor",
					"text":   "Favorite Color",
					"answer": "green",
				},
			},
		},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Guest.FullName)
	assert.Empty(t, result.Guest.PhoneNumber)
	assert.Equal(t, models.StatusPending, result.Guest.Status)
	assert.NotEmpty(t, result.Guest.ID)
}

func TestNormalizer_MalformedSubmission(t *testing.T) {
	normalizer := NewNormalizerService()

	tests := []struct {
		name string
		sub  *models.RawSubmission
	}{
		{"empty submission", &models.RawSubmission{}},
		{"body with no recognizable keys", &models.RawSubmission{
			Body: map[string]interface{}{"foo": "bar"},
		}},
		{"raw request without prefixed keys", &models.RawSubmission{
			RawRequest: "foo=bar&baz=qux",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizer.Normalize(tt.sub)
			assert.ErrorIs(t, err, ErrMalformedSubmission)
		})
	}
}
