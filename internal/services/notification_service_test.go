package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visitordesk/checkin-backend/internal/models"
	"github.com/visitordesk/checkin-backend/pkg/slack"
)

type sentSMS struct {
	to      string
	message string
}

type fakeGateway struct {
	mu    sync.Mutex
	sent  []sentSMS
	err   error
	delay time.Duration
}

func (g *fakeGateway) SendMessage(ctx context.Context, to, message string) (string, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.err != nil {
		return "", g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentSMS{to: to, message: message})
	return fmt.Sprintf("SM%d", len(g.sent)), nil
}

func (g *fakeGateway) GetName() string { return "Fake" }

func (g *fakeGateway) messages() []sentSMS {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentSMS(nil), g.sent...)
}

type fakeNotifier struct {
	mu    sync.Mutex
	posts []slack.Message
	err   error
}

func (n *fakeNotifier) PostMessage(ctx context.Context, msg slack.Message) (string, error) {
	if n.err != nil {
		return "", n.err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.posts = append(n.posts, msg)
	return "1700000000.000100", nil
}

func (n *fakeNotifier) GetName() string { return "Fake" }

func (n *fakeNotifier) messages() []slack.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]slack.Message(nil), n.posts...)
}

func eligibleGuest() *models.Guest {
	return &models.Guest{
		ID:              "guest_000042_1",
		FullName:        "Bob Smith",
		FirstName:       "Bob",
		LastName:        "Smith",
		Email:           "bob@x.com",
		PhoneNumber:     "5550111",
		HostName:        "Alice Jones",
		HostPhone:       "5550222",
		PurposeOfVisit:  "Interview",
		Status:          models.StatusPending,
		SMSConsentGiven: true,
		NotifySlack:     true,
	}
}

func resultFor(t *testing.T, results []ChannelResult, channel Channel) ChannelResult {
	t.Helper()
	for _, r := range results {
		if r.Channel == channel {
			return r
		}
	}
	t.Fatalf("no result for channel %s", channel)
	return ChannelResult{}
}

func TestNotificationService_DispatchArrivalAllChannels(t *testing.T) {
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}
	service := NewNotificationService(gateway, notifier, time.Second)

	results := service.DispatchArrival(eligibleGuest())

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Success, "channel %s should succeed", r.Channel)
		assert.NoError(t, r.Err)
	}

	sent := gateway.messages()
	require.Len(t, sent, 2)
	require.Len(t, notifier.messages(), 1)
}

func TestNotificationService_SlackFailureDoesNotAffectSMS(t *testing.T) {
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{err: errors.New("slack is down")}
	service := NewNotificationService(gateway, notifier, time.Second)

	results := service.DispatchArrival(eligibleGuest())

	require.Len(t, results, 3)
	assert.True(t, resultFor(t, results, ChannelGuestSMS).Success)
	assert.True(t, resultFor(t, results, ChannelHostSMS).Success)

	slackResult := resultFor(t, results, ChannelSlack)
	assert.False(t, slackResult.Success)
	assert.Error(t, slackResult.Err)
}

func TestNotificationService_ChannelEligibility(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Guest)
		expected []Channel
	}{
		{
			name:     "no consent skips guest SMS",
			mutate:   func(g *models.Guest) { g.SMSConsentGiven = false },
			expected: []Channel{ChannelHostSMS, ChannelSlack},
		},
		{
			name:     "no phone skips guest SMS even with consent",
			mutate:   func(g *models.Guest) { g.PhoneNumber = "" },
			expected: []Channel{ChannelHostSMS, ChannelSlack},
		},
		{
			name:     "no host phone skips host SMS",
			mutate:   func(g *models.Guest) { g.HostPhone = "" },
			expected: []Channel{ChannelGuestSMS, ChannelSlack},
		},
		{
			name:     "notification preference off skips channel post",
			mutate:   func(g *models.Guest) { g.NotifySlack = false },
			expected: []Channel{ChannelGuestSMS, ChannelHostSMS},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewNotificationService(&fakeGateway{}, &fakeNotifier{}, time.Second)
			guest := eligibleGuest()
			tt.mutate(guest)

			results := service.DispatchArrival(guest)

			channels := make([]Channel, 0, len(results))
			for _, r := range results {
				channels = append(channels, r.Channel)
			}
			assert.ElementsMatch(t, tt.expected, channels)
		})
	}
}

func TestNotificationService_DispatchTransition(t *testing.T) {
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}
	service := NewNotificationService(gateway, notifier, time.Second)

	guest := eligibleGuest()
	guest.Status = models.StatusWithHost
	event := &models.TransitionEvent{
		GuestID:        guest.ID,
		PreviousStatus: models.StatusCheckedIn,
		NewStatus:      models.StatusWithHost,
		Timestamp:      time.Now().UTC(),
	}

	results := service.DispatchTransition(guest, event)

	require.Len(t, results, 2)
	assert.True(t, resultFor(t, results, ChannelGuestSMS).Success)
	assert.True(t, resultFor(t, results, ChannelSlack).Success)

	sent := gateway.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "5550111", sent[0].to)
	assert.Contains(t, sent[0].message, "you are now with your host")
}

func TestNotificationService_CheckInTransitionAlertsHost(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewNotificationService(gateway, &fakeNotifier{}, time.Second)

	guest := eligibleGuest()
	guest.Status = models.StatusCheckedIn
	event := &models.TransitionEvent{
		GuestID:        guest.ID,
		PreviousStatus: models.StatusApproved,
		NewStatus:      models.StatusCheckedIn,
		Timestamp:      time.Now().UTC(),
	}

	results := service.DispatchTransition(guest, event)

	require.Len(t, results, 3)
	assert.True(t, resultFor(t, results, ChannelHostSMS).Success)
}

func TestNotificationService_NoOpTransitionDoesNotDispatch(t *testing.T) {
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}
	service := NewNotificationService(gateway, notifier, time.Second)

	results := service.DispatchTransition(eligibleGuest(), &models.TransitionEvent{
		PreviousStatus: models.StatusPending,
		NewStatus:      models.StatusPending,
	})

	assert.Empty(t, results)
	assert.Empty(t, gateway.messages())
	assert.Empty(t, notifier.messages())
}

func TestNotificationService_TimedOutChannelIsFailed(t *testing.T) {
	gateway := &fakeGateway{delay: 200 * time.Millisecond}
	service := NewNotificationService(gateway, &fakeNotifier{}, 10*time.Millisecond)

	guest := eligibleGuest()
	guest.HostPhone = ""
	guest.NotifySlack = false

	results := service.DispatchArrival(guest)

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Error(t, results[0].Err)
}

func TestStatusMessage(t *testing.T) {
	guest := eligibleGuest()

	tests := []struct {
		status   models.Status
		contains string
	}{
		{models.StatusApproved, "has been approved"},
		{models.StatusCheckedIn, "Alice Jones has been notified"},
		{models.StatusWithHost, "you are now with your host"},
		{models.StatusCheckedOut, "Thank you for visiting us today"},
		{models.StatusCancelled, "has been cancelled"},
		{models.Status("escorted"), "status has been updated to: escorted"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			message := StatusMessage(guest, tt.status)
			assert.Contains(t, message, "Bob")
			assert.Contains(t, message, tt.contains)
		})
	}
}

func TestNotificationService_InboundReplies(t *testing.T) {
	tests := []struct {
		body     string
		contains string
	}{
		{"HELP", "Guest Check-in System Help"},
		{"stop", "unsubscribed"},
		{"Unsubscribe", "unsubscribed"},
		{"START", "resubscribed"},
		{"when is my host coming?", "team member will respond shortly"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			gateway := &fakeGateway{}
			service := NewNotificationService(gateway, &fakeNotifier{}, time.Second)

			reply, result := service.ReplyToInboundSMS(context.Background(), "5550333", tt.body)

			assert.True(t, result.Success)
			assert.Contains(t, reply, tt.contains)

			sent := gateway.messages()
			require.Len(t, sent, 1)
			assert.Equal(t, "5550333", sent[0].to)
			assert.Equal(t, reply, sent[0].message)
		})
	}
}

func TestNotificationService_SendGuestSMSRequiresConsent(t *testing.T) {
	gateway := &fakeGateway{}
	service := NewNotificationService(gateway, &fakeNotifier{}, time.Second)

	guest := eligibleGuest()
	guest.SMSConsentGiven = false

	result := service.SendGuestSMS(context.Background(), guest, "your badge is ready")

	assert.False(t, result.Success)
	assert.Error(t, result.Err)
	assert.Empty(t, gateway.messages())
}
