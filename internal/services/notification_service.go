package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/visitordesk/checkin-backend/internal/models"
	"github.com/visitordesk/checkin-backend/pkg/slack"
	"github.com/visitordesk/checkin-backend/pkg/sms"
)

// Channel identifies one notification delivery mechanism
type Channel string

const (
	ChannelGuestSMS Channel = "guest_sms"
	ChannelHostSMS  Channel = "host_sms"
	ChannelSlack    Channel = "slack"
)

// ChannelResult is the outcome of one channel send attempt
type ChannelResult struct {
	Channel Channel
	Success bool
	Err     error
}

// NotificationService fans a guest event out to the eligible channels.
// Every send runs in its own goroutine with its own timeout; one channel
// failing or timing out never aborts the others, and no channel outcome
// ever rolls back the state change that triggered the dispatch. Callers
// get the per-channel results and decide what to log.
type NotificationService struct {
	gateway  sms.Gateway
	notifier slack.Notifier
	timeout  time.Duration
}

// NewNotificationService creates a new notification service
func NewNotificationService(gateway sms.Gateway, notifier slack.Notifier, timeout time.Duration) *NotificationService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationService{
		gateway:  gateway,
		notifier: notifier,
		timeout:  timeout,
	}
}

// channelSend pairs a channel tag with its delivery closure
type channelSend struct {
	channel Channel
	send    func(ctx context.Context) error
}

// DispatchArrival notifies the eligible channels that a guest submitted the
// registration form. Guest SMS requires a phone number and consent, host
// SMS requires a host phone number, and the channel post honors the guest's
// notification preference.
func (s *NotificationService) DispatchArrival(guest *models.Guest) []ChannelResult {
	var sends []channelSend

	if guest.PhoneNumber != "" && guest.SMSConsentGiven {
		sends = append(sends, channelSend{ChannelGuestSMS, func(ctx context.Context) error {
			_, err := s.gateway.SendMessage(ctx, guest.PhoneNumber, welcomeMessage(guest))
			return err
		}})
	}

	if guest.HostPhone != "" {
		sends = append(sends, channelSend{ChannelHostSMS, func(ctx context.Context) error {
			_, err := s.gateway.SendMessage(ctx, guest.HostPhone, hostArrivalMessage(guest))
			return err
		}})
	}

	if guest.NotifySlack {
		sends = append(sends, channelSend{ChannelSlack, func(ctx context.Context) error {
			_, err := s.notifier.PostMessage(ctx, arrivalPost(guest))
			return err
		}})
	}

	return s.dispatch(guest.ID, sends)
}

// DispatchTransition notifies the eligible channels of a status change.
// No-op transitions re-entering the current status do not re-fire.
func (s *NotificationService) DispatchTransition(guest *models.Guest, event *models.TransitionEvent) []ChannelResult {
	if event.NoOp() {
		return nil
	}

	var sends []channelSend

	if guest.PhoneNumber != "" && guest.SMSConsentGiven {
		sends = append(sends, channelSend{ChannelGuestSMS, func(ctx context.Context) error {
			_, err := s.gateway.SendMessage(ctx, guest.PhoneNumber, StatusMessage(guest, event.NewStatus))
			return err
		}})
	}

	if guest.HostPhone != "" && event.NewStatus == models.StatusCheckedIn {
		sends = append(sends, channelSend{ChannelHostSMS, func(ctx context.Context) error {
			_, err := s.gateway.SendMessage(ctx, guest.HostPhone, hostArrivalMessage(guest))
			return err
		}})
	}

	if guest.NotifySlack {
		sends = append(sends, channelSend{ChannelSlack, func(ctx context.Context) error {
			_, err := s.notifier.PostMessage(ctx, statusChangePost(guest, event))
			return err
		}})
	}

	return s.dispatch(guest.ID, sends)
}

// NotifyHost sends an on-demand alert to the guest's host
func (s *NotificationService) NotifyHost(ctx context.Context, guest *models.Guest, message string) ChannelResult {
	if guest.HostPhone == "" {
		return ChannelResult{Channel: ChannelHostSMS, Err: fmt.Errorf("guest has no host phone number")}
	}

	if message == "" {
		message = hostArrivalMessage(guest)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.gateway.SendMessage(sendCtx, guest.HostPhone, message)
	return ChannelResult{Channel: ChannelHostSMS, Success: err == nil, Err: err}
}

// SendGuestSMS sends a custom message to the guest, honoring consent
func (s *NotificationService) SendGuestSMS(ctx context.Context, guest *models.Guest, message string) ChannelResult {
	if guest.PhoneNumber == "" {
		return ChannelResult{Channel: ChannelGuestSMS, Err: fmt.Errorf("guest has no phone number")}
	}
	if !guest.SMSConsentGiven {
		return ChannelResult{Channel: ChannelGuestSMS, Err: fmt.Errorf("guest has not consented to SMS")}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.gateway.SendMessage(sendCtx, guest.PhoneNumber, message)
	return ChannelResult{Channel: ChannelGuestSMS, Success: err == nil, Err: err}
}

// ReplyToInboundSMS picks the auto-reply for an incoming message and sends
// it back to the sender. The reply text is returned for the audit trail.
func (s *NotificationService) ReplyToInboundSMS(ctx context.Context, from, body string) (string, ChannelResult) {
	reply := inboundReply(body)

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.gateway.SendMessage(sendCtx, from, reply)
	return reply, ChannelResult{Channel: ChannelGuestSMS, Success: err == nil, Err: err}
}

// dispatch runs every send concurrently and collects the per-channel
// outcomes. Failures are logged here; callers never treat them as request
// failures.
func (s *NotificationService) dispatch(guestID string, sends []channelSend) []ChannelResult {
	results := make([]ChannelResult, len(sends))

	var wg sync.WaitGroup
	for i, cs := range sends {
		wg.Add(1)
		go func(i int, cs channelSend) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			err := cs.send(ctx)
			results[i] = ChannelResult{Channel: cs.channel, Success: err == nil, Err: err}

			if err != nil {
				logrus.WithFields(logrus.Fields{
					"channel":  cs.channel,
					"guest_id": guestID,
					"error":    err.Error(),
				}).Warn("Notification channel delivery failed")
			}
		}(i, cs)
	}
	wg.Wait()

	return results
}

// StatusMessage maps a status to the guest-facing SMS text. Unrecognized
// statuses fall back to a generic update line instead of failing.
func StatusMessage(guest *models.Guest, status models.Status) string {
	switch status {
	case models.StatusApproved:
		return fmt.Sprintf("Hi %s, your visit has been approved! Please proceed to our office at your scheduled time.", guest.FirstName)
	case models.StatusCheckedIn:
		return fmt.Sprintf("Thank you for checking in, %s! Your host %s has been notified. Please take a seat and they will be with you shortly.", guest.FirstName, guest.HostName)
	case models.StatusWithHost:
		return fmt.Sprintf("Hi %s, you are now with your host. Enjoy your visit!", guest.FirstName)
	case models.StatusCheckedOut:
		return fmt.Sprintf("Thank you for visiting us today, %s! We hope you had a productive visit. Have a great day!", guest.FirstName)
	case models.StatusCancelled:
		return fmt.Sprintf("Hi %s, your visit has been cancelled. Please contact your host if you need to reschedule.", guest.FirstName)
	default:
		return fmt.Sprintf("Hi %s, your visit status has been updated to: %s", guest.FirstName, status)
	}
}

// welcomeMessage is the consent confirmation sent right after submission
func welcomeMessage(guest *models.Guest) string {
	host := guest.HostName
	if host == "" {
		host = "our team"
	}
	return fmt.Sprintf("Thank you for checking in, %s! Your host %s has been notified of your arrival.\n\n"+
		"You'll receive SMS updates about your visit. Message and data rates may apply. Text STOP to opt out anytime.\n\n"+
		"Welcome to our office!", guest.FirstName, host)
}

// hostArrivalMessage is the alert sent to the host's phone
func hostArrivalMessage(guest *models.Guest) string {
	company := guest.Company
	if company == "" {
		company = "N/A"
	}
	return fmt.Sprintf("Guest arrival: %s has checked in.\n\n"+
		"Email: %s\nPhone: %s\nCompany: %s\nPurpose: %s\n\n"+
		"Please proceed to reception when ready.",
		guest.DisplayName(), guest.Email, guest.PhoneNumber, company, guest.PurposeOfVisit)
}

// inboundReply selects the auto-reply for an incoming SMS body
func inboundReply(body string) string {
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "help":
		return "Guest Check-in System Help:\n\n" +
			"- Reply STOP to opt out of messages\n" +
			"- For immediate assistance, call our main number\n\n" +
			"Office Hours: Monday-Friday 9AM-5PM"
	case "stop", "unsubscribe":
		return "You have been unsubscribed from check-in notifications. Reply START to resubscribe."
	case "start", "subscribe":
		return "You have been resubscribed to check-in notifications. Welcome back!"
	default:
		return "Thank you for your message. A team member will respond shortly. " +
			"For immediate assistance, please call our main number or visit the reception desk.\n\n" +
			"Reply HELP for more options."
	}
}

// arrivalPost builds the channel message announcing a new submission
func arrivalPost(guest *models.Guest) slack.Message {
	blocks := []slack.Block{
		slack.HeaderBlock("Guest Arrival Notification"),
		slack.FieldsBlock(
			fmt.Sprintf("*Guest:*\n%s", guest.DisplayName()),
			fmt.Sprintf("*Host:*\n%s", guest.HostName),
			fmt.Sprintf("*Company:*\n%s", orNA(guest.Company)),
			fmt.Sprintf("*Visit Date:*\n%s", guest.VisitDate),
			fmt.Sprintf("*Email:*\n%s", guest.Email),
			fmt.Sprintf("*Phone:*\n%s", guest.PhoneNumber),
		),
		slack.SectionBlock(fmt.Sprintf("*Purpose of Visit:*\n%s", guest.PurposeOfVisit)),
	}

	if guest.SpecialRequirements != "" {
		blocks = append(blocks, slack.SectionBlock(
			fmt.Sprintf("*Special Requirements:*\n%s", guest.SpecialRequirements)))
	}

	return slack.Message{
		Text:   fmt.Sprintf("Guest %s has arrived for %s", guest.DisplayName(), guest.HostName),
		Blocks: blocks,
	}
}

// statusColors carry the legacy attachment color bar per status
var statusColors = map[models.Status]string{
	models.StatusPending:    "#ffeb3b",
	models.StatusApproved:   "#4caf50",
	models.StatusCheckedIn:  "#2196f3",
	models.StatusWithHost:   "#ff9800",
	models.StatusCheckedOut: "#9e9e9e",
	models.StatusCancelled:  "#f44336",
}

// statusChangePost builds the channel message for a status transition
func statusChangePost(guest *models.Guest, event *models.TransitionEvent) slack.Message {
	return slack.Message{
		Text: fmt.Sprintf("Guest %s status updated to %s", guest.DisplayName(), event.NewStatus),
		Blocks: []slack.Block{
			slack.SectionBlock(fmt.Sprintf("*Guest Status Update*\n\n*%s* status changed from *%s* to *%s*",
				guest.DisplayName(), event.PreviousStatus, event.NewStatus)),
			slack.ContextBlock(fmt.Sprintf("Host: %s | Time: %s",
				guest.HostName, event.Timestamp.Format(time.RFC1123))),
		},
		Attachments: []slack.Attachment{
			{
				Color:    statusColors[event.NewStatus],
				Fallback: fmt.Sprintf("Guest status updated to %s", event.NewStatus),
			},
		},
	}
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
