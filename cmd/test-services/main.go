package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
	"github.com/visitordesk/checkin-backend/internal/services"
	"github.com/visitordesk/checkin-backend/pkg/slack"
	"github.com/visitordesk/checkin-backend/pkg/sms"
)

// Exercises the full submission pipeline against in-memory stores with the
// dev gateway and notifier. No database or external credentials required.
func main() {
	fmt.Println("🧪 VisitorDesk Services Integration Test")
	fmt.Println()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	guests := database.NewMemoryGuestStore()
	audits := database.NewMemoryAuditStore()

	auditService := services.NewAuditService(audits)
	visitService := services.NewVisitService(
		services.NewNormalizerService(),
		services.NewConsentService(auditService),
		services.NewStatusService(guests),
		services.NewNotificationService(sms.NewLogGateway(logger), slack.NewLogNotifier(), 5*time.Second),
		auditService,
		guests,
	)

	fmt.Println("✅ Services initialized (in-memory stores, dev gateways)")
	fmt.Println()

	// Test 1: Form submission with consent
	fmt.Println("📋 Testing form submission pipeline")
	fmt.Println("----------------------------")

	sub := &models.RawSubmission{
		Body: map[string]interface{}{
			"q16_name":     "Bob Smith",
			"q17_email":    "bob@example.com",
			"q152_phone":   "555-0111",
			"q20_host":     "Alice Jones",
			"q174_consent": []interface{}{"I agree to receive SMS updates"},
		},
	}

	guest, results, err := visitService.ProcessSubmission(sub)
	if err != nil {
		log.Fatalf("❌ Submission failed: %v", err)
	}

	fmt.Printf("  ✅ Guest created: %s (%s)\n", guest.DisplayName(), guest.ID)
	fmt.Printf("  ✅ Status: %s, SMS consent: %v\n", guest.Status, guest.SMSConsentGiven)
	for _, result := range results {
		status := "✅"
		if !result.Success {
			status = "❌"
		}
		fmt.Printf("  %s Channel %s: success=%v\n", status, result.Channel, result.Success)
	}
	fmt.Println()

	// Test 2: Status transitions
	fmt.Println("🔄 Testing status transitions")
	fmt.Println("----------------------------")

	for _, status := range []models.Status{models.StatusApproved, models.StatusCheckedIn, models.StatusCheckedOut} {
		updated, _, err := visitService.UpdateStatus(guest.ID, status, "", "smoke-test", services.RequestMeta{})
		if err != nil {
			log.Fatalf("❌ Transition to %s failed: %v", status, err)
		}
		fmt.Printf("  ✅ %s\n", updated.Status)
	}
	fmt.Println()

	// Test 3: Inbound SMS auto-replies
	fmt.Println("📱 Testing inbound SMS handling")
	fmt.Println("----------------------------")

	for _, body := range []string{"HELP", "STOP", "START", "running late"} {
		reply, err := visitService.HandleInboundSMS(context.Background(), "555-0111", body)
		if err != nil {
			log.Fatalf("❌ Inbound SMS %q failed: %v", body, err)
		}
		fmt.Printf("  ✅ %q → %q\n", body, reply)
	}
	fmt.Println()

	// Summary: audit trail
	fmt.Println("📜 Audit trail")
	fmt.Println("----------------------------")
	for _, record := range audits.All() {
		fmt.Printf("  %s  %-22s %s\n", record.Timestamp.Format(time.RFC3339), record.Action, record.GuestName)
	}

	fmt.Println()
	fmt.Println("✅ All integration tests completed successfully!")
}
