package main

import (
	"fmt"
	"log"

	"github.com/visitordesk/checkin-backend/internal/config"
	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
	"github.com/visitordesk/checkin-backend/internal/services"
)

// Writes a few audit records against the configured database and reads them
// back. Useful for verifying the audit_log schema after a migration.
func main() {
	fmt.Println("=== Audit Logging Test ===")
	fmt.Println()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	fmt.Println("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("✅ Database connected")
	fmt.Println()

	auditService := services.NewAuditService(database.NewAuditRepository(db))

	guest := &models.Guest{
		ID:        "guest_smoke_0000000000000",
		FullName:  "Audit Smoke",
		FirstName: "Audit",
		LastName:  "Smoke",
		Status:    models.StatusPending,
	}
	meta := services.RequestMeta{IPAddress: "203.0.113.9", UserAgent: "AuditSmoke/1.0"}

	// Test 1: guest created
	fmt.Println("TEST 1: Logging guest creation...")
	auditService.RecordGuestCreated(guest, "smoke-test", meta)
	fmt.Println("✅ Guest creation logged")
	fmt.Println()

	// Test 2: status update
	fmt.Println("TEST 2: Logging status update...")
	guest.Status = models.StatusCheckedIn
	auditService.RecordStatusUpdated(guest, models.StatusPending, "smoke-test", "", meta)
	fmt.Println("✅ Status update logged")
	fmt.Println()

	// Test 3: read back the trail
	fmt.Println("TEST 3: Reading guest history...")
	records, err := auditService.GetGuestHistory(guest.ID, 10)
	if err != nil {
		log.Fatalf("Failed to read guest history: %v", err)
	}
	for _, record := range records {
		fmt.Printf("  %s  %-22s %s → %s\n",
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Action, record.PreviousStatus, record.NewStatus)
	}
	fmt.Printf("✅ Read %d records\n", len(records))
	fmt.Println()

	fmt.Println("=== All audit tests completed ===")
}
