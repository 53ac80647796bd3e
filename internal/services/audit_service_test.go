package services

import (
	"encoding/json"
	"testing"

	"bullion/internal/models"
	"bullion/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_action_with_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log("CREATE_ENTRY", "ledger_entry", "entry-1", "10.0.0.1", map[string]any{"asset_type": "AED"})

		var logs []models.AuditLog
		if err := db.Find(&logs).Error; err != nil {
			t.Fatalf("failed to read audit logs: %v", err)
		}
		if len(logs) != 1 {
			t.Fatalf("expected 1 audit log, got %d", len(logs))
		}
		if logs[0].Action != "CREATE_ENTRY" || logs[0].ResourceID != "entry-1" {
			t.Errorf("unexpected audit log: %+v", logs[0])
		}
		var changes map[string]any
		if err := json.Unmarshal([]byte(logs[0].Changes), &changes); err != nil {
			t.Fatalf("changes are not JSON: %v", err)
		}
		if changes["asset_type"] != "AED" {
			t.Errorf("expected asset_type AED, got %v", changes["asset_type"])
		}
	})

	t.Run("nil_changes_stored_empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log("DELETE_ENTRY", "ledger_entry", "entry-2", "", nil)

		var log models.AuditLog
		if err := db.First(&log).Error; err != nil {
			t.Fatalf("failed to read audit log: %v", err)
		}
		if log.Changes != "" {
			t.Errorf("expected empty changes, got %q", log.Changes)
		}
	})

	t.Run("unmarshalable_changes_fall_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log("UPDATE_ACCOUNT", "account", "acc-1", "", map[string]any{"bad": make(chan int)})

		var log models.AuditLog
		if err := db.First(&log).Error; err != nil {
			t.Fatalf("failed to read audit log: %v", err)
		}
		if log.Changes != "{}" {
			t.Errorf("expected {} fallback, got %q", log.Changes)
		}
	})
}
