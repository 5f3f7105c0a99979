package Telegram

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Mason/Models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mason_test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func TestParseActionEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		action  string
		wantErr bool
	}{
		{
			name:   "clean json",
			raw:    `{"action":"create_worker","data":{"full_name":"Ahmed"}}`,
			action: "create_worker",
		},
		{
			name:   "fenced json",
			raw:    "```json\n{\"action\":\"record_payment\",\"data\":{\"amount\":500}}\n```",
			action: "record_payment",
		},
		{
			name:   "surrounding prose",
			raw:    `Sure, here is the result: {"action":"record_attendance","data":{"worker_name":"Omar"}} hope that helps`,
			action: "record_attendance",
		},
		{
			name:    "no json at all",
			raw:     "I cannot do that",
			wantErr: true,
		},
		{
			name:    "missing action",
			raw:     `{"data":{}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope, err := ParseActionEnvelope(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, envelope.Action)
		})
	}
}

func TestExecuteCreateWorker(t *testing.T) {
	db := testDB(t)
	w := &WebhookController{DB: db}

	reply := w.execute(ActionEnvelope{
		Action: "create_worker",
		Data:   json.RawMessage(`{"full_name":"Ahmed Hassan","daily_rate":400,"position":"mason"}`),
	})
	assert.Contains(t, reply, "Ahmed Hassan")

	var worker Models.Worker
	require.NoError(t, db.First(&worker).Error)
	assert.Equal(t, "Ahmed Hassan", worker.FullName)
	assert.Equal(t, 400.0, worker.DailyRate)
	assert.Equal(t, Models.WorkerStatusActive, worker.Status)

	// Duplicate name is refused
	reply = w.execute(ActionEnvelope{
		Action: "create_worker",
		Data:   json.RawMessage(`{"full_name":"ahmed hassan"}`),
	})
	assert.Contains(t, reply, "already exists")

	var count int64
	db.Model(&Models.Worker{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestExecuteRecordAttendanceFuzzyLookupAndUpsert(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&Models.Worker{
		FullName: "Ahmed Hassan", Status: Models.WorkerStatusActive,
	}).Error)
	w := &WebhookController{DB: db}

	reply := w.execute(ActionEnvelope{
		Action: "record_attendance",
		Data:   json.RawMessage(`{"worker_name":"hassan","date":"2025-06-10","status":"present"}`),
	})
	assert.Contains(t, reply, "Ahmed Hassan")

	// Correction for the same day replaces the row
	reply = w.execute(ActionEnvelope{
		Action: "record_attendance",
		Data:   json.RawMessage(`{"worker_name":"hassan","date":"2025-06-10","status":"sick"}`),
	})
	assert.Contains(t, reply, "sick")

	var rows []Models.Attendance
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, Models.AttendanceSick, rows[0].Status)
}

func TestExecuteRecordAttendanceUnknownWorker(t *testing.T) {
	db := testDB(t)
	w := &WebhookController{DB: db}

	reply := w.execute(ActionEnvelope{
		Action: "record_attendance",
		Data:   json.RawMessage(`{"worker_name":"nobody","date":"2025-06-10"}`),
	})
	assert.Contains(t, reply, "could not find")
}

func TestExecuteRecordPayment(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&Models.Worker{
		FullName: "Omar Said", Status: Models.WorkerStatusActive,
	}).Error)
	w := &WebhookController{DB: db}

	reply := w.execute(ActionEnvelope{
		Action: "record_payment",
		Data:   json.RawMessage(`{"worker_name":"omar","amount":2000,"date":"2025-06-12"}`),
	})
	assert.Contains(t, reply, "Omar Said")
	assert.Contains(t, reply, "2000.00")

	var payment Models.Payment
	require.NoError(t, db.First(&payment).Error)
	assert.Equal(t, 2000.0, payment.Amount)
	assert.Equal(t, "2025-06-12", payment.PayDate)

	// Non-positive amounts never hit the ledger
	reply = w.execute(ActionEnvelope{
		Action: "record_payment",
		Data:   json.RawMessage(`{"worker_name":"omar","amount":0}`),
	})
	assert.Contains(t, reply, "greater than zero")
}

func TestExecuteNoneAndUnknownActions(t *testing.T) {
	w := &WebhookController{DB: testDB(t)}

	reply := w.execute(ActionEnvelope{
		Action: "none",
		Data:   json.RawMessage(`{"reason":"that is a greeting"}`),
	})
	assert.Equal(t, "that is a greeting", reply)

	reply = w.execute(ActionEnvelope{Action: "delete_everything"})
	assert.Contains(t, reply, "delete_everything")
}
