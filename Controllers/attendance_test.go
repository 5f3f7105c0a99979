package Controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Mason/Models"
)

func TestRecordAttendanceSecondWriteWins(t *testing.T) {
	db := testDB(t)
	worker := seedWorker(t, db, "Ahmed Hassan", 400)

	app := fiber.New()
	app.Post("/attendance", NewAttendanceController(db).RecordAttendance)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/attendance", fiber.Map{
		"worker_id":    worker.ID,
		"work_date":    "2025-06-10",
		"status":       Models.AttendancePresent,
		"hours_worked": 8,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	// Same worker, same day, corrected status
	res, err = app.Test(jsonRequest(t, http.MethodPost, "/attendance", fiber.Map{
		"worker_id": worker.ID,
		"work_date": "2025-06-10",
		"status":    Models.AttendanceSick,
		"notes":     "called in sick",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var rows []Models.Attendance
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, Models.AttendanceSick, rows[0].Status)
	assert.Equal(t, "called in sick", rows[0].Notes)
}

func TestRecordAttendanceValidation(t *testing.T) {
	db := testDB(t)
	worker := seedWorker(t, db, "Omar Said", 350)

	app := fiber.New()
	app.Post("/attendance", NewAttendanceController(db).RecordAttendance)

	// Bad date format
	res, err := app.Test(jsonRequest(t, http.MethodPost, "/attendance", fiber.Map{
		"worker_id": worker.ID,
		"work_date": "10/06/2025",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Unknown worker
	res, err = app.Test(jsonRequest(t, http.MethodPost, "/attendance", fiber.Map{
		"worker_id": 999,
		"work_date": "2025-06-10",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUpsertAttendanceDefaultsToPresent(t *testing.T) {
	db := testDB(t)
	worker := seedWorker(t, db, "Mostafa Ali", 450)

	app := fiber.New()
	app.Post("/attendance", NewAttendanceController(db).RecordAttendance)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/attendance", fiber.Map{
		"worker_id": worker.ID,
		"work_date": "2025-06-11",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var row Models.Attendance
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, Models.AttendancePresent, row.Status)
}

func TestGetAttendanceFiltersByWorker(t *testing.T) {
	db := testDB(t)
	first := seedWorker(t, db, "Ali Mahmoud", 400)
	second := seedWorker(t, db, "Hassan Ibrahim", 350)

	require.NoError(t, UpsertAttendance(db, &Models.Attendance{
		WorkerID: first.ID, WorkDate: "2025-06-10", Status: Models.AttendancePresent,
	}))
	require.NoError(t, UpsertAttendance(db, &Models.Attendance{
		WorkerID: second.ID, WorkDate: "2025-06-10", Status: Models.AttendanceAbsent,
	}))

	app := fiber.New()
	app.Get("/attendance", NewAttendanceController(db).GetAttendance)

	res, err := app.Test(jsonRequest(t, http.MethodGet, fmt.Sprintf("/attendance?worker_id=%d", first.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var rows []Models.Attendance
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].WorkerID)

	// Unparseable filter falls back to the unfiltered listing
	res, err = app.Test(jsonRequest(t, http.MethodGet, "/attendance?worker_id=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rows))
	assert.Len(t, rows, 2)
}

func TestUpsertAttendanceRestoresDeletedDay(t *testing.T) {
	db := testDB(t)
	worker := seedWorker(t, db, "Tarek Fouad", 380)

	require.NoError(t, UpsertAttendance(db, &Models.Attendance{
		WorkerID: worker.ID, WorkDate: "2025-06-12", Status: Models.AttendancePresent,
	}))

	var row Models.Attendance
	require.NoError(t, db.First(&row).Error)
	require.NoError(t, db.Delete(&row).Error)

	// Re-recording the same day after a delete must surface again
	require.NoError(t, UpsertAttendance(db, &Models.Attendance{
		WorkerID: worker.ID, WorkDate: "2025-06-12", Status: Models.AttendanceSick, Notes: "re-recorded",
	}))

	var rows []Models.Attendance
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, Models.AttendanceSick, rows[0].Status)
	assert.Equal(t, "re-recorded", rows[0].Notes)
}

func TestUpsertAttendanceDifferentDaysKeepBothRows(t *testing.T) {
	db := testDB(t)
	worker := seedWorker(t, db, "Karim Adel", 300)

	require.NoError(t, UpsertAttendance(db, &Models.Attendance{
		WorkerID: worker.ID, WorkDate: "2025-06-01", Status: Models.AttendancePresent,
	}))
	require.NoError(t, UpsertAttendance(db, &Models.Attendance{
		WorkerID: worker.ID, WorkDate: "2025-06-02", Status: Models.AttendanceAbsent,
	}))

	var count int64
	db.Model(&Models.Attendance{}).Count(&count)
	assert.Equal(t, int64(2), count)
}
