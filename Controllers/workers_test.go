package Controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
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

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedWorker(t *testing.T, db *gorm.DB, name string, rate float64) Models.Worker {
	t.Helper()
	worker := Models.Worker{FullName: name, DailyRate: rate, Status: Models.WorkerStatusActive}
	require.NoError(t, db.Create(&worker).Error)
	return worker
}

func TestDeleteWorkerBlockedByActiveAssignment(t *testing.T) {
	db := testDB(t)
	worker := seedWorker(t, db, "Ahmed Hassan", 400)
	project := Models.Project{Name: "Villa 12", Status: "active"}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&Models.WorkerAssignment{
		WorkerID: worker.ID, ProjectID: project.ID, StartDate: "2025-06-01",
	}).Error)
	require.NoError(t, db.Create(&Models.Attendance{
		WorkerID: worker.ID, WorkDate: "2025-06-02", Status: Models.AttendancePresent,
	}).Error)

	app := fiber.New()
	app.Delete("/workers/:id", NewWorkerController(db).DeleteWorker)

	res, err := app.Test(httptest.NewRequest(http.MethodDelete, "/workers/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	// Nothing was deleted
	var workers, attendance int64
	db.Model(&Models.Worker{}).Count(&workers)
	db.Model(&Models.Attendance{}).Count(&attendance)
	assert.Equal(t, int64(1), workers)
	assert.Equal(t, int64(1), attendance)
}

func TestDeleteWorkerCascades(t *testing.T) {
	db := testDB(t)
	worker := seedWorker(t, db, "Omar Said", 350)
	project := Models.Project{Name: "Warehouse", Status: "active"}
	require.NoError(t, db.Create(&project).Error)

	ended := "2025-06-30"
	require.NoError(t, db.Create(&Models.WorkerAssignment{
		WorkerID: worker.ID, ProjectID: project.ID, StartDate: "2025-06-01", EndDate: &ended,
	}).Error)
	require.NoError(t, db.Create(&Models.Attendance{
		WorkerID: worker.ID, WorkDate: "2025-06-02", Status: Models.AttendancePresent,
	}).Error)
	require.NoError(t, db.Create(&Models.Payment{
		WorkerID: worker.ID, PayDate: "2025-06-15", Amount: 1000,
	}).Error)

	app := fiber.New()
	app.Delete("/workers/:id", NewWorkerController(db).DeleteWorker)

	res, err := app.Test(httptest.NewRequest(http.MethodDelete, "/workers/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var workers, attendance, payments, assignments int64
	db.Model(&Models.Worker{}).Count(&workers)
	db.Model(&Models.Attendance{}).Count(&attendance)
	db.Model(&Models.Payment{}).Count(&payments)
	db.Model(&Models.WorkerAssignment{}).Count(&assignments)
	assert.Zero(t, workers)
	assert.Zero(t, attendance)
	assert.Zero(t, payments)
	assert.Zero(t, assignments)
}

func TestCreateWorker(t *testing.T) {
	db := testDB(t)
	app := fiber.New()
	app.Post("/workers", NewWorkerController(db).CreateWorker)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/workers", fiber.Map{
		"full_name":  "Mostafa Ali",
		"daily_rate": 450,
		"position":   "electrician",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var worker Models.Worker
	require.NoError(t, db.First(&worker).Error)
	assert.Equal(t, "Mostafa Ali", worker.FullName)
	assert.Equal(t, Models.WorkerStatusActive, worker.Status)
}

func TestFindWorkerByName(t *testing.T) {
	db := testDB(t)
	seedWorker(t, db, "Ahmed Hassan", 400)
	seedWorker(t, db, "Ahmed Mostafa", 350)
	fired := Models.Worker{FullName: "Karim Fouad", Status: Models.WorkerStatusFired}
	require.NoError(t, db.Create(&fired).Error)

	// Exact match wins over containment
	worker, found := FindWorkerByName(db, "ahmed hassan")
	require.True(t, found)
	assert.Equal(t, "Ahmed Hassan", worker.FullName)

	// Partial, case and whitespace insensitive
	worker, found = FindWorkerByName(db, "  MOSTAFA ")
	require.True(t, found)
	assert.Equal(t, "Ahmed Mostafa", worker.FullName)

	// Fired workers are invisible to the lookup
	_, found = FindWorkerByName(db, "Karim")
	assert.False(t, found)

	_, found = FindWorkerByName(db, "nobody")
	assert.False(t, found)

	_, found = FindWorkerByName(db, "   ")
	assert.False(t, found)
}
