package Controllers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Mason/Models"
)

func TestExportWorkersPayrollCSV(t *testing.T) {
	db := testDB(t)
	worker := seedWorker(t, db, "Ahmed Hassan", 3000)
	for i := 1; i <= 10; i++ {
		require.NoError(t, db.Create(&Models.Attendance{
			WorkerID: worker.ID,
			WorkDate: fmt.Sprintf("2025-06-%02d", i),
			Status:   Models.AttendancePresent,
		}).Error)
	}
	require.NoError(t, db.Create(&Models.Payment{
		WorkerID: worker.ID, PayDate: "2025-06-15", Amount: 15000,
	}).Error)

	app := fiber.New()
	app.Post("/reports/export", NewReportController(db).Export)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/reports/export", fiber.Map{
		"reportType": ReportWorkersPayroll,
		"format":     "csv",
		"filters":    fiber.Map{"startDate": "2025-06-01", "endDate": "2025-06-30"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(res.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Every row has exactly as many columns as the header
	header := records[0]
	for _, row := range records[1:] {
		assert.Len(t, row, len(header))
	}
	assert.Equal(t, "full_name", header[1])
	assert.Equal(t, "Ahmed Hassan", records[1][1])
}

func TestExportJSONEnvelope(t *testing.T) {
	db := testDB(t)
	project := Models.Project{Name: "Villa 12", Budget: 100000, ActualCost: 40000, Status: "active"}
	require.NoError(t, db.Create(&project).Error)

	app := fiber.New()
	app.Post("/reports/export", NewReportController(db).Export)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/reports/export", fiber.Map{
		"reportType": ReportProjectsFinancial,
		"format":     "json",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var envelope struct {
		ReportType   string           `json:"reportType"`
		GeneratedAt  string           `json:"generatedAt"`
		TotalRecords int              `json:"totalRecords"`
		Data         []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))
	assert.Equal(t, ReportProjectsFinancial, envelope.ReportType)
	assert.NotEmpty(t, envelope.GeneratedAt)
	assert.Equal(t, 1, envelope.TotalRecords)
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Villa 12", envelope.Data[0]["name"])
	assert.Equal(t, 40.0, envelope.Data[0]["budget_utilization_pct"])
}

func TestExportExpensesBreakdown(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&Models.Expense{Category: "materials", Amount: 300, SpentAt: "2025-06-02"}).Error)
	require.NoError(t, db.Create(&Models.Expense{Category: "materials", Amount: 200, SpentAt: "2025-06-03"}).Error)
	require.NoError(t, db.Create(&Models.Expense{Category: "fuel", Amount: 500, SpentAt: "2025-06-04"}).Error)

	app := fiber.New()
	app.Post("/reports/export", NewReportController(db).Export)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/reports/export", fiber.Map{
		"reportType": ReportExpensesBreakdown,
		"format":     "json",
		"filters":    fiber.Map{"startDate": "2025-06-01", "endDate": "2025-06-30"},
	}))
	require.NoError(t, err)

	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 2)

	byCategory := map[string]map[string]any{}
	for _, row := range envelope.Data {
		byCategory[row["category"].(string)] = row
	}
	assert.Equal(t, 500.0, byCategory["materials"]["total"])
	assert.Equal(t, 50.0, byCategory["materials"]["share_pct"])
	assert.Equal(t, 500.0, byCategory["fuel"]["total"])
}

func TestExportRejectsUnknownTypeAndFormat(t *testing.T) {
	db := testDB(t)
	app := fiber.New()
	app.Post("/reports/export", NewReportController(db).Export)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/reports/export", fiber.Map{
		"reportType": "everything",
		"format":     "csv",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = app.Test(jsonRequest(t, http.MethodPost, "/reports/export", fiber.Map{
		"reportType": ReportWorkersPayroll,
		"format":     "pdf",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
