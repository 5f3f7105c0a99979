package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Mason/Constants"
	"Mason/Models"
)

// AttendanceController handles attendance-related API endpoints
type AttendanceController struct {
	DB *gorm.DB
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db}
}

// GetAttendance lists attendance rows filtered by worker and date range
func (c *AttendanceController) GetAttendance(ctx *fiber.Ctx) error {
	query := c.DB.Order("work_date desc")
	if workerID, _ := strconv.Atoi(ctx.Query("worker_id")); workerID != 0 {
		query = query.Where("worker_id = ?", workerID)
	}
	if from := ctx.Query("from"); from != "" {
		query = query.Where("work_date >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		query = query.Where("work_date <= ?", to)
	}

	var rows []Models.Attendance
	if err := query.Find(&rows).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve attendance"})
	}
	return ctx.JSON(rows)
}

type attendanceInput struct {
	WorkerID    uint    `json:"worker_id" validate:"required"`
	WorkDate    string  `json:"work_date" validate:"required"`
	Status      string  `json:"status"`
	HoursWorked float64 `json:"hours_worked"`
	Notes       string  `json:"notes"`
}

// RecordAttendance upserts the row for (worker, date). One row per worker
// per day; a second write for the same day replaces the first.
func (c *AttendanceController) RecordAttendance(ctx *fiber.Ctx) error {
	var input attendanceInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, err := time.Parse(Constants.DateLayout, input.WorkDate); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid work_date format. Use YYYY-MM-DD"})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, input.WorkerID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}

	status := input.Status
	if status == "" {
		status = Models.AttendancePresent
	}

	row := Models.Attendance{
		WorkerID:    input.WorkerID,
		WorkDate:    input.WorkDate,
		Status:      status,
		HoursWorked: input.HoursWorked,
		Notes:       input.Notes,
	}

	err := UpsertAttendance(c.DB, &row)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record attendance"})
	}
	return ctx.JSON(row)
}

// UpsertAttendance writes an attendance row, replacing any existing row for
// the same (worker_id, work_date). The unique index also covers rows that
// were soft-deleted, so the conflict update clears deleted_at to bring a
// previously deleted day back.
func UpsertAttendance(db *gorm.DB, row *Models.Attendance) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "worker_id"}, {Name: "work_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       row.Status,
			"hours_worked": row.HoursWorked,
			"notes":        row.Notes,
			"updated_at":   time.Now(),
			"deleted_at":   nil,
		}),
	}).Create(row).Error
}

// DeleteAttendance removes one attendance row
func (c *AttendanceController) DeleteAttendance(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attendance ID"})
	}

	var row Models.Attendance
	if err := c.DB.First(&row, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attendance record not found"})
	}

	c.DB.Delete(&row)
	return ctx.JSON(fiber.Map{"message": "Attendance record deleted successfully"})
}
