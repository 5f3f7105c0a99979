package Controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Models"
	"Mason/Rating"
)

// WorkerController handles worker-related API endpoints
type WorkerController struct {
	DB *gorm.DB
}

// NewWorkerController creates a new WorkerController
func NewWorkerController(db *gorm.DB) *WorkerController {
	return &WorkerController{DB: db}
}

// GetWorkers retrieves all workers, optionally filtered by status
func (c *WorkerController) GetWorkers(ctx *fiber.Ctx) error {
	query := c.DB.Preload("Skills.Skill").Preload("Certifications")
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var workers []Models.Worker
	if err := query.Order("full_name asc").Find(&workers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve workers"})
	}
	return ctx.JSON(workers)
}

// GetWorker retrieves a single worker by ID
func (c *WorkerController) GetWorker(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID"})
	}

	var worker Models.Worker
	if err := c.DB.Preload("Skills.Skill").Preload("Certifications").First(&worker, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}
	return ctx.JSON(worker)
}

type workerInput struct {
	FullName  string  `json:"full_name" validate:"required"`
	Phone     string  `json:"phone"`
	DailyRate float64 `json:"daily_rate" validate:"gte=0"`
	Status    string  `json:"status"`
	Position  string  `json:"position"`
	Notes     string  `json:"notes"`
}

// CreateWorker creates a new worker
func (c *WorkerController) CreateWorker(ctx *fiber.Ctx) error {
	var input workerInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	worker := Models.Worker{
		FullName:  input.FullName,
		Phone:     input.Phone,
		DailyRate: input.DailyRate,
		Status:    input.Status,
		Position:  input.Position,
		Notes:     input.Notes,
	}
	if worker.Status == "" {
		worker.Status = Models.WorkerStatusActive
	}

	if err := c.DB.Create(&worker).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create worker"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(worker)
}

// UpdateWorker updates an existing worker
func (c *WorkerController) UpdateWorker(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID"})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}

	var input workerInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	c.DB.Model(&worker).Updates(map[string]interface{}{
		"full_name":  input.FullName,
		"phone":      input.Phone,
		"daily_rate": input.DailyRate,
		"status":     input.Status,
		"position":   input.Position,
		"notes":      input.Notes,
	})

	return ctx.JSON(worker)
}

// DeleteWorker removes a worker and all dependent rows. Deletion is refused
// while the worker holds an active assignment, and the cascade runs inside
// one transaction so a failure leaves everything in place.
func (c *WorkerController) DeleteWorker(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID"})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}

	var activeAssignments int64
	c.DB.Model(&Models.WorkerAssignment{}).
		Where("worker_id = ? AND end_date IS NULL", worker.ID).
		Count(&activeAssignments)
	if activeAssignments > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Cannot delete worker with an active project assignment; end the assignment first",
		})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&Models.Attendance{},
			&Models.Payment{},
			&Models.WorkerSkill{},
			&Models.Certification{},
			&Models.WorkerAssignment{},
		} {
			if err := tx.Where("worker_id = ?", worker.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&worker).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete worker"})
	}

	return ctx.JSON(fiber.Map{"message": "Worker deleted successfully"})
}

// GetWorkerRating computes the derived rating for one worker from its
// current attendance and payment rows.
func (c *WorkerController) GetWorkerRating(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID"})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}

	attendance, payments, err := c.loadWorkerHistory(worker.ID, ctx.Query("from"), ctx.Query("to"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load worker history"})
	}

	rating := Rating.Calculate(worker, attendance, payments)
	return ctx.JSON(fiber.Map{
		"rating":  rating,
		"balance": Rating.OutstandingBalance(worker, attendance, payments),
	})
}

// GetWorkerRatings computes ratings for the whole roster in one response
// for the workers screen.
func (c *WorkerController) GetWorkerRatings(ctx *fiber.Ctx) error {
	var workers []Models.Worker
	if err := c.DB.Where("status <> ?", Models.WorkerStatusFired).Find(&workers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve workers"})
	}

	ratings := make([]Rating.WorkerRating, 0, len(workers))
	for _, worker := range workers {
		attendance, payments, err := c.loadWorkerHistory(worker.ID, ctx.Query("from"), ctx.Query("to"))
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load worker history"})
		}
		ratings = append(ratings, Rating.Calculate(worker, attendance, payments))
	}
	return ctx.JSON(ratings)
}

func (c *WorkerController) loadWorkerHistory(workerID uint, from, to string) ([]Models.Attendance, []Models.Payment, error) {
	attendanceQuery := c.DB.Where("worker_id = ?", workerID)
	paymentQuery := c.DB.Where("worker_id = ?", workerID)
	if from != "" {
		attendanceQuery = attendanceQuery.Where("work_date >= ?", from)
		paymentQuery = paymentQuery.Where("pay_date >= ?", from)
	}
	if to != "" {
		attendanceQuery = attendanceQuery.Where("work_date <= ?", to)
		paymentQuery = paymentQuery.Where("pay_date <= ?", to)
	}

	var attendance []Models.Attendance
	if err := attendanceQuery.Find(&attendance).Error; err != nil {
		return nil, nil, err
	}
	var payments []Models.Payment
	if err := paymentQuery.Find(&payments).Error; err != nil {
		return nil, nil, err
	}
	return attendance, payments, nil
}

// FindWorkerByName does a case and whitespace insensitive containment
// lookup, used by the Telegram bot's free-text actions. Exact matches win
// over containment matches.
func FindWorkerByName(db *gorm.DB, name string) (Models.Worker, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Models.Worker{}, false
	}

	var workers []Models.Worker
	if err := db.Where("status <> ?", Models.WorkerStatusFired).Find(&workers).Error; err != nil {
		return Models.Worker{}, false
	}

	var partial *Models.Worker
	for i := range workers {
		candidate := strings.ToLower(strings.TrimSpace(workers[i].FullName))
		if candidate == needle {
			return workers[i], true
		}
		if partial == nil && (strings.Contains(candidate, needle) || strings.Contains(needle, candidate)) {
			partial = &workers[i]
		}
	}
	if partial != nil {
		return *partial, true
	}
	return Models.Worker{}, false
}
