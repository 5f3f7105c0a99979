package Controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Constants"
	"Mason/Models"
)

// AssignmentController handles worker-to-project assignments
type AssignmentController struct {
	DB *gorm.DB
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(db *gorm.DB) *AssignmentController {
	return &AssignmentController{DB: db}
}

type assignmentInput struct {
	WorkerID  uint   `json:"worker_id" validate:"required"`
	ProjectID uint   `json:"project_id" validate:"required"`
	ForemanID *uint  `json:"foreman_id"`
	Role      string `json:"role"`
	StartDate string `json:"start_date"`
}

// GetAssignments retrieves assignments, optionally filtered by worker,
// project or active status
func (c *AssignmentController) GetAssignments(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.WorkerAssignment{}).Preload("Worker").Preload("Project")

	if workerID := ctx.Query("worker_id"); workerID != "" {
		query = query.Where("worker_id = ?", workerID)
	}
	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if ctx.Query("active") == "true" {
		query = query.Where("end_date IS NULL")
	}

	var assignments []Models.WorkerAssignment
	if err := query.Order("start_date desc").Find(&assignments).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve assignments"})
	}
	return ctx.JSON(assignments)
}

// CreateAssignment assigns a worker to a project. A worker can hold
// only one active assignment per project at a time.
func (c *AssignmentController) CreateAssignment(ctx *fiber.Ctx) error {
	var input assignmentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, input.WorkerID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}
	if worker.Status == Models.WorkerStatusFired {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot assign a fired worker"})
	}

	var project Models.Project
	if err := c.DB.First(&project, input.ProjectID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	var existing int64
	c.DB.Model(&Models.WorkerAssignment{}).
		Where("worker_id = ? AND project_id = ? AND end_date IS NULL", input.WorkerID, input.ProjectID).
		Count(&existing)
	if existing > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Worker already has an active assignment on this project",
		})
	}

	startDate := input.StartDate
	if startDate == "" {
		startDate = time.Now().Format(Constants.DateLayout)
	} else if _, err := time.Parse(Constants.DateLayout, startDate); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD"})
	}

	assignment := Models.WorkerAssignment{
		WorkerID:  input.WorkerID,
		ProjectID: input.ProjectID,
		ForemanID: input.ForemanID,
		Role:      input.Role,
		StartDate: startDate,
	}
	if err := c.DB.Create(&assignment).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create assignment"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(assignment)
}

// EndAssignment closes an active assignment by setting its end date
func (c *AssignmentController) EndAssignment(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assignment ID"})
	}

	var assignment Models.WorkerAssignment
	if err := c.DB.First(&assignment, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignment not found"})
	}
	if assignment.EndDate != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Assignment is already ended"})
	}

	var body struct {
		EndDate string `json:"end_date"`
	}
	_ = ctx.BodyParser(&body)

	endDate := body.EndDate
	if endDate == "" {
		endDate = time.Now().Format(Constants.DateLayout)
	} else if _, err := time.Parse(Constants.DateLayout, endDate); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD"})
	}
	if endDate < assignment.StartDate {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date cannot precede start_date"})
	}

	if err := c.DB.Model(&assignment).Update("end_date", endDate).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to end assignment"})
	}
	return ctx.JSON(assignment)
}

// DeleteAssignment removes an assignment record entirely
func (c *AssignmentController) DeleteAssignment(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assignment ID"})
	}

	result := c.DB.Delete(&Models.WorkerAssignment{}, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete assignment"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignment not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Assignment deleted successfully"})
}
