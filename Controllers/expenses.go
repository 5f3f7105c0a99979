package Controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Constants"
	"Mason/Models"
)

// ExpenseController handles expense-related API endpoints
type ExpenseController struct {
	DB *gorm.DB
}

// NewExpenseController creates a new ExpenseController
func NewExpenseController(db *gorm.DB) *ExpenseController {
	return &ExpenseController{DB: db}
}

type expenseInput struct {
	ProjectID   *uint   `json:"project_id"`
	WorkerID    *uint   `json:"worker_id"`
	Category    string  `json:"category" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	SpentAt     string  `json:"spent_at" validate:"required"`
	Description string  `json:"description"`
}

// GetExpenses retrieves expenses, optionally filtered by project,
// worker, category or date range
func (c *ExpenseController) GetExpenses(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Expense{})

	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if workerID := ctx.Query("worker_id"); workerID != "" {
		query = query.Where("worker_id = ?", workerID)
	}
	if category := ctx.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if from := ctx.Query("from"); from != "" {
		query = query.Where("spent_at >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		query = query.Where("spent_at <= ?", to)
	}

	var expenses []Models.Expense
	if err := query.Order("spent_at desc").Find(&expenses).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve expenses"})
	}

	var total float64
	for _, e := range expenses {
		total += e.Amount
	}

	return ctx.JSON(fiber.Map{
		"expenses": expenses,
		"total":    total,
		"count":    len(expenses),
	})
}

// CreateExpense records a new expense against a project or a worker
func (c *ExpenseController) CreateExpense(ctx *fiber.Ctx) error {
	var input expenseInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, err := time.Parse(Constants.DateLayout, input.SpentAt); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "spent_at must be YYYY-MM-DD"})
	}
	if input.ProjectID == nil && input.WorkerID == nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Expense must reference a project or a worker"})
	}

	if input.ProjectID != nil {
		var project Models.Project
		if err := c.DB.First(&project, *input.ProjectID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
		}
	}
	if input.WorkerID != nil {
		var worker Models.Worker
		if err := c.DB.First(&worker, *input.WorkerID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
		}
	}

	expense := Models.Expense{
		ProjectID:   input.ProjectID,
		WorkerID:    input.WorkerID,
		Category:    input.Category,
		Amount:      input.Amount,
		SpentAt:     input.SpentAt,
		Description: input.Description,
	}

	if err := c.DB.Create(&expense).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create expense"})
	}

	// Keep the project's actual cost in sync with its expenses
	if expense.ProjectID != nil {
		c.DB.Model(&Models.Project{}).Where("id = ?", *expense.ProjectID).
			UpdateColumn("actual_cost", gorm.Expr("actual_cost + ?", expense.Amount))
	}

	return ctx.Status(fiber.StatusCreated).JSON(expense)
}

// DeleteExpense removes an expense and rolls its amount back out of the
// project's actual cost
func (c *ExpenseController) DeleteExpense(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expense ID"})
	}

	var expense Models.Expense
	if err := c.DB.First(&expense, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expense not found"})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&expense).Error; err != nil {
			return err
		}
		if expense.ProjectID != nil {
			if err := tx.Model(&Models.Project{}).Where("id = ?", *expense.ProjectID).
				UpdateColumn("actual_cost", gorm.Expr("actual_cost - ?", expense.Amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete expense"})
	}

	return ctx.JSON(fiber.Map{"message": "Expense deleted successfully"})
}
