package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Constants"
	"Mason/Models"
)

// PaymentController handles the append-only payment ledger
type PaymentController struct {
	DB *gorm.DB
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// GetPayments lists ledger entries filtered by worker and date range
func (c *PaymentController) GetPayments(ctx *fiber.Ctx) error {
	query := c.DB.Order("pay_date desc")
	if workerID, _ := strconv.Atoi(ctx.Query("worker_id")); workerID != 0 {
		query = query.Where("worker_id = ?", workerID)
	}
	if from := ctx.Query("from"); from != "" {
		query = query.Where("pay_date >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		query = query.Where("pay_date <= ?", to)
	}

	var payments []Models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}
	return ctx.JSON(payments)
}

type paymentInput struct {
	WorkerID    uint    `json:"worker_id" validate:"required"`
	PayDate     string  `json:"pay_date" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
}

// CreatePayment appends a ledger entry. Entries are never updated, only
// appended or deleted by an admin.
func (c *PaymentController) CreatePayment(ctx *fiber.Ctx) error {
	var input paymentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, err := time.Parse(Constants.DateLayout, input.PayDate); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pay_date format. Use YYYY-MM-DD"})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, input.WorkerID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}

	payment := Models.Payment{
		WorkerID:    input.WorkerID,
		PayDate:     input.PayDate,
		Amount:      input.Amount,
		Description: input.Description,
	}
	if err := c.DB.Create(&payment).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(payment)
}

// DeletePayment removes a mistaken ledger entry
func (c *PaymentController) DeletePayment(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}

	var payment Models.Payment
	if err := c.DB.First(&payment, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}

	c.DB.Delete(&payment)
	return ctx.JSON(fiber.Map{"message": "Payment deleted successfully"})
}

// GetWorkerBalance returns what is still owed to a worker: present days
// times daily rate, minus everything paid. Derived on demand, never stored.
func (c *PaymentController) GetWorkerBalance(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID"})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}

	var presentDays int64
	c.DB.Model(&Models.Attendance{}).
		Where("worker_id = ? AND status = ?", worker.ID, Models.AttendancePresent).
		Count(&presentDays)

	var totalPaid float64
	c.DB.Model(&Models.Payment{}).
		Where("worker_id = ?", worker.ID).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalPaid)

	earned := float64(presentDays) * worker.DailyRate

	return ctx.JSON(fiber.Map{
		"worker_id":    worker.ID,
		"name":         worker.FullName,
		"work_days":    presentDays,
		"total_earned": earned,
		"total_paid":   totalPaid,
		"balance":      earned - totalPaid,
	})
}
