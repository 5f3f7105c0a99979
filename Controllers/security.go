package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/middleware"
	"Mason/Models"
)

// SecurityController manages role assignments and exposes the audit
// trail for the admin security dashboard
type SecurityController struct {
	DB *gorm.DB
}

// NewSecurityController creates a new SecurityController
func NewSecurityController(db *gorm.DB) *SecurityController {
	return &SecurityController{DB: db}
}

// GetUsers lists users with their role assignments and resolved
// capabilities
func (c *SecurityController) GetUsers(ctx *fiber.Ctx) error {
	var users []Models.User
	if err := c.DB.Preload("Roles").Order("email asc").Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve users"})
	}

	now := time.Now()
	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, fiber.Map{
			"user":         u,
			"capabilities": middleware.CapabilitiesFor(u.Roles, now),
		})
	}
	return ctx.JSON(out)
}

type roleAssignmentInput struct {
	UserID    uint   `json:"user_id" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=admin foreman worker guest"`
	ExpiresAt string `json:"expires_at"`
}

// GrantRole creates a role assignment for a user
func (c *SecurityController) GrantRole(ctx *fiber.Ctx) error {
	var input roleAssignmentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user Models.User
	if err := c.DB.First(&user, input.UserID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	assignment := Models.RoleAssignment{
		UserID:   input.UserID,
		Role:     input.Role,
		IsActive: true,
	}
	if input.ExpiresAt != "" {
		expires, err := time.Parse(time.RFC3339, input.ExpiresAt)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expires_at must be RFC3339"})
		}
		assignment.ExpiresAt = &expires
	}

	if err := c.DB.Create(&assignment).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to grant role"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(assignment)
}

// RevokeRole deactivates a role assignment. The row is kept for the
// audit trail rather than deleted.
func (c *SecurityController) RevokeRole(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assignment ID"})
	}

	var assignment Models.RoleAssignment
	if err := c.DB.First(&assignment, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Role assignment not found"})
	}

	// The seeded admin must always keep at least one active admin row
	if assignment.Role == string(middleware.RoleAdmin) {
		var admins int64
		c.DB.Model(&Models.RoleAssignment{}).
			Where("role = ? AND is_active = ? AND id != ?", middleware.RoleAdmin, true, assignment.ID).
			Count(&admins)
		if admins == 0 {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot revoke the last active admin role"})
		}
	}

	if err := c.DB.Model(&assignment).Update("is_active", false).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to revoke role"})
	}
	return ctx.JSON(assignment)
}

// GetAuditLogs lists audit entries, newest first, optionally filtered
// by actor or action
func (c *SecurityController) GetAuditLogs(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.AuditLog{})

	if actor := ctx.Query("actor"); actor != "" {
		query = query.Where("actor = ?", actor)
	}
	if action := ctx.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	limit, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil || limit <= 0 || limit > 1000 {
		limit = 100
	}

	var logs []Models.AuditLog
	if err := query.Order("created_at desc").Limit(limit).Find(&logs).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve audit logs"})
	}
	return ctx.JSON(logs)
}
