package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Models"
)

// ProjectController handles project-related API endpoints
type ProjectController struct {
	DB *gorm.DB
}

// NewProjectController creates a new ProjectController
func NewProjectController(db *gorm.DB) *ProjectController {
	return &ProjectController{DB: db}
}

// GetProjects retrieves all projects, optionally filtered by status or client
func (c *ProjectController) GetProjects(ctx *fiber.Ctx) error {
	query := c.DB.Order("created_at desc")
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID, _ := strconv.Atoi(ctx.Query("client_id")); clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}

	var projects []Models.Project
	if err := query.Find(&projects).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve projects"})
	}
	return ctx.JSON(projects)
}

// GetProject retrieves a single project by ID
func (c *ProjectController) GetProject(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var project Models.Project
	if err := c.DB.First(&project, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	return ctx.JSON(project)
}

type projectInput struct {
	Name        string  `json:"name" validate:"required"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget" validate:"gte=0"`
	ActualCost  float64 `json:"actual_cost" validate:"gte=0"`
	Progress    int     `json:"progress" validate:"gte=0,lte=100"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	ClientID    *uint   `json:"client_id"`
}

// CreateProject creates a new project
func (c *ProjectController) CreateProject(ctx *fiber.Ctx) error {
	var input projectInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if input.ClientID != nil {
		var client Models.Client
		if err := c.DB.First(&client, *input.ClientID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		}
	}

	project := Models.Project{
		Name:        input.Name,
		Address:     input.Address,
		Description: input.Description,
		Budget:      input.Budget,
		ActualCost:  input.ActualCost,
		Progress:    input.Progress,
		Priority:    input.Priority,
		Status:      input.Status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		ClientID:    input.ClientID,
	}
	if err := c.DB.Create(&project).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create project"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject updates an existing project
func (c *ProjectController) UpdateProject(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var project Models.Project
	if err := c.DB.First(&project, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	var input projectInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	c.DB.Model(&project).Updates(map[string]interface{}{
		"name":        input.Name,
		"address":     input.Address,
		"description": input.Description,
		"budget":      input.Budget,
		"actual_cost": input.ActualCost,
		"progress":    input.Progress,
		"priority":    input.Priority,
		"status":      input.Status,
		"start_date":  input.StartDate,
		"end_date":    input.EndDate,
		"client_id":   input.ClientID,
	})

	return ctx.JSON(project)
}

// DeleteProject soft deletes a project
func (c *ProjectController) DeleteProject(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var project Models.Project
	if err := c.DB.First(&project, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	var activeAssignments int64
	c.DB.Model(&Models.WorkerAssignment{}).
		Where("project_id = ? AND end_date IS NULL", project.ID).
		Count(&activeAssignments)
	if activeAssignments > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Cannot delete project with active worker assignments",
		})
	}

	c.DB.Delete(&project)
	return ctx.JSON(fiber.Map{"message": "Project deleted successfully"})
}
