package Controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Models"
)

// ClientController handles client-related API endpoints
type ClientController struct {
	DB *gorm.DB
}

// NewClientController creates a new ClientController
func NewClientController(db *gorm.DB) *ClientController {
	return &ClientController{DB: db}
}

// GetClients retrieves all clients with their projects
func (c *ClientController) GetClients(ctx *fiber.Ctx) error {
	var clients []Models.Client
	if err := c.DB.Preload("Projects").Order("name asc").Find(&clients).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve clients"})
	}
	return ctx.JSON(clients)
}

// GetClient retrieves a single client by ID
func (c *ClientController) GetClient(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	if err := c.DB.Preload("Projects").First(&client, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}
	return ctx.JSON(client)
}

// CreateClient creates a new client
func (c *ClientController) CreateClient(ctx *fiber.Ctx) error {
	var input Models.Client
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	client := Models.Client{
		Name:        input.Name,
		ContactName: input.ContactName,
		Phone:       input.Phone,
		Email:       input.Email,
		CompanyType: input.CompanyType,
		Status:      input.Status,
	}

	if err := c.DB.Create(&client).Error; err != nil {
		if strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A client with this name already exists",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create client"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(client)
}

// UpdateClient updates an existing client
func (c *ClientController) UpdateClient(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	if err := c.DB.First(&client, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	var input Models.Client
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	c.DB.Model(&client).Updates(Models.Client{
		Name:        input.Name,
		ContactName: input.ContactName,
		Phone:       input.Phone,
		Email:       input.Email,
		CompanyType: input.CompanyType,
		Status:      input.Status,
	})

	return ctx.JSON(client)
}

// DeleteClient soft deletes a client; its projects keep their client_id
func (c *ClientController) DeleteClient(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client Models.Client
	if err := c.DB.First(&client, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	c.DB.Delete(&client)
	return ctx.JSON(fiber.Map{"message": "Client deleted successfully"})
}
