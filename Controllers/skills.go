package Controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Constants"
	"Mason/Models"
)

// SkillController handles the skill catalog, worker skill assignments
// and worker certifications
type SkillController struct {
	DB *gorm.DB
}

// NewSkillController creates a new SkillController
func NewSkillController(db *gorm.DB) *SkillController {
	return &SkillController{DB: db}
}

// GetSkills retrieves the skill catalog
func (c *SkillController) GetSkills(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Skill{})
	if category := ctx.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var skills []Models.Skill
	if err := query.Order("name asc").Find(&skills).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve skills"})
	}
	return ctx.JSON(skills)
}

// CreateSkill adds a skill to the catalog
func (c *SkillController) CreateSkill(ctx *fiber.Ctx) error {
	var input Models.Skill
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	skill := Models.Skill{Name: input.Name, Category: input.Category}
	if err := c.DB.Create(&skill).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") ||
			strings.Contains(err.Error(), "unique constraint") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Skill already exists"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create skill"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(skill)
}

// DeleteSkill removes a skill and any worker assignments of it
func (c *SkillController) DeleteSkill(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid skill ID"})
	}

	var skill Models.Skill
	if err := c.DB.First(&skill, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Skill not found"})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("skill_id = ?", skill.ID).Delete(&Models.WorkerSkill{}).Error; err != nil {
			return err
		}
		return tx.Delete(&skill).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete skill"})
	}
	return ctx.JSON(fiber.Map{"message": "Skill deleted successfully"})
}

type workerSkillInput struct {
	SkillID     uint `json:"skill_id" validate:"required"`
	Proficiency int  `json:"proficiency" validate:"gte=1,lte=5"`
}

// AssignSkill attaches a skill to a worker, updating the proficiency if
// the worker already has it
func (c *SkillController) AssignSkill(ctx *fiber.Ctx) error {
	workerID, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID"})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, workerID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}

	var input workerSkillInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var skill Models.Skill
	if err := c.DB.First(&skill, input.SkillID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Skill not found"})
	}

	var link Models.WorkerSkill
	result := c.DB.Where("worker_id = ? AND skill_id = ?", worker.ID, skill.ID).First(&link)
	if result.Error == nil {
		c.DB.Model(&link).Update("proficiency", input.Proficiency)
		return ctx.JSON(link)
	}

	link = Models.WorkerSkill{
		WorkerID:    worker.ID,
		SkillID:     skill.ID,
		Proficiency: input.Proficiency,
	}
	if err := c.DB.Create(&link).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign skill"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(link)
}

// RemoveSkill detaches a skill from a worker
func (c *SkillController) RemoveSkill(ctx *fiber.Ctx) error {
	workerID, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID"})
	}
	skillID, err := ctx.ParamsInt("skillId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid skill ID"})
	}

	result := c.DB.Where("worker_id = ? AND skill_id = ?", workerID, skillID).
		Delete(&Models.WorkerSkill{})
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove skill"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker does not have this skill"})
	}
	return ctx.JSON(fiber.Map{"message": "Skill removed successfully"})
}

type certificationInput struct {
	Name      string `json:"name" validate:"required"`
	Issuer    string `json:"issuer"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}

// AddCertification records a certification for a worker
func (c *SkillController) AddCertification(ctx *fiber.Ctx) error {
	workerID, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker ID"})
	}

	var worker Models.Worker
	if err := c.DB.First(&worker, workerID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	}

	var input certificationInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	for _, d := range []string{input.IssuedAt, input.ExpiresAt} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(Constants.DateLayout, d); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Dates must be YYYY-MM-DD"})
		}
	}

	cert := Models.Certification{
		WorkerID:  worker.ID,
		Name:      input.Name,
		Issuer:    input.Issuer,
		IssuedAt:  input.IssuedAt,
		ExpiresAt: input.ExpiresAt,
	}
	if err := c.DB.Create(&cert).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add certification"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(cert)
}

// DeleteCertification removes a certification
func (c *SkillController) DeleteCertification(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("certId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certification ID"})
	}

	result := c.DB.Delete(&Models.Certification{}, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete certification"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certification not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Certification deleted successfully"})
}

// GetExpiringCertifications lists certifications expiring within the
// given number of days (default 30)
func (c *SkillController) GetExpiringCertifications(ctx *fiber.Ctx) error {
	days, err := strconv.Atoi(ctx.Query("days"))
	if err != nil || days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, days).Format(Constants.DateLayout)
	today := time.Now().Format(Constants.DateLayout)

	var certs []Models.Certification
	if err := c.DB.Where("expires_at != '' AND expires_at >= ? AND expires_at <= ?", today, cutoff).
		Order("expires_at asc").Find(&certs).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve certifications"})
	}
	return ctx.JSON(certs)
}
