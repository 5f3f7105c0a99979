package Assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"Mason/Models"
	"Mason/Notifications"
	"Mason/middleware"
)

// TruncateLimit is the response length above which the dashboard folds the
// reply behind an expand toggle.
const TruncateLimit = 300

// ChatController handles assistant-related API endpoints
type ChatController struct {
	DB *gorm.DB
}

// NewChatController creates a new ChatController
func NewChatController(db *gorm.DB) *ChatController {
	return &ChatController{DB: db}
}

type chatRequest struct {
	Prompt       string                 `json:"prompt"`
	SystemPrompt string                 `json:"systemPrompt"`
	Context      map[string]interface{} `json:"context"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Truncated bool   `json:"truncated"`
	Filtered  bool   `json:"filtered"`
	Provider  string `json:"provider,omitempty"`
}

// Chat relays a prompt to the primary provider after applying the caller's
// role policy. Policy rejections never reach the upstream API; they come
// back with filtered=true so the UI can distinguish them from provider
// failures.
func (ac *ChatController) Chat(ctx *fiber.Ctx) error {
	var req chatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}
	if req.Prompt == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prompt is required"})
	}

	role := middleware.CurrentRole(ctx)
	prompt, ok := FilterPrompt(role, req.Prompt)
	if !ok {
		return ctx.JSON(chatResponse{
			Response: "This request is not available for your role.",
			Filtered: true,
		})
	}

	provider, err := PrimaryProvider(ac.DB)
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "No active AI provider configured"})
	}

	callCtx, cancel := context.WithTimeout(ctx.UserContext(), 60*time.Second)
	defer cancel()

	systemPrompt := req.SystemPrompt
	if len(req.Context) > 0 {
		contextJSON, _ := json.Marshal(req.Context)
		systemPrompt = systemPrompt + "\n\nContext: " + string(contextJSON)
	}

	reply, err := NewClient(provider).Chat(callCtx, systemPrompt, prompt)
	if err != nil {
		log.Println("Chat relay error:", err)
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "AI provider request failed"})
	}

	return ctx.JSON(chatResponse{
		Response:  reply,
		Truncated: utf8.RuneCountInString(reply) > TruncateLimit,
		Provider:  provider.Name,
	})
}

// PrimaryProvider returns the active provider with the best priority.
func PrimaryProvider(db *gorm.DB) (Models.AIProvider, error) {
	var provider Models.AIProvider
	err := db.Where("is_active = ?", true).Order("priority asc").First(&provider).Error
	return provider, err
}

type testProviderRequest struct {
	ProviderID   uint   `json:"provider_id"`
	ProviderType string `json:"provider_type"`
	APIEndpoint  string `json:"api_endpoint"`
	ModelName    string `json:"model_name"`
}

// TestProvider runs a connectivity check against one provider, records the
// outcome on the provider row plus an audit entry, and alerts admins on
// failure.
func (ac *ChatController) TestProvider(ctx *fiber.Ctx) error {
	var req testProviderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	var provider Models.AIProvider
	if req.ProviderID != 0 {
		if err := ac.DB.First(&provider, req.ProviderID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider not found"})
		}
	} else {
		// Ad-hoc test of an unsaved configuration
		provider = Models.AIProvider{
			Type:      req.ProviderType,
			Endpoint:  req.APIEndpoint,
			ModelName: req.ModelName,
		}
	}
	if req.APIEndpoint != "" {
		provider.Endpoint = req.APIEndpoint
	}
	if req.ModelName != "" {
		provider.ModelName = req.ModelName
	}

	callCtx, cancel := context.WithTimeout(ctx.UserContext(), 30*time.Second)
	defer cancel()

	latency, preview, err := NewClient(provider).HealthCheck(callCtx)
	actor := ""
	if user, ok := middleware.CurrentUser(ctx); ok {
		actor = user.Email
	}

	if provider.ID != 0 {
		RecordCheck(ac.DB, &provider, latency, err)
	}
	writeAudit(ac.DB, actor, "provider_test", "ai_provider", provider.ID, fiber.Map{
		"provider":   provider.Name,
		"type":       provider.Type,
		"latency_ms": latency.Milliseconds(),
		"success":    err == nil,
	})

	if err != nil {
		Notifications.AlertAdmins(ac.DB,
			"AI provider check failed",
			fmt.Sprintf("Provider %s (%s) failed: %v", provider.Name, provider.Type, err))
		return ctx.JSON(fiber.Map{
			"success":          false,
			"error":            err.Error(),
			"response_time_ms": latency.Milliseconds(),
		})
	}

	return ctx.JSON(fiber.Map{
		"success":          true,
		"message":          "Provider responded",
		"response_time_ms": latency.Milliseconds(),
		"response_preview": preview,
	})
}

// RecordCheck persists a health-check outcome on the provider row.
func RecordCheck(db *gorm.DB, provider *Models.AIProvider, latency time.Duration, checkErr error) {
	now := time.Now()
	provider.LastLatencyMS = latency.Milliseconds()
	provider.LastCheckedAt = &now
	if checkErr != nil {
		provider.LastStatus = Models.ProviderStatusDown
		provider.LastError = checkErr.Error()
	} else {
		provider.LastStatus = Models.ProviderStatusHealthy
		provider.LastError = ""
	}
	if err := db.Save(provider).Error; err != nil {
		log.Println("Failed to record provider check:", err)
	}
}

func writeAudit(db *gorm.DB, actor, action, entity string, entityID uint, detail fiber.Map) {
	detailJSON, _ := json.Marshal(detail)
	entry := Models.AuditLog{
		RequestID: uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Detail:    detailJSON,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Println("Failed to write audit log:", err)
	}
}

// GetProviders lists all provider configurations
func (ac *ChatController) GetProviders(ctx *fiber.Ctx) error {
	var providers []Models.AIProvider
	if err := ac.DB.Order("priority asc").Find(&providers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve providers"})
	}
	return ctx.JSON(providers)
}

// CreateProvider creates a new provider configuration
func (ac *ChatController) CreateProvider(ctx *fiber.Ctx) error {
	var input Models.AIProvider
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Name == "" || input.Type == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name and type are required"})
	}
	input.LastStatus = Models.ProviderStatusUnknown

	if err := ac.DB.Create(&input).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create provider"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(input)
}

// UpdateProvider updates an existing provider configuration
func (ac *ChatController) UpdateProvider(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider ID"})
	}

	var provider Models.AIProvider
	if err := ac.DB.First(&provider, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider not found"})
	}

	var input Models.AIProvider
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ac.DB.Model(&provider).Updates(map[string]interface{}{
		"name":        input.Name,
		"type":        input.Type,
		"endpoint":    input.Endpoint,
		"model_name":  input.ModelName,
		"priority":    input.Priority,
		"is_active":   input.IsActive,
		"max_tokens":  input.MaxTokens,
		"temperature": input.Temperature,
	})

	return ctx.JSON(provider)
}

// DeleteProvider removes a provider configuration
func (ac *ChatController) DeleteProvider(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider ID"})
	}

	var provider Models.AIProvider
	if err := ac.DB.First(&provider, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider not found"})
	}

	ac.DB.Delete(&provider)
	return ctx.JSON(fiber.Map{"message": "Provider deleted successfully"})
}
