package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProviderStatusUnknown = "unknown"
	ProviderStatusHealthy = "healthy"
	ProviderStatusDown    = "down"
)

// AIProvider is configuration for one external LLM endpoint used by the
// chat relay. API keys are not stored here; they come from the environment
// as <TYPE>_API_KEY.
type AIProvider struct {
	gorm.Model
	Name        string         `json:"name" gorm:"not null;uniqueIndex"`
	Type        string         `json:"type" gorm:"not null"`
	Endpoint    string         `json:"endpoint"`
	ModelName   string         `json:"model_name"`
	Priority    int            `json:"priority" gorm:"default:100"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	MaxTokens   int            `json:"max_tokens" gorm:"default:1024"`
	Temperature float64        `json:"temperature" gorm:"default:0.7"`
	Params      datatypes.JSON `json:"params"`

	LastStatus    string     `json:"last_status" gorm:"default:unknown"`
	LastLatencyMS int64      `json:"last_latency_ms"`
	LastError     string     `json:"last_error"`
	LastCheckedAt *time.Time `json:"last_checked_at"`
}

// AuditLog records privileged or external-facing actions (provider tests,
// report exports, role changes) for the security dashboard.
type AuditLog struct {
	gorm.Model
	RequestID string         `json:"request_id" gorm:"size:36;index"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action" gorm:"not null;index"`
	Entity    string         `json:"entity"`
	EntityID  uint           `json:"entity_id"`
	Detail    datatypes.JSON `json:"detail"`
}
