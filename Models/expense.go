package Models

import (
	"gorm.io/gorm"
)

// Expense is scoped to a project or a worker (either id may be null,
// not both).
type Expense struct {
	gorm.Model
	ProjectID   *uint   `json:"project_id" gorm:"index"`
	WorkerID    *uint   `json:"worker_id" gorm:"index"`
	Category    string  `json:"category" gorm:"not null"`
	Amount      float64 `json:"amount" gorm:"not null"`
	SpentAt     string  `json:"spent_at" gorm:"not null"`
	Description string  `json:"description"`
}
