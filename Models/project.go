package Models

import (
	"gorm.io/gorm"
)

type Client struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null;uniqueIndex"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	CompanyType string `json:"company_type"`
	Status      string `json:"status" gorm:"default:active"`

	Projects []Project `json:"projects,omitempty" gorm:"foreignKey:ClientID"`
}

type Project struct {
	gorm.Model
	Name        string  `json:"name" gorm:"not null"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	ActualCost  float64 `json:"actual_cost"`
	Progress    int     `json:"progress"`
	Priority    string  `json:"priority" gorm:"default:medium"`
	Status      string  `json:"status" gorm:"default:planned"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	ClientID    *uint   `json:"client_id" gorm:"index"`
}

// WorkerAssignment links a worker to a project, optionally under a foreman.
// A null end_date means the assignment is active.
type WorkerAssignment struct {
	gorm.Model
	WorkerID  uint    `json:"worker_id" gorm:"not null;index"`
	ProjectID uint    `json:"project_id" gorm:"not null;index"`
	ForemanID *uint   `json:"foreman_id"`
	Role      string  `json:"role"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`

	Worker  Worker  `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}
