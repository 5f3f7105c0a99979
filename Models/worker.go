package Models

import (
	"gorm.io/gorm"
)

const (
	WorkerStatusActive   = "active"
	WorkerStatusInactive = "inactive"
	WorkerStatusOnLeave  = "on_leave"
	WorkerStatusFired    = "fired"
)

type Worker struct {
	gorm.Model
	FullName  string  `json:"full_name" gorm:"not null;index"`
	Phone     string  `json:"phone"`
	DailyRate float64 `json:"daily_rate"`
	Status    string  `json:"status" gorm:"default:active"`
	Position  string  `json:"position"`
	Notes     string  `json:"notes"`

	Skills         []WorkerSkill   `json:"skills,omitempty" gorm:"foreignKey:WorkerID"`
	Certifications []Certification `json:"certifications,omitempty" gorm:"foreignKey:WorkerID"`
}

type Skill struct {
	gorm.Model
	Name     string `json:"name" gorm:"not null;uniqueIndex"`
	Category string `json:"category"`
}

// WorkerSkill links a worker to a skill with a 1-5 proficiency.
type WorkerSkill struct {
	gorm.Model
	WorkerID    uint  `json:"worker_id" gorm:"not null;index"`
	SkillID     uint  `json:"skill_id" gorm:"not null;index"`
	Proficiency int   `json:"proficiency"`
	Skill       Skill `json:"skill,omitempty" gorm:"foreignKey:SkillID"`
}

type Certification struct {
	gorm.Model
	WorkerID  uint   `json:"worker_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null"`
	Issuer    string `json:"issuer"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}
