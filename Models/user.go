package Models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password []byte `json:"-"`
	Phone    string `json:"phone"`

	Roles []RoleAssignment `json:"roles,omitempty" gorm:"foreignKey:UserID"`
}

// RoleAssignment drives all authorization. A user may hold several rows;
// only active, unexpired rows count.
type RoleAssignment struct {
	gorm.Model
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Role      string     `json:"role" gorm:"not null"`
	IsActive  bool       `json:"is_active" gorm:"default:true"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Qualifies reports whether this row currently grants its role.
func (r RoleAssignment) Qualifies(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		return false
	}
	return true
}
