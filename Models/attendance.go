package Models

import (
	"gorm.io/gorm"
)

const (
	AttendancePresent  = "present"
	AttendanceAbsent   = "absent"
	AttendanceSick     = "sick"
	AttendanceVacation = "vacation"
)

// Attendance holds one row per (worker, date), enforced by the composite
// unique index. Writes go through an upsert so the second write wins.
type Attendance struct {
	gorm.Model
	WorkerID    uint    `json:"worker_id" gorm:"not null;uniqueIndex:idx_worker_day"`
	WorkDate    string  `json:"work_date" gorm:"not null;uniqueIndex:idx_worker_day"`
	Status      string  `json:"status" gorm:"default:present"`
	HoursWorked float64 `json:"hours_worked"`
	Notes       string  `json:"notes"`
}

// Payment is an append-only ledger entry against a worker.
type Payment struct {
	gorm.Model
	WorkerID    uint    `json:"worker_id" gorm:"not null;index"`
	PayDate     string  `json:"pay_date" gorm:"not null"`
	Amount      float64 `json:"amount" gorm:"not null"`
	Description string  `json:"description"`
}
