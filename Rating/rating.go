package Rating

import (
	"math"

	"Mason/Models"
)

const (
	BadgeExcellent        = "excellent"
	BadgeGood             = "good"
	BadgeAverage          = "average"
	BadgeNeedsImprovement = "needs_improvement"
)

// WorkerRating summarizes a worker's attendance and payment reconciliation
// as a 0-100 score. Nothing here is persisted; it is recomputed from the
// rows passed in.
type WorkerRating struct {
	WorkerID       uint    `json:"worker_id"`
	OverallRating  float64 `json:"overall_rating"`
	AttendanceRate float64 `json:"attendance_rate"`
	WorkDays       int     `json:"work_days"`
	TotalEarned    float64 `json:"total_earned"`
	TotalPaid      float64 `json:"total_paid"`
	Reliability    float64 `json:"reliability"`
	Performance    float64 `json:"performance"`
	Badge          string  `json:"badge"`
}

// Calculate derives the rating from a worker's attendance and payment rows.
//
// attendanceRate = presentDays / totalRows * 100 (0 when no rows)
// totalEarned    = presentDays * dailyRate
// paymentRatio   = min(totalPaid/totalEarned*100, 100), 0 when nothing earned
// performance    = reliability*0.7 + paymentRatio*0.3
// overall        = reliability*0.6 + performance*0.4
func Calculate(worker Models.Worker, attendance []Models.Attendance, payments []Models.Payment) WorkerRating {
	rating := WorkerRating{WorkerID: worker.ID}

	presentDays := 0
	for _, row := range attendance {
		if row.Status == Models.AttendancePresent {
			presentDays++
		}
	}
	rating.WorkDays = presentDays

	if len(attendance) > 0 {
		rating.AttendanceRate = float64(presentDays) / float64(len(attendance)) * 100
	}

	rating.TotalEarned = float64(presentDays) * worker.DailyRate
	for _, p := range payments {
		rating.TotalPaid += p.Amount
	}

	paymentRatio := 0.0
	if rating.TotalEarned > 0 {
		paymentRatio = math.Min(rating.TotalPaid/rating.TotalEarned*100, 100)
	}

	rating.Reliability = rating.AttendanceRate
	rating.Performance = rating.Reliability*0.7 + paymentRatio*0.3
	rating.OverallRating = round2(rating.Reliability*0.6 + rating.Performance*0.4)
	rating.Performance = round2(rating.Performance)
	rating.AttendanceRate = round2(rating.AttendanceRate)
	rating.Reliability = round2(rating.Reliability)
	rating.Badge = badgeFor(rating.OverallRating)

	return rating
}

// OutstandingBalance is what the company still owes the worker:
// presentDays * dailyRate minus everything already paid. Derived on demand,
// never stored.
func OutstandingBalance(worker Models.Worker, attendance []Models.Attendance, payments []Models.Payment) float64 {
	presentDays := 0
	for _, row := range attendance {
		if row.Status == Models.AttendancePresent {
			presentDays++
		}
	}
	earned := float64(presentDays) * worker.DailyRate
	paid := 0.0
	for _, p := range payments {
		paid += p.Amount
	}
	return earned - paid
}

func badgeFor(overall float64) string {
	switch {
	case overall >= 90:
		return BadgeExcellent
	case overall >= 75:
		return BadgeGood
	case overall >= 60:
		return BadgeAverage
	default:
		return BadgeNeedsImprovement
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
