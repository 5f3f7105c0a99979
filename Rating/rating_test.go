package Rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Mason/Models"
)

func day(workerID uint, date, status string) Models.Attendance {
	return Models.Attendance{WorkerID: workerID, WorkDate: date, Status: status}
}

func TestCalculateFullAttendance(t *testing.T) {
	worker := Models.Worker{DailyRate: 3000}
	worker.ID = 7

	var attendance []Models.Attendance
	for i := 0; i < 10; i++ {
		attendance = append(attendance, day(7, "2025-06-01", Models.AttendancePresent))
	}
	payments := []Models.Payment{{WorkerID: 7, Amount: 15000, PayDate: "2025-06-15"}}

	rating := Calculate(worker, attendance, payments)

	assert.Equal(t, uint(7), rating.WorkerID)
	assert.Equal(t, 10, rating.WorkDays)
	assert.Equal(t, 100.0, rating.AttendanceRate)
	assert.Equal(t, 30000.0, rating.TotalEarned)
	assert.Equal(t, 15000.0, rating.TotalPaid)
	// reliability 100, paymentRatio 50 -> performance 85, overall 94
	assert.Equal(t, 85.0, rating.Performance)
	assert.Equal(t, 94.0, rating.OverallRating)
	assert.Equal(t, BadgeExcellent, rating.Badge)
	assert.Equal(t, 15000.0, OutstandingBalance(worker, attendance, payments))
}

func TestCalculateMixedAttendance(t *testing.T) {
	worker := Models.Worker{DailyRate: 500}
	worker.ID = 3

	attendance := []Models.Attendance{
		day(3, "2025-06-01", Models.AttendancePresent),
		day(3, "2025-06-02", Models.AttendancePresent),
		day(3, "2025-06-03", Models.AttendanceAbsent),
		day(3, "2025-06-04", Models.AttendanceSick),
	}

	rating := Calculate(worker, attendance, nil)

	assert.Equal(t, 2, rating.WorkDays)
	assert.Equal(t, 50.0, rating.AttendanceRate)
	assert.Equal(t, 1000.0, rating.TotalEarned)
	assert.Equal(t, 0.0, rating.TotalPaid)
	// reliability 50, paymentRatio 0 -> performance 35, overall 44
	assert.Equal(t, 35.0, rating.Performance)
	assert.Equal(t, 44.0, rating.OverallRating)
	assert.Equal(t, BadgeNeedsImprovement, rating.Badge)
}

func TestCalculateNoAttendance(t *testing.T) {
	worker := Models.Worker{DailyRate: 800}

	rating := Calculate(worker, nil, nil)

	assert.Equal(t, 0, rating.WorkDays)
	assert.Equal(t, 0.0, rating.AttendanceRate)
	assert.Equal(t, 0.0, rating.TotalEarned)
	assert.Equal(t, 0.0, rating.OverallRating)
	assert.Equal(t, BadgeNeedsImprovement, rating.Badge)
}

func TestCalculateOverpaidCapsPaymentRatio(t *testing.T) {
	worker := Models.Worker{DailyRate: 100}
	attendance := []Models.Attendance{day(0, "2025-06-01", Models.AttendancePresent)}
	payments := []Models.Payment{{Amount: 5000, PayDate: "2025-06-02"}}

	rating := Calculate(worker, attendance, payments)

	// paymentRatio is capped at 100 even though paid far exceeds earned
	assert.Equal(t, 100.0, rating.Performance)
	assert.Equal(t, 100.0, rating.OverallRating)
	assert.Equal(t, -4900.0, OutstandingBalance(worker, attendance, payments))
}

func TestCalculateIsPure(t *testing.T) {
	worker := Models.Worker{DailyRate: 250}
	worker.ID = 1
	attendance := []Models.Attendance{
		day(1, "2025-06-01", Models.AttendancePresent),
		day(1, "2025-06-02", Models.AttendanceAbsent),
	}
	payments := []Models.Payment{{WorkerID: 1, Amount: 100, PayDate: "2025-06-03"}}

	first := Calculate(worker, attendance, payments)
	second := Calculate(worker, attendance, payments)

	assert.Equal(t, first, second)
}

func TestBadgeThresholds(t *testing.T) {
	tests := []struct {
		overall float64
		badge   string
	}{
		{95, BadgeExcellent},
		{90, BadgeExcellent},
		{89.99, BadgeGood},
		{75, BadgeGood},
		{74.99, BadgeAverage},
		{60, BadgeAverage},
		{59.99, BadgeNeedsImprovement},
		{0, BadgeNeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.badge, badgeFor(tt.overall), "overall=%v", tt.overall)
	}
}
