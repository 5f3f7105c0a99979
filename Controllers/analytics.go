package Controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Assistant"
	"Mason/Constants"
	"Mason/Models"
)

// AnalyticsController serves the dashboard summary, the monthly cash
// series and per-project analytics
type AnalyticsController struct {
	DB *gorm.DB
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{DB: db}
}

// GetSummary returns the headline counts and money totals shown on the
// landing dashboard
func (c *AnalyticsController) GetSummary(ctx *fiber.Ctx) error {
	var activeWorkers, totalWorkers int64
	c.DB.Model(&Models.Worker{}).Where("status = ?", Models.WorkerStatusActive).Count(&activeWorkers)
	c.DB.Model(&Models.Worker{}).Count(&totalWorkers)

	var activeProjects, totalProjects int64
	c.DB.Model(&Models.Project{}).Where("status = ?", "active").Count(&activeProjects)
	c.DB.Model(&Models.Project{}).Count(&totalProjects)

	var totalBudget, totalActualCost float64
	c.DB.Model(&Models.Project{}).Select("COALESCE(SUM(budget), 0)").Scan(&totalBudget)
	c.DB.Model(&Models.Project{}).Select("COALESCE(SUM(actual_cost), 0)").Scan(&totalActualCost)

	var totalExpenses, totalPayments float64
	c.DB.Model(&Models.Expense{}).Select("COALESCE(SUM(amount), 0)").Scan(&totalExpenses)
	c.DB.Model(&Models.Payment{}).Select("COALESCE(SUM(amount), 0)").Scan(&totalPayments)

	today := time.Now().Format(Constants.DateLayout)
	var presentToday int64
	c.DB.Model(&Models.Attendance{}).
		Where("work_date = ? AND status = ?", today, Models.AttendancePresent).
		Count(&presentToday)

	return ctx.JSON(fiber.Map{
		"workers": fiber.Map{
			"total":         totalWorkers,
			"active":        activeWorkers,
			"present_today": presentToday,
		},
		"projects": fiber.Map{
			"total":  totalProjects,
			"active": activeProjects,
		},
		"finance": fiber.Map{
			"total_budget":      totalBudget,
			"total_actual_cost": totalActualCost,
			"total_expenses":    totalExpenses,
			"total_payments":    totalPayments,
		},
	})
}

type monthlyBucket struct {
	Month    string  `json:"month"`
	Expenses float64 `json:"expenses"`
	Payments float64 `json:"payments"`
	Total    float64 `json:"total"`
}

// GetMonthly returns a 12-month series of expense and payment totals,
// oldest month first
func (c *AnalyticsController) GetMonthly(ctx *fiber.Ctx) error {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	buckets := make([]monthlyBucket, 12)
	index := make(map[string]int, 12)
	for i := 0; i < 12; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		buckets[i] = monthlyBucket{Month: key}
		index[key] = i
	}

	from := start.Format(Constants.DateLayout)

	var expenses []Models.Expense
	c.DB.Where("spent_at >= ?", from).Find(&expenses)
	for _, e := range expenses {
		if len(e.SpentAt) >= 7 {
			if i, ok := index[e.SpentAt[:7]]; ok {
				buckets[i].Expenses += e.Amount
			}
		}
	}

	var payments []Models.Payment
	c.DB.Where("pay_date >= ?", from).Find(&payments)
	for _, p := range payments {
		if len(p.PayDate) >= 7 {
			if i, ok := index[p.PayDate[:7]]; ok {
				buckets[i].Payments += p.Amount
			}
		}
	}

	for i := range buckets {
		buckets[i].Total = buckets[i].Expenses + buckets[i].Payments
	}

	return ctx.JSON(buckets)
}

type projectAnalytics struct {
	ProjectID   uint               `json:"project_id"`
	ProjectName string             `json:"project_name"`
	Financial   financialSummary   `json:"financial"`
	Performance performanceSummary `json:"performance"`
	Timeline    timelineSummary    `json:"timeline"`
	RiskFlags   []string           `json:"risk_flags"`
	Insights    string             `json:"insights,omitempty"`
}

type financialSummary struct {
	Budget            float64 `json:"budget"`
	ActualCost        float64 `json:"actual_cost"`
	RecordedExpenses  float64 `json:"recorded_expenses"`
	LaborCost         float64 `json:"labor_cost"`
	BudgetUtilization float64 `json:"budget_utilization_pct"`
}

type performanceSummary struct {
	Progress      int     `json:"progress_pct"`
	ElapsedPct    float64 `json:"elapsed_pct"`
	ActiveWorkers int64   `json:"active_workers"`
	PresentDays   int64   `json:"present_days"`
}

type timelineSummary struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DaysElapsed   int    `json:"days_elapsed"`
	DaysRemaining int    `json:"days_remaining"`
	Overdue       bool   `json:"overdue"`
}

// GetProjectAnalytics aggregates one project's finances, labor and
// schedule into a single payload. With ?insights=true it additionally
// asks the primary provider for a short narrative; provider errors
// degrade to the numeric payload.
func (c *AnalyticsController) GetProjectAnalytics(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var project Models.Project
	if err := c.DB.First(&project, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	result := projectAnalytics{
		ProjectID:   project.ID,
		ProjectName: project.Name,
	}

	var recordedExpenses float64
	c.DB.Model(&Models.Expense{}).Where("project_id = ?", project.ID).
		Select("COALESCE(SUM(amount), 0)").Scan(&recordedExpenses)

	// Labor cost: present days of assigned workers priced at each
	// worker's daily rate.
	var laborCost float64
	type laborRow struct {
		DailyRate   float64
		PresentDays int64
	}
	var laborRows []laborRow
	c.DB.Raw(`
		SELECT w.daily_rate AS daily_rate, COUNT(a.id) AS present_days
		FROM worker_assignments wa
		JOIN workers w ON w.id = wa.worker_id
		LEFT JOIN attendances a ON a.worker_id = w.id
			AND a.status = ?
			AND a.work_date >= wa.start_date
			AND (wa.end_date IS NULL OR a.work_date <= wa.end_date)
			AND a.deleted_at IS NULL
		WHERE wa.project_id = ? AND wa.deleted_at IS NULL
		GROUP BY wa.id, w.daily_rate`, Models.AttendancePresent, project.ID).Scan(&laborRows)

	var presentDays int64
	for _, row := range laborRows {
		laborCost += row.DailyRate * float64(row.PresentDays)
		presentDays += row.PresentDays
	}

	utilization := 0.0
	if project.Budget > 0 {
		utilization = (project.ActualCost / project.Budget) * 100
	}
	result.Financial = financialSummary{
		Budget:            project.Budget,
		ActualCost:        project.ActualCost,
		RecordedExpenses:  recordedExpenses,
		LaborCost:         laborCost,
		BudgetUtilization: utilization,
	}

	var activeWorkers int64
	c.DB.Model(&Models.WorkerAssignment{}).
		Where("project_id = ? AND end_date IS NULL", project.ID).
		Count(&activeWorkers)

	result.Timeline = c.buildTimeline(project)
	result.Performance = performanceSummary{
		Progress:      project.Progress,
		ElapsedPct:    result.Timeline.elapsedPct(),
		ActiveWorkers: activeWorkers,
		PresentDays:   presentDays,
	}
	result.RiskFlags = riskFlags(result)

	if ctx.Query("insights") == "true" {
		if narrative, err := c.narrativeInsights(ctx.UserContext(), result); err == nil {
			result.Insights = narrative
		}
	}

	return ctx.JSON(result)
}

func (c *AnalyticsController) buildTimeline(project Models.Project) timelineSummary {
	tl := timelineSummary{
		StartDate: project.StartDate,
		EndDate:   project.EndDate,
	}

	now := time.Now()
	if start, err := time.Parse(Constants.DateLayout, project.StartDate); err == nil && now.After(start) {
		tl.DaysElapsed = int(now.Sub(start).Hours() / 24)
	}
	if end, err := time.Parse(Constants.DateLayout, project.EndDate); err == nil {
		if now.Before(end) {
			tl.DaysRemaining = int(end.Sub(now).Hours() / 24)
		} else if project.Status != "completed" {
			tl.Overdue = true
		}
	}
	return tl
}

func (tl timelineSummary) elapsedPct() float64 {
	total := tl.DaysElapsed + tl.DaysRemaining
	if total <= 0 {
		return 0
	}
	return float64(tl.DaysElapsed) / float64(total) * 100
}

func riskFlags(a projectAnalytics) []string {
	flags := []string{}
	if a.Financial.BudgetUtilization > 100 {
		flags = append(flags, "over_budget")
	} else if a.Financial.BudgetUtilization > 85 {
		flags = append(flags, "budget_nearly_exhausted")
	}
	if a.Timeline.Overdue {
		flags = append(flags, "past_end_date")
	}
	// Spending is ahead of delivered progress
	if a.Performance.ElapsedPct > 0 && float64(a.Performance.Progress) < a.Performance.ElapsedPct-20 {
		flags = append(flags, "behind_schedule")
	}
	if a.Performance.ActiveWorkers == 0 {
		flags = append(flags, "no_active_workers")
	}
	return flags
}

func (c *AnalyticsController) narrativeInsights(ctx context.Context, a projectAnalytics) (string, error) {
	provider, err := Assistant.PrimaryProvider(c.DB)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(a)
	if err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"Summarize the health of this construction project in one short paragraph for a manager. Mention budget, schedule and staffing risks if any.\n\n%s",
		string(data))
	return Assistant.NewClient(provider).Chat(reqCtx,
		"You are an analyst for a construction company. Be concise and factual.", prompt)
}
