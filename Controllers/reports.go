package Controllers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"Mason/Constants"
	"Mason/Models"
	"Mason/Rating"
)

// ReportController builds exportable reports in CSV, JSON and XLSX
type ReportController struct {
	DB *gorm.DB
}

// NewReportController creates a new ReportController
func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

const (
	ReportWorkersPayroll    = "workers_payroll"
	ReportProjectsFinancial = "projects_financial"
	ReportAttendanceSummary = "attendance_summary"
	ReportExpensesBreakdown = "expenses_breakdown"
)

type reportFilters struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	ProjectID *uint  `json:"projectId"`
}

type exportRequest struct {
	ReportType string        `json:"reportType" validate:"required"`
	Format     string        `json:"format" validate:"required,oneof=csv json xlsx"`
	Filters    reportFilters `json:"filters"`
}

// reportRow keeps column order stable across CSV and XLSX output
type reportRow struct {
	headers []string
	values  []any
}

func (r reportRow) asMap() fiber.Map {
	m := fiber.Map{}
	for i, h := range r.headers {
		m[h] = r.values[i]
	}
	return m
}

// Export runs the requested report and returns it in the requested
// format
func (c *ReportController) Export(ctx *fiber.Ctx) error {
	var req exportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	filters := req.Filters
	if filters.StartDate == "" {
		filters.StartDate = time.Now().AddDate(0, -1, 0).Format(Constants.DateLayout)
	}
	if filters.EndDate == "" {
		filters.EndDate = time.Now().Format(Constants.DateLayout)
	}

	var (
		headers []string
		rows    []reportRow
		err     error
	)
	switch req.ReportType {
	case ReportWorkersPayroll:
		headers, rows, err = c.workersPayroll(filters)
	case ReportProjectsFinancial:
		headers, rows, err = c.projectsFinancial(filters)
	case ReportAttendanceSummary:
		headers, rows, err = c.attendanceSummary(filters)
	case ReportExpensesBreakdown:
		headers, rows, err = c.expensesBreakdown(filters)
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown report type"})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report"})
	}

	filename := fmt.Sprintf("%s_%s", req.ReportType, time.Now().Format("20060102_150405"))

	switch req.Format {
	case "json":
		data := make([]fiber.Map, 0, len(rows))
		for _, row := range rows {
			data = append(data, row.asMap())
		}
		return ctx.JSON(fiber.Map{
			"reportType":   req.ReportType,
			"generatedAt":  time.Now().UTC().Format(time.RFC3339),
			"totalRecords": len(rows),
			"data":         data,
		})
	case "csv":
		body, err := renderCSV(headers, rows)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render CSV"})
		}
		ctx.Set(fiber.HeaderContentType, "text/csv")
		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename+".csv"))
		return ctx.Send(body)
	case "xlsx":
		body, err := renderXLSX(req.ReportType, headers, rows)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render XLSX"})
		}
		ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename+".xlsx"))
		return ctx.Send(body)
	}
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown format"})
}

func renderCSV(headers []string, rows []reportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := make([]string, len(row.values))
		for i, v := range row.values {
			record[i] = fmt.Sprintf("%v", v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderXLSX(sheet string, headers []string, rows []reportRow) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	file.DeleteSheet("Sheet1")
	file.SetActiveSheet(index)

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		file.SetCellValue(sheet, cell, h)
	}
	for rowIdx, row := range rows {
		for col, v := range row.values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			file.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *ReportController) workersPayroll(f reportFilters) ([]string, []reportRow, error) {
	headers := []string{
		"worker_id", "full_name", "position", "daily_rate",
		"present_days", "earned", "paid", "balance", "rating", "badge",
	}

	var workers []Models.Worker
	if err := c.DB.Where("status != ?", Models.WorkerStatusFired).
		Order("full_name asc").Find(&workers).Error; err != nil {
		return nil, nil, err
	}

	rows := make([]reportRow, 0, len(workers))
	for _, w := range workers {
		var attendance []Models.Attendance
		c.DB.Where("worker_id = ? AND work_date >= ? AND work_date <= ?",
			w.ID, f.StartDate, f.EndDate).Find(&attendance)
		var payments []Models.Payment
		c.DB.Where("worker_id = ? AND pay_date >= ? AND pay_date <= ?",
			w.ID, f.StartDate, f.EndDate).Find(&payments)

		rating := Rating.Calculate(w, attendance, payments)

		rows = append(rows, reportRow{headers: headers, values: []any{
			w.ID, w.FullName, w.Position, w.DailyRate,
			rating.WorkDays, rating.TotalEarned, rating.TotalPaid,
			rating.TotalEarned - rating.TotalPaid,
			rating.OverallRating, rating.Badge,
		}})
	}
	return headers, rows, nil
}

func (c *ReportController) projectsFinancial(f reportFilters) ([]string, []reportRow, error) {
	headers := []string{
		"project_id", "name", "status", "progress_pct", "budget",
		"actual_cost", "expenses_in_period", "budget_utilization_pct",
	}

	query := c.DB.Order("name asc")
	if f.ProjectID != nil {
		query = query.Where("id = ?", *f.ProjectID)
	}
	var projects []Models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, nil, err
	}

	rows := make([]reportRow, 0, len(projects))
	for _, p := range projects {
		var spent float64
		c.DB.Model(&Models.Expense{}).
			Where("project_id = ? AND spent_at >= ? AND spent_at <= ?", p.ID, f.StartDate, f.EndDate).
			Select("COALESCE(SUM(amount), 0)").Scan(&spent)

		utilization := 0.0
		if p.Budget > 0 {
			utilization = p.ActualCost / p.Budget * 100
		}

		rows = append(rows, reportRow{headers: headers, values: []any{
			p.ID, p.Name, p.Status, p.Progress, p.Budget,
			p.ActualCost, spent, utilization,
		}})
	}
	return headers, rows, nil
}

func (c *ReportController) attendanceSummary(f reportFilters) ([]string, []reportRow, error) {
	headers := []string{
		"worker_id", "full_name", "present", "absent", "sick",
		"vacation", "total_days", "attendance_rate_pct",
	}

	var workers []Models.Worker
	if err := c.DB.Order("full_name asc").Find(&workers).Error; err != nil {
		return nil, nil, err
	}

	rows := make([]reportRow, 0, len(workers))
	for _, w := range workers {
		var attendance []Models.Attendance
		c.DB.Where("worker_id = ? AND work_date >= ? AND work_date <= ?",
			w.ID, f.StartDate, f.EndDate).Find(&attendance)
		if len(attendance) == 0 {
			continue
		}

		counts := map[string]int{}
		for _, a := range attendance {
			counts[a.Status]++
		}
		total := len(attendance)
		rate := float64(counts[Models.AttendancePresent]) / float64(total) * 100

		rows = append(rows, reportRow{headers: headers, values: []any{
			w.ID, w.FullName, counts[Models.AttendancePresent],
			counts[Models.AttendanceAbsent], counts[Models.AttendanceSick],
			counts[Models.AttendanceVacation], total, rate,
		}})
	}
	return headers, rows, nil
}

func (c *ReportController) expensesBreakdown(f reportFilters) ([]string, []reportRow, error) {
	headers := []string{"category", "count", "total", "share_pct"}

	query := c.DB.Where("spent_at >= ? AND spent_at <= ?", f.StartDate, f.EndDate)
	if f.ProjectID != nil {
		query = query.Where("project_id = ?", *f.ProjectID)
	}
	var expenses []Models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, nil, err
	}

	type bucket struct {
		count int
		total float64
	}
	byCategory := map[string]*bucket{}
	order := []string{}
	var grand float64
	for _, e := range expenses {
		b, ok := byCategory[e.Category]
		if !ok {
			b = &bucket{}
			byCategory[e.Category] = b
			order = append(order, e.Category)
		}
		b.count++
		b.total += e.Amount
		grand += e.Amount
	}

	rows := make([]reportRow, 0, len(order))
	for _, category := range order {
		b := byCategory[category]
		share := 0.0
		if grand > 0 {
			share = b.total / grand * 100
		}
		rows = append(rows, reportRow{headers: headers, values: []any{
			category, b.count, b.total, share,
		}})
	}
	return headers, rows, nil
}
