package Controllers

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"Mason/Constants"
	"Mason/middleware"
)

// LogController serves the request-log views on the admin security
// dashboard. It reads the JSON-lines file written by the logging
// middleware; nothing here touches the database.
type LogController struct {
	LogFile string
}

// NewLogController creates a LogController reading the given file
func NewLogController(logFile string) *LogController {
	if logFile == "" {
		logFile = "logs/requests.log"
	}
	return &LogController{LogFile: logFile}
}

type pathStats struct {
	Path        string               `json:"path"`
	Method      string               `json:"method"`
	Count       int                  `json:"count"`
	AvgLatency  float64              `json:"avg_latency_ms"`
	MaxLatency  float64              `json:"max_latency_ms"`
	ErrorCount  int                  `json:"error_count"`
	SuccessRate float64              `json:"success_rate"`
	Entries     []middleware.LogData `json:"entries,omitempty"`
}

// parseDateRange reads date_from/date_to query params (YYYY-MM-DD),
// defaulting to today
func parseDateRange(ctx *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24*time.Hour - time.Nanosecond)

	if s := ctx.Query("date_from"); s != "" {
		parsed, err := time.Parse(Constants.DateLayout, s)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if s := ctx.Query("date_to"); s != "" {
		parsed, err := time.Parse(Constants.DateLayout, s)
		if err != nil {
			return from, to, err
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

func (c *LogController) readEntries(from, to time.Time) ([]middleware.LogData, error) {
	file, err := os.Open(c.LogFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []middleware.LogData
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry middleware.LogData
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Timestamp.Before(from) || entry.Timestamp.After(to) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// GetLogs returns request logs grouped per method+path with latency
// and success statistics
func (c *LogController) GetLogs(ctx *fiber.Ctx) error {
	from, to, err := parseDateRange(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Dates must be YYYY-MM-DD"})
	}

	entries, err := c.readEntries(from, to)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read logs"})
	}

	if pathFilter := ctx.Query("path"); pathFilter != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Path), strings.ToLower(pathFilter)) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	includeEntries := ctx.Query("include_entries") == "true"
	byKey := map[string]*pathStats{}
	for _, e := range entries {
		key := e.Method + " " + e.Path
		group, ok := byKey[key]
		if !ok {
			group = &pathStats{Path: e.Path, Method: e.Method}
			byKey[key] = group
		}
		latencyMs := float64(e.Latency.Microseconds()) / 1000.0
		group.AvgLatency = (group.AvgLatency*float64(group.Count) + latencyMs) / float64(group.Count+1)
		if latencyMs > group.MaxLatency {
			group.MaxLatency = latencyMs
		}
		group.Count++
		if e.Status >= 400 {
			group.ErrorCount++
		}
		if includeEntries {
			group.Entries = append(group.Entries, e)
		}
	}

	groups := make([]pathStats, 0, len(byKey))
	for _, g := range byKey {
		g.SuccessRate = float64(g.Count-g.ErrorCount) / float64(g.Count) * 100
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })

	return ctx.JSON(fiber.Map{
		"groups":       groups,
		"total_logs":   len(entries),
		"total_groups": len(groups),
		"date_from":    from,
		"date_to":      to,
	})
}

// GetLogStats returns aggregate traffic statistics for the dashboard
// header cards
func (c *LogController) GetLogStats(ctx *fiber.Ctx) error {
	from, to, err := parseDateRange(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Dates must be YYYY-MM-DD"})
	}

	entries, err := c.readEntries(from, to)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read logs"})
	}

	var success, errors int
	var totalLatency, maxLatency time.Duration
	methodCounts := map[string]int{}
	statusCounts := map[int]int{}
	for _, e := range entries {
		if e.Status >= 200 && e.Status < 400 {
			success++
		} else if e.Status >= 400 {
			errors++
		}
		totalLatency += e.Latency
		if e.Latency > maxLatency {
			maxLatency = e.Latency
		}
		methodCounts[e.Method]++
		statusCounts[e.Status]++
	}

	avgMs := 0.0
	successRate := 0.0
	if len(entries) > 0 {
		avgMs = float64(totalLatency.Microseconds()) / float64(len(entries)) / 1000.0
		successRate = float64(success) / float64(len(entries)) * 100
	}

	return ctx.JSON(fiber.Map{
		"total_requests": len(entries),
		"success":        success,
		"errors":         errors,
		"success_rate":   successRate,
		"avg_latency_ms": avgMs,
		"max_latency_ms": float64(maxLatency.Microseconds()) / 1000.0,
		"method_stats":   methodCounts,
		"status_stats":   statusCounts,
		"date_from":      from,
		"date_to":        to,
	})
}
