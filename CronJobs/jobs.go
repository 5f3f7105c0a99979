package CronJobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"Mason/Assistant"
	"Mason/Models"
	"Mason/Notifications"
)

// ProviderMonitor represents a scheduled AI-provider health check service
type ProviderMonitor struct {
	cronScheduler  *cron.Cron
	db             *gorm.DB
	checkTimeout   time.Duration
	runImmediately bool
	jobID          cron.EntryID
}

// NewProviderMonitor creates a new monitor with the given configuration
func NewProviderMonitor(db *gorm.DB, runImmediately bool) *ProviderMonitor {
	return &ProviderMonitor{
		cronScheduler:  cron.New(cron.WithSeconds()),
		db:             db,
		checkTimeout:   30 * time.Second,
		runImmediately: runImmediately,
	}
}

// Start initiates the provider monitor cron job
func (m *ProviderMonitor) Start() error {
	var err error
	m.jobID, err = m.cronScheduler.AddFunc("0 */15 * * * *", func() {
		log.Println("Running scheduled provider health sweep")
		m.runSweep()
	})

	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	m.cronScheduler.Start()
	log.Println("Provider monitor started - sweeping every 15 minutes")

	if m.runImmediately {
		log.Println("Running initial provider sweep")
		m.runSweep()
	}

	return nil
}

// Stop terminates the provider monitor
func (m *ProviderMonitor) Stop() {
	if m.cronScheduler != nil {
		m.cronScheduler.Stop()
		log.Println("Provider monitor stopped")
	}
}

// UpdateSchedule changes the sweep schedule.
// Format: "0 */15 * * * *" = every 15 minutes
func (m *ProviderMonitor) UpdateSchedule(schedule string) error {
	m.cronScheduler.Remove(m.jobID)

	var err error
	m.jobID, err = m.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running scheduled provider health sweep")
		m.runSweep()
	})

	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	log.Printf("Provider sweep schedule updated to: %s\n", schedule)
	return nil
}

// RunManualCheck executes a manual sweep
func (m *ProviderMonitor) RunManualCheck() {
	log.Println("Running manual provider sweep")
	m.runSweep()
}

// runSweep checks every active provider sequentially and raises alerts for
// new failures and for complete outages of a provider class.
func (m *ProviderMonitor) runSweep() {
	var providers []Models.AIProvider
	if err := m.db.Where("is_active = ?", true).Order("priority asc").Find(&providers).Error; err != nil {
		log.Printf("Error fetching providers: %v\n", err)
		return
	}
	if len(providers) == 0 {
		log.Println("No active providers to check")
		return
	}

	downByType := make(map[string]int)
	totalByType := make(map[string]int)

	for i := range providers {
		provider := &providers[i]
		totalByType[provider.Type]++

		wasHealthy := provider.LastStatus != Models.ProviderStatusDown

		checkCtx, cancel := context.WithTimeout(context.Background(), m.checkTimeout)
		latency, _, err := Assistant.NewClient(*provider).HealthCheck(checkCtx)
		cancel()

		Assistant.RecordCheck(m.db, provider, latency, err)

		if err != nil {
			downByType[provider.Type]++
			log.Printf("Provider %s (%s) check failed: %v\n", provider.Name, provider.Type, err)
			if wasHealthy {
				Notifications.AlertAdmins(m.db,
					"AI provider down",
					fmt.Sprintf("Provider %s (%s) failed its health check: %v", provider.Name, provider.Type, err))
			}
			continue
		}
		log.Printf("Provider %s (%s) healthy in %dms\n", provider.Name, provider.Type, latency.Milliseconds())
	}

	for providerType, down := range downByType {
		if down == totalByType[providerType] {
			Notifications.AlertAdmins(m.db,
				"Complete provider outage",
				fmt.Sprintf("All %d active %s providers are down", down, providerType))
		}
	}
}
