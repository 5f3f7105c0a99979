package CronJobs

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Mason/Models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mason_test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func TestRunSweepRecordsStatuses(t *testing.T) {
	db := testDB(t)

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"upstream exploded"}}`)
	}))
	defer broken.Close()

	require.NoError(t, db.Create(&Models.AIProvider{
		Name: "good", Type: "openai", Endpoint: healthy.URL, IsActive: true, Priority: 1,
	}).Error)
	require.NoError(t, db.Create(&Models.AIProvider{
		Name: "bad", Type: "openrouter", Endpoint: broken.URL, IsActive: true, Priority: 2,
	}).Error)
	require.NoError(t, db.Create(&Models.AIProvider{
		Name: "off", Type: "openai", IsActive: false, Priority: 3,
	}).Error)

	monitor := NewProviderMonitor(db, false)
	monitor.checkTimeout = 5 * time.Second
	monitor.RunManualCheck()

	var good, bad, off Models.AIProvider
	require.NoError(t, db.Where("name = ?", "good").First(&good).Error)
	require.NoError(t, db.Where("name = ?", "bad").First(&bad).Error)
	require.NoError(t, db.Where("name = ?", "off").First(&off).Error)

	assert.Equal(t, Models.ProviderStatusHealthy, good.LastStatus)
	assert.NotNil(t, good.LastCheckedAt)
	assert.Empty(t, good.LastError)

	assert.Equal(t, Models.ProviderStatusDown, bad.LastStatus)
	assert.Contains(t, bad.LastError, "upstream exploded")

	// Inactive providers are never swept
	assert.Equal(t, Models.ProviderStatusUnknown, off.LastStatus)
	assert.Nil(t, off.LastCheckedAt)
}

func TestRunSweepNoProviders(t *testing.T) {
	db := testDB(t)
	monitor := NewProviderMonitor(db, false)
	// Nothing to check; must not panic or write anything
	monitor.RunManualCheck()

	var count int64
	db.Model(&Models.AIProvider{}).Count(&count)
	assert.Zero(t, count)
}

func TestUpdateSchedule(t *testing.T) {
	monitor := NewProviderMonitor(testDB(t), false)
	require.NoError(t, monitor.Start())
	defer monitor.Stop()

	assert.NoError(t, monitor.UpdateSchedule("0 */5 * * * *"))
	assert.Error(t, monitor.UpdateSchedule("not a schedule"))
}
