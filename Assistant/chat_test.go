package Assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Mason/middleware"
	"Mason/Models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mason_test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

// stubCompletions serves an OpenAI-style chat completion with a fixed reply
func stubCompletions(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, reply)
	}))
}

func chatApp(controller *ChatController, role middleware.Role) *fiber.App {
	app := fiber.New()
	app.Post("/chat", func(c *fiber.Ctx) error {
		c.Locals("role", role)
		return c.Next()
	}, controller.Chat)
	return app
}

func postChat(t *testing.T, app *fiber.App, payload any) (*http.Response, chatResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, 5000)
	require.NoError(t, err)

	var parsed chatResponse
	_ = json.NewDecoder(res.Body).Decode(&parsed)
	return res, parsed
}

func TestChatShortReplyNotTruncated(t *testing.T) {
	db := testDB(t)
	server := stubCompletions(t, "All workers on site.")
	defer server.Close()

	require.NoError(t, db.Create(&Models.AIProvider{
		Name: "test", Type: "openai", Endpoint: server.URL, IsActive: true, Priority: 1,
	}).Error)

	app := chatApp(NewChatController(db), middleware.RoleAdmin)
	res, parsed := postChat(t, app, fiber.Map{"prompt": "who is on site"})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "All workers on site.", parsed.Response)
	assert.False(t, parsed.Truncated)
	assert.False(t, parsed.Filtered)
	assert.Equal(t, "test", parsed.Provider)
}

func TestChatLongReplySetsTruncated(t *testing.T) {
	db := testDB(t)
	long := strings.Repeat("x", TruncateLimit+1)
	server := stubCompletions(t, long)
	defer server.Close()

	require.NoError(t, db.Create(&Models.AIProvider{
		Name: "test", Type: "openai", Endpoint: server.URL, IsActive: true, Priority: 1,
	}).Error)

	app := chatApp(NewChatController(db), middleware.RoleAdmin)
	_, parsed := postChat(t, app, fiber.Map{"prompt": "long answer please"})

	// The full reply comes back; the flag tells the UI to fold it
	assert.Equal(t, long, parsed.Response)
	assert.True(t, parsed.Truncated)
}

func TestChatTruncationCountsRunesNotBytes(t *testing.T) {
	db := testDB(t)
	// 150 Arabic letters are 300 bytes but well under the rune limit
	reply := strings.Repeat("م", 150)
	server := stubCompletions(t, reply)
	defer server.Close()

	require.NoError(t, db.Create(&Models.AIProvider{
		Name: "test", Type: "openai", Endpoint: server.URL, IsActive: true, Priority: 1,
	}).Error)

	app := chatApp(NewChatController(db), middleware.RoleAdmin)
	_, parsed := postChat(t, app, fiber.Map{"prompt": "short arabic answer"})

	assert.Equal(t, reply, parsed.Response)
	assert.False(t, parsed.Truncated)
}

func TestHealthCheckPreviewKeepsValidUTF8(t *testing.T) {
	server := stubCompletions(t, strings.Repeat("م", 100))
	defer server.Close()

	client := NewClient(Models.AIProvider{Type: "openai", Endpoint: server.URL})
	_, preview, err := client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(preview), 80)
	assert.True(t, utf8.ValidString(preview))
}

func TestChatGuestIsFilteredLocally(t *testing.T) {
	db := testDB(t)
	// No stub server: a filtered prompt must never reach a provider
	app := chatApp(NewChatController(db), middleware.RoleGuest)
	res, parsed := postChat(t, app, fiber.Map{"prompt": "hello"})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, parsed.Filtered)
	assert.Empty(t, parsed.Provider)
}

func TestChatNoProviderConfigured(t *testing.T) {
	db := testDB(t)
	app := chatApp(NewChatController(db), middleware.RoleAdmin)
	res, _ := postChat(t, app, fiber.Map{"prompt": "anything"})
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestPrimaryProviderPrefersPriority(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&Models.AIProvider{Name: "backup", Type: "openai", IsActive: true, Priority: 5}).Error)
	require.NoError(t, db.Create(&Models.AIProvider{Name: "main", Type: "anthropic", IsActive: true, Priority: 1}).Error)
	require.NoError(t, db.Create(&Models.AIProvider{Name: "disabled", Type: "openai", IsActive: false, Priority: 0}).Error)

	provider, err := PrimaryProvider(db)
	require.NoError(t, err)
	assert.Equal(t, "main", provider.Name)
}

func TestRecordCheck(t *testing.T) {
	db := testDB(t)
	provider := Models.AIProvider{Name: "p", Type: "openai", IsActive: true}
	require.NoError(t, db.Create(&provider).Error)

	RecordCheck(db, &provider, 120*time.Millisecond, nil)
	assert.Equal(t, Models.ProviderStatusHealthy, provider.LastStatus)
	assert.Equal(t, int64(120), provider.LastLatencyMS)
	assert.Empty(t, provider.LastError)

	RecordCheck(db, &provider, 30*time.Millisecond, fmt.Errorf("connection refused"))

	var reloaded Models.AIProvider
	require.NoError(t, db.First(&reloaded, provider.ID).Error)
	assert.Equal(t, Models.ProviderStatusDown, reloaded.LastStatus)
	assert.Equal(t, "connection refused", reloaded.LastError)
	assert.NotNil(t, reloaded.LastCheckedAt)
}
