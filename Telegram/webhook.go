package Telegram

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Mason/Assistant"
	"Mason/Constants"
	"Mason/Controllers"
	"Mason/Models"
)

const actionSystemPrompt = `You are the back-office assistant of a construction company.
Convert the user's message into exactly one JSON object and nothing else, no prose, no code fences:
{"action": "<create_worker|record_attendance|record_payment|none>", "data": {...}}
Fields per action:
 create_worker:     {"full_name": string, "daily_rate": number, "position": string, "phone": string}
 record_attendance: {"worker_name": string, "date": "YYYY-MM-DD", "status": "present|absent|sick|vacation"}
 record_payment:    {"worker_name": string, "amount": number, "date": "YYYY-MM-DD", "description": string}
Use action "none" with {"reason": string} when the message is not one of these requests.
Omit unknown optional fields. Today is %s.`

// WebhookController turns inbound Telegram messages into backend
// mutations
type WebhookController struct {
	DB  *gorm.DB
	Bot *Bot
}

// NewWebhookController creates a new WebhookController
func NewWebhookController(db *gorm.DB) *WebhookController {
	return &WebhookController{DB: db, Bot: NewBot()}
}

// Handle is the Bot API webhook endpoint. The secret path segment must
// match TELEGRAM_WEBHOOK_SECRET. Telegram retries non-200 responses, so
// processing errors are reported to the chat, not to Telegram.
func (w *WebhookController) Handle(ctx *fiber.Ctx) error {
	secret := os.Getenv(Constants.EnvWebhookSecret)
	if secret == "" || subtle.ConstantTimeCompare([]byte(ctx.Params("secret")), []byte(secret)) != 1 {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid webhook secret"})
	}

	var update Update
	if err := ctx.BodyParser(&update); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid update payload"})
	}
	if update.Message == nil {
		return ctx.JSON(fiber.Map{"ok": true})
	}

	msg := update.Message
	reqCtx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	var reply string
	switch {
	case msg.Voice != nil:
		reply = w.handleVoice(reqCtx, msg)
	case len(msg.Photo) > 0:
		reply = w.handlePhoto(reqCtx, msg)
	case strings.HasPrefix(msg.Text, "/"):
		reply = w.handleCommand(msg)
	case msg.Text != "":
		reply = w.handleText(reqCtx, msg.Text)
	default:
		reply = "I can handle text, voice notes and photos."
	}

	if err := w.Bot.SendMessage(reqCtx, msg.Chat.ID, reply); err != nil {
		log.Printf("telegram: reply to chat %d failed: %v", msg.Chat.ID, err)
	}
	return ctx.JSON(fiber.Map{"ok": true})
}

func (w *WebhookController) handleCommand(msg *Message) string {
	command := strings.ToLower(strings.Fields(msg.Text)[0])
	switch command {
	case "/start":
		return "Welcome. Send me instructions in plain language, for example:\n" +
			"\"add worker Ahmed Hassan, 400 per day, plasterer\"\n" +
			"\"mark Ahmed present today\"\n" +
			"\"paid Ahmed 2000 yesterday\"\n" +
			"Voice notes and photos of receipts work too."
	case "/chatid":
		return fmt.Sprintf("This chat id is %d", msg.Chat.ID)
	case "/status":
		var workers, projects int64
		w.DB.Model(&Models.Worker{}).Where("status = ?", Models.WorkerStatusActive).Count(&workers)
		w.DB.Model(&Models.Project{}).Where("status = ?", "active").Count(&projects)
		return fmt.Sprintf("Active workers: %d\nActive projects: %d", workers, projects)
	case "/expense":
		return "Expenses are recorded from the dashboard. Send a photo of the receipt here and I will summarize it."
	case "/attendance":
		return "Tell me who to mark, e.g. \"mark Ahmed present today\" or \"Omar was sick yesterday\"."
	default:
		return "Unknown command. Try /start."
	}
}

func (w *WebhookController) handleText(ctx context.Context, text string) string {
	provider, err := Assistant.PrimaryProvider(w.DB)
	if err != nil {
		return "No AI provider is configured; I cannot understand free-form messages right now."
	}

	system := fmt.Sprintf(actionSystemPrompt, time.Now().Format(Constants.DateLayout))
	raw, err := Assistant.NewClient(provider).Chat(ctx, system, text)
	if err != nil {
		return "I could not reach the assistant, please try again later."
	}

	envelope, err := ParseActionEnvelope(raw)
	if err != nil {
		return "I did not understand that, please rephrase."
	}
	return w.execute(envelope)
}

func (w *WebhookController) handlePhoto(ctx context.Context, msg *Message) string {
	// Telegram orders sizes ascending; the last is the original
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	data, _, err := w.Bot.DownloadFile(ctx, fileID)
	if err != nil {
		return "I could not download that photo."
	}

	jpeg, err := downscaleJPEG(data)
	if err != nil {
		return "I could not read that image."
	}

	provider, err := Assistant.PrimaryProvider(w.DB)
	if err != nil {
		return "No AI provider is configured; I cannot read photos right now."
	}

	prompt := "Describe this construction-site document or photo. If it is a receipt or invoice, list vendor, date, items and total."
	if msg.Caption != "" {
		prompt = msg.Caption
	}
	summary, err := Assistant.NewClient(provider).ChatVision(ctx, prompt, jpeg)
	if err != nil {
		return "I could not analyze that photo, please try again later."
	}
	return summary
}

func (w *WebhookController) handleVoice(ctx context.Context, msg *Message) string {
	data, filePath, err := w.Bot.DownloadFile(ctx, msg.Voice.FileID)
	if err != nil {
		return "I could not download that voice note."
	}

	provider, err := Assistant.PrimaryProvider(w.DB)
	if err != nil {
		return "No AI provider is configured; I cannot transcribe voice notes right now."
	}

	filename := "voice.ogg"
	if i := strings.LastIndex(filePath, "/"); i >= 0 && i < len(filePath)-1 {
		filename = filePath[i+1:]
	}
	text, err := Assistant.NewClient(provider).Transcribe(ctx, data, filename)
	if err != nil {
		return "I could not transcribe that voice note."
	}
	return w.handleText(ctx, text)
}

// ActionEnvelope is the strict JSON contract the LLM must return
type ActionEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// ParseActionEnvelope extracts the envelope from a model reply,
// tolerating stray code fences or surrounding prose
func ParseActionEnvelope(raw string) (ActionEnvelope, error) {
	var envelope ActionEnvelope

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return envelope, fmt.Errorf("no JSON object in reply")
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &envelope); err != nil {
		return envelope, err
	}
	if envelope.Action == "" {
		return envelope, fmt.Errorf("missing action")
	}
	return envelope, nil
}

func (w *WebhookController) execute(envelope ActionEnvelope) string {
	switch envelope.Action {
	case "create_worker":
		return w.createWorker(envelope.Data)
	case "record_attendance":
		return w.recordAttendance(envelope.Data)
	case "record_payment":
		return w.recordPayment(envelope.Data)
	case "none":
		var data struct {
			Reason string `json:"reason"`
		}
		_ = json.Unmarshal(envelope.Data, &data)
		if data.Reason != "" {
			return data.Reason
		}
		return "I did not find an action in that message."
	default:
		return fmt.Sprintf("I do not know how to %q.", envelope.Action)
	}
}

func (w *WebhookController) createWorker(data json.RawMessage) string {
	var input struct {
		FullName  string  `json:"full_name"`
		DailyRate float64 `json:"daily_rate"`
		Position  string  `json:"position"`
		Phone     string  `json:"phone"`
	}
	if err := json.Unmarshal(data, &input); err != nil || input.FullName == "" {
		return "I need at least the worker's name to create them."
	}

	if _, found := Controllers.FindWorkerByName(w.DB, input.FullName); found {
		return fmt.Sprintf("A worker named %q already exists.", input.FullName)
	}

	worker := Models.Worker{
		FullName:  strings.TrimSpace(input.FullName),
		DailyRate: input.DailyRate,
		Position:  input.Position,
		Phone:     input.Phone,
		Status:    Models.WorkerStatusActive,
	}
	if err := w.DB.Create(&worker).Error; err != nil {
		return "Failed to create the worker, please try again."
	}
	return fmt.Sprintf("Created worker %s (daily rate %.0f).", worker.FullName, worker.DailyRate)
}

func (w *WebhookController) recordAttendance(data json.RawMessage) string {
	var input struct {
		WorkerName string `json:"worker_name"`
		Date       string `json:"date"`
		Status     string `json:"status"`
	}
	if err := json.Unmarshal(data, &input); err != nil || input.WorkerName == "" {
		return "I need the worker's name to record attendance."
	}

	worker, found := Controllers.FindWorkerByName(w.DB, input.WorkerName)
	if !found {
		return fmt.Sprintf("I could not find a worker matching %q.", input.WorkerName)
	}

	date := input.Date
	if date == "" {
		date = time.Now().Format(Constants.DateLayout)
	} else if _, err := time.Parse(Constants.DateLayout, date); err != nil {
		return "The date must look like 2025-01-31."
	}

	status := input.Status
	if status == "" {
		status = Models.AttendancePresent
	}
	switch status {
	case Models.AttendancePresent, Models.AttendanceAbsent, Models.AttendanceSick, Models.AttendanceVacation:
	default:
		return fmt.Sprintf("Unknown attendance status %q.", status)
	}

	row := Models.Attendance{WorkerID: worker.ID, WorkDate: date, Status: status}
	if err := Controllers.UpsertAttendance(w.DB, &row); err != nil {
		return "Failed to record attendance, please try again."
	}
	return fmt.Sprintf("Recorded %s as %s on %s.", worker.FullName, status, date)
}

func (w *WebhookController) recordPayment(data json.RawMessage) string {
	var input struct {
		WorkerName  string  `json:"worker_name"`
		Amount      float64 `json:"amount"`
		Date        string  `json:"date"`
		Description string  `json:"description"`
	}
	if err := json.Unmarshal(data, &input); err != nil || input.WorkerName == "" {
		return "I need the worker's name to record a payment."
	}
	if input.Amount <= 0 {
		return "The payment amount must be greater than zero."
	}

	worker, found := Controllers.FindWorkerByName(w.DB, input.WorkerName)
	if !found {
		return fmt.Sprintf("I could not find a worker matching %q.", input.WorkerName)
	}

	date := input.Date
	if date == "" {
		date = time.Now().Format(Constants.DateLayout)
	} else if _, err := time.Parse(Constants.DateLayout, date); err != nil {
		return "The date must look like 2025-01-31."
	}

	payment := Models.Payment{
		WorkerID:    worker.ID,
		PayDate:     date,
		Amount:      input.Amount,
		Description: input.Description,
	}
	if err := w.DB.Create(&payment).Error; err != nil {
		return "Failed to record the payment, please try again."
	}
	return fmt.Sprintf("Recorded a payment of %.2f to %s on %s.", payment.Amount, worker.FullName, date)
}

// downscaleJPEG re-encodes arbitrary image bytes as a JPEG no larger
// than 1024px on its longest side, keeping vision-call payloads small
func downscaleJPEG(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > 1024 || bounds.Dy() > 1024 {
		img = imaging.Fit(img, 1024, 1024, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
