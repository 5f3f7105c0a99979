package Telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"Mason/Constants"
)

// Update is the Bot API webhook payload. Only the fields the webhook
// handler acts on are mapped.
type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int         `json:"message_id"`
	From      *TgUser     `json:"from"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text"`
	Photo     []PhotoSize `json:"photo"`
	Voice     *Voice      `json:"voice"`
	Caption   string      `json:"caption"`
}

type TgUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// PhotoSize entries arrive smallest first; the handler picks the last.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int    `json:"file_size"`
}

type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
	MimeType string `json:"mime_type"`
}

// Bot is a minimal Bot API client for the handful of methods the
// webhook needs
type Bot struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewBot reads the token from the environment. A bot with an empty
// token still constructs; calls will fail with a clear error.
func NewBot() *Bot {
	return &Bot{
		Token:   os.Getenv(Constants.EnvTelegramBotToken),
		BaseURL: Constants.TelegramAPIBase,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (b *Bot) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", b.BaseURL, b.Token, method)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (b *Bot) call(ctx context.Context, method string, payload any, result any) error {
	if b.Token == "" {
		return fmt.Errorf("telegram: %s is not set", Constants.EnvTelegramBotToken)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("telegram: failed to parse %s response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram: %s rejected: %s", method, parsed.Description)
	}
	if result != nil {
		return json.Unmarshal(parsed.Result, result)
	}
	return nil
}

// SendMessage posts a text reply to a chat
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := struct {
		ChatID int64  `json:"chat_id"`
		Text   string `json:"text"`
	}{ChatID: chatID, Text: text}
	return b.call(ctx, "sendMessage", payload, nil)
}

type fileInfo struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int    `json:"file_size"`
}

// DownloadFile resolves a file_id via getFile and fetches its bytes
func (b *Bot) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	var info fileInfo
	payload := struct {
		FileID string `json:"file_id"`
	}{FileID: fileID}
	if err := b.call(ctx, "getFile", payload, &info); err != nil {
		return nil, "", err
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", b.BaseURL, b.Token, info.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	res, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("telegram: file download failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("telegram: file download returned status %d", res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}
	return data, info.FilePath, nil
}
