package Assistant

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"Mason/Constants"
	"Mason/Models"
)

// Client talks to one configured AI provider. Supports OpenAI-compatible
// endpoints (openai, openrouter) and Anthropic.
type Client struct {
	Type        string
	BaseURL     string
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float64

	httpClient *http.Client
}

// NewClient builds a client for a provider row. The API key comes from the
// environment as <TYPE>_API_KEY.
func NewClient(provider Models.AIProvider) *Client {
	baseURL := provider.Endpoint
	if baseURL == "" {
		switch provider.Type {
		case Constants.ProviderAnthropic:
			baseURL = "https://api.anthropic.com/v1"
		case Constants.ProviderOpenRouter:
			baseURL = "https://openrouter.ai/api/v1"
		default:
			baseURL = "https://api.openai.com/v1"
		}
	}

	maxTokens := provider.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &Client{
		Type:        provider.Type,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      os.Getenv(strings.ToUpper(provider.Type) + "_API_KEY"),
		ModelName:   provider.ModelName,
		MaxTokens:   maxTokens,
		Temperature: provider.Temperature,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends a system+user prompt pair and returns the model's text reply.
func (c *Client) Chat(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if c.Type == Constants.ProviderAnthropic {
		return c.anthropicMessages(ctx, systemPrompt, prompt)
	}
	messages := []chatMessage{}
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})
	return c.chatCompletions(ctx, messages)
}

// visionPart mirrors the OpenAI content-part union for image prompts.
type visionPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

// ChatVision sends a prompt plus one JPEG image to a vision-capable model.
func (c *Client) ChatVision(ctx context.Context, prompt string, imageJPEG []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(imageJPEG)

	if c.Type == Constants.ProviderAnthropic {
		content := []map[string]interface{}{
			{
				"type": "image",
				"source": map[string]string{
					"type":       "base64",
					"media_type": "image/jpeg",
					"data":       encoded,
				},
			},
			{"type": "text", "text": prompt},
		}
		payload := anthropicRequest{
			Model:     c.ModelName,
			Messages:  []chatMessage{{Role: "user", Content: content}},
			MaxTokens: c.MaxTokens,
		}
		return c.doAnthropic(ctx, payload)
	}

	imagePart := visionPart{Type: "image_url"}
	imagePart.ImageURL = &struct {
		URL string `json:"url"`
	}{URL: "data:image/jpeg;base64," + encoded}

	content := []visionPart{
		{Type: "text", Text: prompt},
		imagePart,
	}
	return c.chatCompletions(ctx, []chatMessage{{Role: "user", Content: content}})
}

// Transcribe converts a voice recording to text through the provider's
// transcription endpoint (OpenAI-compatible only).
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.Type == Constants.ProviderAnthropic {
		return "", fmt.Errorf("provider type %s does not support transcription", c.Type)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("error building multipart body: %v", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("error writing audio data: %v", err)
	}
	if err := writer.WriteField("model", "whisper-1"); err != nil {
		return "", fmt.Errorf("error writing model field: %v", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error finalizing multipart body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %v", err)
	}

	var out struct {
		Text  string `json:"text"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("transcription API error: %s", out.Error.Message)
	}
	return out.Text, nil
}

// HealthCheck issues a minimal request and reports round-trip time plus a
// short response preview.
func (c *Client) HealthCheck(ctx context.Context) (time.Duration, string, error) {
	start := time.Now()
	reply, err := c.Chat(ctx, "", "Reply with the single word: ok")
	latency := time.Since(start)
	if err != nil {
		return latency, "", err
	}
	preview := reply
	if len(preview) > 80 {
		cut := 80
		// Back up to a rune boundary so the preview stays valid UTF-8
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	return latency, preview, nil
}

func (c *Client) chatCompletions(ctx context.Context, messages []chatMessage) (string, error) {
	payload := chatCompletionRequest{
		Model:       c.ModelName,
		Messages:    messages,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshaling JSON: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %v", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("provider API error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices (status %d)", resp.StatusCode)
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *Client) anthropicMessages(ctx context.Context, systemPrompt, prompt string) (string, error) {
	payload := anthropicRequest{
		Model:     c.ModelName,
		System:    systemPrompt,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.MaxTokens,
	}
	return c.doAnthropic(ctx, payload)
}

func (c *Client) doAnthropic(ctx context.Context, payload anthropicRequest) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshaling JSON: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Anthropic-Version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %v", err)
	}

	var out anthropicResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("provider API error: %s", out.Error.Message)
	}
	for _, block := range out.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("provider returned no text content (status %d)", resp.StatusCode)
}
