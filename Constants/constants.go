package Constants

// Env variable names. Per-provider API keys follow the pattern
// <PROVIDER_TYPE>_API_KEY, e.g. OPENAI_API_KEY, ANTHROPIC_API_KEY.
const (
	EnvJWTSecret        = "JWT_SECRET"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvWebhookSecret    = "TELEGRAM_WEBHOOK_SECRET"
	EnvFirebaseCreds    = "FIREBASE_CREDENTIALS_FILE"

	EnvDBHost     = "DB_HOST"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBName     = "DB_NAME"
	EnvDBPort     = "DB_PORT"

	EnvSMTPServer   = "SMTP_SERVER"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUser     = "SMTP_USER"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvAlertEmail   = "ALERT_EMAIL"
)

// Supported AI provider types.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
)

// DateLayout is the wire format for all date-only fields.
const DateLayout = "2006-01-02"

// TelegramAPIBase is the Bot API root, token appended per request.
const TelegramAPIBase = "https://api.telegram.org"
