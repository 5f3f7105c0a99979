package Models

import (
	"os"
	"strconv"

	"Mason/Constants"
)

type EmailConfig struct {
	SMTPServer   string
	SMTPPort     int
	Username     string
	Password     string
	FromEmail    string
	FromName     string
	TLSEnabled   bool
	SkipTLSCheck bool
}

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Body    string
	IsHTML  bool
}

// EmailConfigFromEnv builds the alerting mail config. Returns ok=false when
// SMTP is not configured, in which case mail alerts are skipped.
func EmailConfigFromEnv() (EmailConfig, bool) {
	server := os.Getenv(Constants.EnvSMTPServer)
	if server == "" {
		return EmailConfig{}, false
	}
	port, err := strconv.Atoi(os.Getenv(Constants.EnvSMTPPort))
	if err != nil {
		port = 587
	}
	user := os.Getenv(Constants.EnvSMTPUser)
	return EmailConfig{
		SMTPServer: server,
		SMTPPort:   port,
		Username:   user,
		Password:   os.Getenv(Constants.EnvSMTPPassword),
		FromEmail:  user,
		FromName:   "Mason Monitor",
		TLSEnabled: true,
	}, true
}
