package Notifications

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"Mason/Constants"
	"Mason/Models"
	"Mason/email"
)

// Global Firebase client
var firebaseClient *messaging.Client
var ctx = context.Background()

// InitFirebase sets up FCM (call this once at startup). Missing credentials
// disable push alerts without failing startup.
func InitFirebase() error {
	credsFile := os.Getenv(Constants.EnvFirebaseCreds)
	if credsFile == "" {
		log.Println("Firebase credentials not configured, push alerts disabled")
		return nil
	}

	opt := option.WithCredentialsFile(credsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting Messaging client: %v", err)
	}

	firebaseClient = client
	log.Println("Firebase initialized successfully")
	return nil
}

// AlertAdmins fans a notification out to every registered admin device and,
// when SMTP is configured, to the alert mailbox. Failures are logged, not
// returned; alerting is best effort.
func AlertAdmins(db *gorm.DB, title, body string) {
	if err := sendPushToAll(db, title, body); err != nil {
		log.Println("Push alert failed:", err)
	}

	config, ok := Models.EmailConfigFromEnv()
	if !ok {
		return
	}
	to := os.Getenv(Constants.EnvAlertEmail)
	if to == "" {
		return
	}
	message := Models.EmailMessage{
		To:      []string{to},
		Subject: title,
		Body:    body,
	}
	if err := email.SendEmail(config, message); err != nil {
		log.Println("Mail alert failed:", err)
	}
}

func sendPushToAll(db *gorm.DB, title, body string) error {
	if firebaseClient == nil {
		return fmt.Errorf("firebase client not initialized")
	}

	var tokens []Models.FCMToken
	if err := db.Find(&tokens).Error; err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token.Value,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
				Priority: "high",
			},
		}

		response, err := firebaseClient.Send(ctx, message)
		if err != nil {
			log.Printf("Error sending Firebase message to token %d: %v", token.ID, err)
			continue
		}
		log.Printf("Successfully sent Firebase notification: %s", response)
	}
	return nil
}
