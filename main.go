package main

import (
	"log"

	"github.com/joho/godotenv"

	"Mason/CronJobs"
	"Mason/FiberConfig"
	"Mason/Models"
	"Mason/Notifications"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	Models.Connect()

	if err := Notifications.InitFirebase(); err != nil {
		log.Println("Firebase disabled:", err)
	}

	go func() {
		monitor := CronJobs.NewProviderMonitor(Models.DB, true)
		if err := monitor.Start(); err != nil {
			log.Println("Provider monitor failed to start:", err)
		}
	}()

	FiberConfig.FiberConfig()
}
