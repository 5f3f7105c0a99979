package Models

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Mason/Constants"
)

var DB *gorm.DB

// Connect opens the database and runs migrations. Postgres when DB_HOST is
// set, local sqlite otherwise.
func Connect() {
	var err error
	if host := os.Getenv(Constants.EnvDBHost); host != "" {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			host,
			os.Getenv(Constants.EnvDBUser),
			os.Getenv(Constants.EnvDBPassword),
			os.Getenv(Constants.EnvDBName),
			os.Getenv(Constants.EnvDBPort),
		)
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		DB, err = gorm.Open(sqlite.Open("database.db"), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Migration failed:", err)
	}

	seedAdmin(DB)
}

// Migrate runs AutoMigrate in dependency order.
func Migrate(db *gorm.DB) error {
	// 1. Base tables with no foreign keys
	if err := db.AutoMigrate(
		&User{},
		&Worker{},
		&Client{},
		&Skill{},
		&AIProvider{},
		&FCMToken{},
	); err != nil {
		return err
	}

	// 2. Tables with simple foreign keys
	if err := db.AutoMigrate(
		&RoleAssignment{},
		&Project{},
		&Attendance{},
		&Payment{},
		&WorkerSkill{},
		&Certification{},
		&Expense{},
	); err != nil {
		return err
	}

	// 3. Link tables and logs
	return db.AutoMigrate(
		&WorkerAssignment{},
		&AuditLog{},
	)
}

// seedAdmin guarantees at least one admin login exists so a fresh install
// is reachable.
func seedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&User{}).Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Failed to hash seed admin password:", err)
		return
	}

	admin := User{
		Name:     "Administrator",
		Email:    "admin@mason.local",
		Password: hash,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Println("Failed to seed admin user:", err)
		return
	}
	db.Create(&RoleAssignment{UserID: admin.ID, Role: "admin", IsActive: true})
	log.Println("Seeded default admin account")
}
