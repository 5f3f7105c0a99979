package FiberConfig

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"Mason/Assistant"
	"Mason/Controllers"
	"Mason/middleware"
	"Mason/Models"
	"Mason/Telegram"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	workerController := Controllers.NewWorkerController(db)
	attendanceController := Controllers.NewAttendanceController(db)
	paymentController := Controllers.NewPaymentController(db)
	projectController := Controllers.NewProjectController(db)
	clientController := Controllers.NewClientController(db)
	expenseController := Controllers.NewExpenseController(db)
	skillController := Controllers.NewSkillController(db)
	assignmentController := Controllers.NewAssignmentController(db)
	analyticsController := Controllers.NewAnalyticsController(db)
	reportController := Controllers.NewReportController(db)
	securityController := Controllers.NewSecurityController(db)
	logController := Controllers.NewLogController("")
	chatController := Assistant.NewChatController(db)
	webhookController := Telegram.NewWebhookController(db)

	// Auth
	app.Post("/api/RegisterUser", middleware.Verify(middleware.RoleAdmin), Controllers.RegisterUser)
	app.Post("/api/Login", Controllers.Login)
	app.Post("/api/Logout", Controllers.Logout)
	app.Get("/api/Me", middleware.Verify(middleware.RoleGuest), Controllers.Me)
	app.Get("/api/validate-token", Controllers.ValidateToken)
	app.Post("/api/UpdateToken", Models.UpdateToken)

	api := app.Group("/api")

	// Worker routes. Reading is open to workers, mutation is for
	// foremen and up.
	workers := api.Group("/workers", middleware.Verify(middleware.RoleWorker))
	workers.Get("/", workerController.GetWorkers)
	workers.Get("/ratings", workerController.GetWorkerRatings)
	workers.Get("/certifications/expiring", skillController.GetExpiringCertifications)
	workers.Get("/:id", workerController.GetWorker)
	workers.Get("/:id/rating", workerController.GetWorkerRating)
	workers.Get("/:id/balance", middleware.Verify(middleware.RoleForeman), paymentController.GetWorkerBalance)
	workers.Post("/", middleware.Verify(middleware.RoleForeman), workerController.CreateWorker)
	workers.Put("/:id", middleware.Verify(middleware.RoleForeman), workerController.UpdateWorker)
	workers.Delete("/:id", middleware.Verify(middleware.RoleAdmin), workerController.DeleteWorker)

	// Worker skills and certifications
	workers.Post("/:id/skills", middleware.Verify(middleware.RoleForeman), skillController.AssignSkill)
	workers.Delete("/:id/skills/:skillId", middleware.Verify(middleware.RoleForeman), skillController.RemoveSkill)
	workers.Post("/:id/certifications", middleware.Verify(middleware.RoleForeman), skillController.AddCertification)
	workers.Delete("/:id/certifications/:certId", middleware.Verify(middleware.RoleForeman), skillController.DeleteCertification)

	skills := api.Group("/skills", middleware.Verify(middleware.RoleWorker))
	skills.Get("/", skillController.GetSkills)
	skills.Post("/", middleware.Verify(middleware.RoleForeman), skillController.CreateSkill)
	skills.Delete("/:id", middleware.Verify(middleware.RoleAdmin), skillController.DeleteSkill)

	// Attendance
	attendance := api.Group("/attendance", middleware.Verify(middleware.RoleWorker))
	attendance.Get("/", attendanceController.GetAttendance)
	attendance.Post("/", middleware.Verify(middleware.RoleForeman), attendanceController.RecordAttendance)
	attendance.Delete("/:id", middleware.Verify(middleware.RoleForeman), attendanceController.DeleteAttendance)

	// Payments are money movement, foreman and up only
	payments := api.Group("/payments", middleware.Verify(middleware.RoleForeman))
	payments.Get("/", paymentController.GetPayments)
	payments.Post("/", paymentController.CreatePayment)
	payments.Delete("/:id", middleware.Verify(middleware.RoleAdmin), paymentController.DeletePayment)

	// Projects and clients
	projects := api.Group("/projects", middleware.Verify(middleware.RoleWorker))
	projects.Get("/", projectController.GetProjects)
	projects.Get("/:id", projectController.GetProject)
	projects.Get("/:id/analytics", middleware.Verify(middleware.RoleForeman), analyticsController.GetProjectAnalytics)
	projects.Post("/", middleware.Verify(middleware.RoleForeman), projectController.CreateProject)
	projects.Put("/:id", middleware.Verify(middleware.RoleForeman), projectController.UpdateProject)
	projects.Delete("/:id", middleware.Verify(middleware.RoleAdmin), projectController.DeleteProject)

	clients := api.Group("/clients", middleware.Verify(middleware.RoleForeman))
	clients.Get("/", clientController.GetClients)
	clients.Get("/:id", clientController.GetClient)
	clients.Post("/", clientController.CreateClient)
	clients.Put("/:id", clientController.UpdateClient)
	clients.Delete("/:id", middleware.Verify(middleware.RoleAdmin), clientController.DeleteClient)

	// Assignments
	assignments := api.Group("/assignments", middleware.Verify(middleware.RoleWorker))
	assignments.Get("/", assignmentController.GetAssignments)
	assignments.Post("/", middleware.Verify(middleware.RoleForeman), assignmentController.CreateAssignment)
	assignments.Put("/:id/end", middleware.Verify(middleware.RoleForeman), assignmentController.EndAssignment)
	assignments.Delete("/:id", middleware.Verify(middleware.RoleAdmin), assignmentController.DeleteAssignment)

	// Expenses
	expenses := api.Group("/expenses", middleware.Verify(middleware.RoleForeman))
	expenses.Get("/", expenseController.GetExpenses)
	expenses.Post("/", expenseController.CreateExpense)
	expenses.Delete("/:id", middleware.Verify(middleware.RoleAdmin), expenseController.DeleteExpense)

	// Analytics routes
	analytics := api.Group("/analytics", middleware.Verify(middleware.RoleForeman))
	analytics.Get("/summary", analyticsController.GetSummary)
	analytics.Get("/monthly", analyticsController.GetMonthly)

	// Report export
	api.Post("/reports/export", middleware.Verify(middleware.RoleForeman), reportController.Export)

	// AI chat and provider administration
	chat := api.Group("/ai", middleware.Verify(middleware.RoleWorker))
	chat.Post("/chat", chatController.Chat)
	chat.Get("/providers", middleware.Verify(middleware.RoleAdmin), chatController.GetProviders)
	chat.Post("/providers", middleware.Verify(middleware.RoleAdmin), chatController.CreateProvider)
	chat.Put("/providers/:id", middleware.Verify(middleware.RoleAdmin), chatController.UpdateProvider)
	chat.Delete("/providers/:id", middleware.Verify(middleware.RoleAdmin), chatController.DeleteProvider)
	chat.Post("/providers/test", middleware.Verify(middleware.RoleAdmin), chatController.TestProvider)

	// Security dashboard
	security := api.Group("/security", middleware.Verify(middleware.RoleAdmin))
	security.Get("/users", securityController.GetUsers)
	security.Post("/roles", securityController.GrantRole)
	security.Delete("/roles/:id", securityController.RevokeRole)
	security.Get("/audit", securityController.GetAuditLogs)

	// Logs API routes
	app.Get("/api/logs", middleware.Verify(middleware.RoleAdmin), logController.GetLogs)
	app.Get("/api/logs/stats", middleware.Verify(middleware.RoleAdmin), logController.GetLogStats)

	// Telegram webhook authenticates by path secret, not by cookie
	app.Post("/telegram/webhook/:secret", webhookController.Handle)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(middleware.ErrorLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)

	app.Listen(":3001")
}
