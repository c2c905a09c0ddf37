// handlers/admin.go
package handlers

import (
	"trivia-game-system/middleware"
	"trivia-game-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(
	app *fiber.App,
	adminService *services.AdminService,
	questionService *services.QuestionService,
	importService *services.ImportService,
	exportService *services.ExportService,
	jwtSecret string,
) {
	app.Post("/admin/login", adminService.Login)

	admin := app.Group("/admin", middleware.AdminAuthMiddleware(jwtSecret))
	admin.Post("/logout", adminService.Logout)

	api := admin.Group("/api")

	// Question bank CRUD
	api.Get("/questions", questionService.ListQuestions)
	api.Post("/questions", questionService.CreateQuestion)
	api.Get("/questions/:id", questionService.GetQuestionByID)
	api.Put("/questions/:id", questionService.UpdateQuestion)
	api.Delete("/questions/:id", questionService.DeleteQuestion)

	api.Get("/categories", questionService.ListCategories)
	api.Post("/categories", questionService.CreateCategory)
	api.Put("/categories/:id", questionService.UpdateCategory)
	api.Delete("/categories/:id", questionService.DeleteCategory)

	api.Post("/industries", questionService.CreateIndustry)
	api.Post("/industries/:id/toggle-highlight", questionService.ToggleIndustryHighlight)

	// Audience management
	api.Get("/users", questionService.ListUsers)
	api.Post("/users", questionService.AddPreRegisteredUser)

	// Bulk imports
	api.Post("/questions/bulk-import", importService.BulkImportQuestions)
	api.Post("/questions/bulk-import-text", importService.BulkImportQuestionsText)
	api.Post("/users/bulk-import", importService.BulkImportUsers)
	api.Post("/users/bulk-import-text", importService.BulkImportUsersText)

	// Analytics and maintenance
	api.Get("/dashboard-stats", adminService.DashboardStats)
	api.Get("/question-analytics", adminService.QuestionAnalytics)
	api.Post("/reset-sessions", adminService.ResetSessions)

	// Excel exports
	api.Get("/export-sessions", exportService.ExportSessions)
	api.Get("/excel-report", exportService.ExportCompleteReport)
}
