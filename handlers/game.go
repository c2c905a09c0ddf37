// handlers/game.go
package handlers

import (
	"trivia-game-system/middleware"
	"trivia-game-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService, cookieMaxAge int, secureCookies bool) {
	// Every player route runs behind the session cookie middleware so the
	// state store always has a key to work with.
	api := app.Group("/api", middleware.PlayerSessionMiddleware(cookieMaxAge, secureCookies))

	api.Post("/start-game", gameService.StartGame)
	api.Get("/get-question", gameService.GetQuestion)
	api.Post("/submit-answer", gameService.SubmitAnswer)
	api.Post("/save-selfie", gameService.SaveSelfie)
	api.Post("/complete-game", gameService.CompleteGame)

	api.Post("/check-user", gameService.CheckUser)
	api.Post("/get-suggestions", gameService.GetSuggestions)
	api.Get("/industries", gameService.ListIndustries)
}
