package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"fileapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, fileSvc service.FileService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/files", CreateFile(fileSvc))
	app.Post("/files/filter", FilterFiles(fileSvc))
	app.Get("/files/:id", GetFile(fileSvc))
	app.Get("/files/:id/data", DownloadFile(fileSvc))
	app.Put("/files/:id", UpdateFile(fileSvc))
	app.Delete("/files/:id", DeleteFile(fileSvc))
}
