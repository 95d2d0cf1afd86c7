package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/condicional-api/internal/application/auth"
	"github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/application/usecase"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC        *usecase.ItemUseCase
	ImageUC       *usecase.ImageUseCase
	ClientUC      *usecase.ClientUseCase
	SaleUC        *usecase.SaleUseCase
	CondicionalUC *condicional.CondicionalUseCase
	ReportUC      *condicional.ReportUseCase
	AuthUC        *auth.AuthUseCase
	Receipt       SaleReceiptGenerator
	UploadDir     string // directorio en disco servido como estático
	UploadURL     string // prefijo público de las imágenes (ej. /uploads)
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Imágenes subidas, servidas como estático (público)
	if deps.UploadDir != "" {
		app.Static(deps.UploadURL, deps.UploadDir)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Items (protegido)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", RequireRole(entity.RoleAdmin), itemHandler.Delete)

	// Imágenes de items (protegido)
	imageHandler := NewImageHandler(deps.ImageUC)
	items.Post("/:id/images", imageHandler.Upload)
	items.Get("/:id/images", imageHandler.ListByItem)
	protected.Delete("/images/:id", imageHandler.Delete)

	// Clients (protegido)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", RequireRole(entity.RoleAdmin), clientHandler.Delete)

	// Condicionales: motor + reportes (protegido)
	conds := protected.Group("/condicionales")
	condHandler := NewCondicionalHandler(deps.CondicionalUC, deps.ReportUC)
	conds.Post("/", condHandler.Create)
	// Rutas fijas antes de :id para que el router no las capture como ID.
	conds.Get("/reports/active", condHandler.ActiveReport)
	conds.Get("/reports/returned", condHandler.ReturnedReport)
	conds.Get("/stats", condHandler.Stats)
	conds.Get("/:id", condHandler.GetByID)
	conds.Put("/:id", condHandler.Update)
	conds.Delete("/:id", condHandler.Delete)
	conds.Post("/:id/return", condHandler.ReturnItem)
	conds.Post("/:id/finalize", condHandler.Finalize)
	conds.Post("/:id/convert", condHandler.Convert)

	// Sales (protegido)
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.Receipt)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Get("/:id/receipt", saleHandler.Receipt)
}
