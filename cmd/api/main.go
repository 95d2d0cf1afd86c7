package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/condicional-api/internal/application/auth"
	"github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/condicional-api/internal/infrastructure/pdf"
	"github.com/jhoicas/condicional-api/internal/infrastructure/postgres"
	"github.com/jhoicas/condicional-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/condicional-api/internal/interfaces/http"
	"github.com/jhoicas/condicional-api/pkg/config"
	"github.com/jhoicas/condicional-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios atados al pool (lecturas fuera de transacción). Las
	// operaciones del ciclo condicional reciben sus propios repos vía TxRunner.
	itemRepo := postgres.NewItemRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	condRepo := postgres.NewCondicionalRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	imageRepo := postgres.NewItemImageRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	imageStorage, err := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.PublicURL)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("directorio de imágenes")
	}

	condicionalUC := condicional.NewCondicionalUseCase(txRunner, condRepo)
	reportUC := condicional.NewReportUseCase(condRepo)
	itemUC := usecase.NewItemUseCase(itemRepo)
	clientUC := usecase.NewClientUseCase(clientRepo)
	saleUC := usecase.NewSaleUseCase(txRunner, saleRepo)
	imageUC := usecase.NewImageUseCase(imageRepo, itemRepo, imageStorage)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// PDF: recibo imprimible de la venta generada desde un condicional
	receiptGen := infrapdf.NewReceiptGenerator(cfg.App.Name)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Condicional API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:        itemUC,
		ImageUC:       imageUC,
		ClientUC:      clientUC,
		SaleUC:        saleUC,
		CondicionalUC: condicionalUC,
		ReportUC:      reportUC,
		AuthUC:        authUC,
		Receipt:       receiptGen,
		UploadDir:     imageStorage.Dir(),
		UploadURL:     cfg.Upload.PublicURL,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
