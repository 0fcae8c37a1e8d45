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
	"github.com/shopspring/decimal"

	appbilling "github.com/kevinvillajim/bcommerce-billing/internal/application/billing"
	apppricing "github.com/kevinvillajim/bcommerce-billing/internal/application/pricing"
	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	domainpricing "github.com/kevinvillajim/bcommerce-billing/internal/domain/pricing"
	infrapdf "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/pdf"
	"github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/postgres"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
	"github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri/signer"
	httpRouter "github.com/kevinvillajim/bcommerce-billing/internal/interfaces/http"
	"github.com/kevinvillajim/bcommerce-billing/pkg/config"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
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

	orderRepo := postgres.NewOrderRepository(pool)
	docRepo := postgres.NewFiscalDocumentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Núcleo de precios: comparación con tolerancia, reconciliación de totales
	// y reparto de ingresos. Las tolerancias vienen de configuración.
	checkoutCmp, err := domainpricing.NewComparator(cfg.Billing.Tolerances.Checkout)
	if err != nil {
		log.Fatal().Err(err).Msg("tolerancia de checkout inválida")
	}
	engine := domainpricing.NewReconciliationEngine(cfg.Billing.TaxRate, checkoutCmp)
	splitter := domainpricing.NewSplitCalculator()
	fees := domainpricing.FeeSchedule{
		PlatformRate:  cfg.Billing.PlatformFeeRate,
		LogisticsRate: cfg.Billing.LogisticsFeeRate,
	}

	sm := domainbilling.NewStateMachine()
	retryPolicy := domainbilling.NewRetryPolicy(cfg.Billing.MaxRetries)
	noteValidator := domainbilling.NewCreditNoteValidator()

	sriConfig := appbilling.SRIConfig{
		AppEnv: cfg.SRI.AppEnv,
		Issuer: infrasri.IssuerData{
			RUC:             cfg.SRI.RUC,
			RazonSocial:     cfg.SRI.RazonSocial,
			NombreComercial: cfg.SRI.NombreComercial,
			DirMatriz:       cfg.SRI.DirMatriz,
			Establishment:   cfg.SRI.Establishment,
			EmissionPoint:   cfg.SRI.EmissionPoint,
			Environment:     cfg.SRI.Environment,
		},
		CertPath:     cfg.SRI.CertPath,
		CertKeyPath:  cfg.SRI.CertKeyPath,
		CertPassword: cfg.SRI.CertPassword,
	}

	// Cliente SOAP SRI — solo se usa si AppEnv es "test" o "prod".
	// En modo "dev" el orquestador y el sincronizador no lo invocan.
	var submitter infrasri.AuthoritySubmitter
	var querier infrasri.AuthorityQuerier
	if cfg.SRI.AppEnv != infrasri.AppEnvDev && cfg.SRI.AppEnv != "" {
		soapClient := infrasri.NewSOAPSRIClient()
		submitter = soapClient
		querier = soapClient
	}

	xmlBuilder := infrasri.NewXMLBuilderService()
	signerSvc := signer.NewDigitalSignatureService()

	// SRIOrchestrator: ciclo clave de acceso → XML → XAdES-BES → SOAP → Update DB
	// El XML del comprobante lleva la tarifa como porcentaje ("15"), no como fracción.
	tarifa := cfg.Billing.TaxRate.Mul(decimal.NewFromInt(100)).String()
	orchestrator := appbilling.NewSRIOrchestrator(
		docRepo, xmlBuilder, signerSvc, submitter, querier,
		sm, sriConfig, tarifa, log,
	)
	synchronizer := appbilling.NewAuthoritySynchronizer(docRepo, querier, sm, cfg.SRI.AppEnv, log)

	issueInvoiceUC := appbilling.NewIssueInvoiceUseCase(
		txRunner, orderRepo, docRepo, engine, sm, orchestrator, sriConfig, cfg.Billing.TaxRate, log)
	issueCreditNoteUC := appbilling.NewIssueCreditNoteUseCase(
		txRunner, docRepo, noteValidator, sm, orchestrator, sriConfig, cfg.Billing.TaxRate, log)
	retryUC := appbilling.NewRetryUseCase(docRepo, retryPolicy, sm, synchronizer, orchestrator, log)
	statusUC := appbilling.NewStatusUseCase(docRepo, synchronizer, log)
	statsUC := appbilling.NewStatsUseCase(docRepo)
	pdfUC := appbilling.NewPDFUseCase(docRepo, infrapdf.NewRIDEGenerator(), sriConfig)
	checkoutUC := apppricing.NewCheckoutUseCase(orderRepo, engine, splitter, fees, log)

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
		Title:    "BCommerce Billing API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		IssueInvoice:    issueInvoiceUC,
		IssueCreditNote: issueCreditNoteUC,
		Retry:           retryUC,
		Status:          statusUC,
		Stats:           statsUC,
		PDF:             pdfUC,
		Checkout:        checkoutUC,
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
