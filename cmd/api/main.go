package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	infrapdf "github.com/jhoicas/facturacion-clinica/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/facturacion-clinica/internal/interfaces/http"
	"github.com/jhoicas/facturacion-clinica/pkg/config"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"

	_ "github.com/jhoicas/facturacion-clinica/docs"
)

const swaggerFile = "./docs/swagger.json"

// @title                       API de Facturación Clínica
// @version                     1.0
// @description                 Facturas, pagos, emisión electrónica DIAN y RIPS.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("almacenamiento", cfg.Storage.Driver).
		Str("dian", cfg.DIAN.AppEnv).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer repos.close()

	directory, err := patientDirectory(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de pacientes")
	}
	authority, err := electronicAuthority(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("adaptador DIAN")
	}

	deps, err := openDependencies(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("dependencias externas")
	}
	defer deps.close()

	issuer := billing.IssuerInfo{
		Name:    cfg.DIAN.IssuerName,
		NIT:     cfg.DIAN.IssuerNIT,
		Address: cfg.DIAN.IssuerAddress,
		City:    cfg.DIAN.IssuerCity,
		Email:   cfg.DIAN.IssuerEmail,
	}

	invoiceUC := billing.NewInvoiceUseCase(repos.tx, repos.invoices, directory, deps.metrics, log, time.Now)
	paymentUC := billing.NewPaymentUseCase(repos.tx, repos.invoices, repos.payments, deps.metrics, log, time.Now)
	emissionUC := billing.NewEmissionUseCase(repos.invoices, repos.electronic, directory, authority,
		deps.locker, cfg.DIAN.EmissionLockTTL, deps.metrics, log, time.Now)
	ripsUC := billing.NewRIPSUseCase(repos.invoices, directory, deps.archive, billing.RIPSProvider{
		NIT:                cfg.RIPS.NitIPS,
		CodigoHabilitacion: cfg.RIPS.CodigoHabilitacion,
	}, deps.metrics, log, time.Now)
	documentUC := billing.NewDocumentUseCase(repos.invoices, directory, infrapdf.NewMarotoPDFGenerator(),
		deps.email, issuer, cfg.HTTP.PublicBaseURL, log)

	if cfg.DIAN.PollInterval > 0 {
		poller := billing.NewStatusPoller(emissionUC, repos.electronic, cfg.DIAN.PollInterval, log)
		go poller.Run(ctx)
	}

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		BodyLimitMB: cfg.HTTP.BodyLimitMB,
		Log:         log,
		Observer:    deps.observer,
		AccessLog:   cfg.App.Env != "production",
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Facturación Clínica API",
		}))
	} else {
		log.Warn().Str("archivo", swaggerFile).Msg("swagger.json no encontrado; /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Invoices:       invoiceUC,
		Payments:       paymentUC,
		Emission:       emissionUC,
		Documents:      documentUC,
		RIPS:           ripsUC,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log,
		MetricsHandler: deps.metricsHandler,
		ServiceName:    cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
