package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	infradian "github.com/jhoicas/facturacion-clinica/internal/infrastructure/dian"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/dian/signer"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/memory"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/messaging"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/metrics"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/patients"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/postgres"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/redislock"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/facturacion-clinica/internal/interfaces/http"
	"github.com/jhoicas/facturacion-clinica/pkg/config"
	pkgdian "github.com/jhoicas/facturacion-clinica/pkg/dian"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// storageSet repositorios del driver elegido.
type storageSet struct {
	tx         billing.TxRunner
	invoices   repository.InvoiceRepository
	payments   repository.PaymentRepository
	electronic repository.ElectronicInvoiceRepository
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storageSet, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storageSet{
			tx:         memory.NewTxRunner(store),
			invoices:   store,
			payments:   store,
			electronic: store,
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if err := postgres.Migrate(pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storageSet{
		tx:         postgres.NewTxRunner(pool),
		invoices:   postgres.NewInvoiceRepository(pool),
		payments:   postgres.NewPaymentRepository(pool),
		electronic: postgres.NewElectronicInvoiceRepository(pool),
		close:      pool.Close,
	}, nil
}

func patientDirectory(cfg *config.Config) (billing.PatientDirectory, error) {
	if cfg.Patients.BaseURL != "" {
		return patients.NewHTTPDirectory(cfg.Patients.BaseURL, cfg.Patients.Token, cfg.Patients.Timeout), nil
	}
	if cfg.Patients.File != "" {
		return patients.LoadStaticDirectory(cfg.Patients.File)
	}
	return patients.NewStaticDirectory(), nil
}

// electronicAuthority dev: simulada (firma solo si hay certificado). test/prod: WS SOAP real.
func electronicAuthority(cfg *config.Config, log *logger.Logger) (billing.ElectronicAuthority, error) {
	authCfg, err := authorityConfig(cfg.DIAN)
	if err != nil {
		return nil, err
	}
	builder := infradian.NewXMLBuilderService()

	var sig pkgdian.Signer
	if cfg.DIAN.CertPath != "" {
		cert, err := signer.Load(cfg.DIAN.CertPath, cfg.DIAN.CertKeyPath, cfg.DIAN.CertPassword)
		if err != nil {
			return nil, err
		}
		s, err := signer.New(cert)
		if err != nil {
			return nil, err
		}
		sig = s
	}

	if cfg.DIAN.AppEnv == infradian.AppEnvDev {
		log.Warn().Msg("DIAN en modo simulado: no se envía nada al WS")
		return infradian.NewSimulatedAuthority(authCfg, builder, sig, log), nil
	}

	client, err := infradian.NewSOAPDIANClient(infradian.SOAPClientConfig{
		Env:       cfg.DIAN.AppEnv,
		TestSetID: cfg.DIAN.TestSetID,
		Timeout:   cfg.DIAN.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return infradian.NewAuthority(authCfg, builder, sig, client, log)
}

func authorityConfig(c config.DIANConfig) (infradian.AuthorityConfig, error) {
	from, err := parseDate(c.ResolutionDateFrom)
	if err != nil {
		return infradian.AuthorityConfig{}, fmt.Errorf("DIAN_RESOLUTION_DATE_FROM: %w", err)
	}
	to, err := parseDate(c.ResolutionDateTo)
	if err != nil {
		return infradian.AuthorityConfig{}, fmt.Errorf("DIAN_RESOLUTION_DATE_TO: %w", err)
	}
	return infradian.AuthorityConfig{
		Issuer: infradian.Issuer{
			NIT:      c.IssuerNIT,
			Name:     c.IssuerName,
			Address:  c.IssuerAddress,
			CityCode: c.IssuerCityCode,
			City:     c.IssuerCity,
			Email:    c.IssuerEmail,
		},
		Resolution: infradian.BillingResolutionData{
			Number:   c.ResolutionNumber,
			Prefix:   c.Prefix,
			From:     c.ResolutionFrom,
			To:       c.ResolutionTo,
			DateFrom: from,
			DateTo:   to,
		},
		TechnicalKey: c.TechnicalKey,
		TipoAmbiente: c.Environment,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

// externalDeps adaptadores opcionales. Sin configuración cada uno cae a su versión local.
type externalDeps struct {
	locker         billing.EmissionLocker
	email          billing.EmailDispatcher
	archive        billing.RIPSArchive
	metrics        billing.Metrics
	observer       httpRouter.HTTPObserver
	metricsHandler http.Handler
	closers        []func() error
	log            *logger.Logger
}

func openDependencies(ctx context.Context, cfg *config.Config, log *logger.Logger) (*externalDeps, error) {
	deps := &externalDeps{log: log}

	if cfg.Redis.Addr != "" {
		client, err := redislock.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, client.Close)
		deps.locker = redislock.NewLocker(client, log)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: bloqueo de emisión solo dentro del proceso")
		deps.locker = memory.NewLocker()
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := messaging.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.EmailQueue)
		if err != nil {
			deps.close()
			return nil, err
		}
		deps.closers = append(deps.closers, conn.Close)
		deps.email = messaging.NewEmailPublisher(conn.Channel(), cfg.RabbitMQ.EmailQueue, log)
	} else {
		log.Warn().Msg("RABBITMQ_URL vacío: los correos solo se registran en el log")
		deps.email = messaging.NewLogDispatcher(log)
	}

	if cfg.Minio.Endpoint != "" {
		archive, err := storage.NewMinioArchive(storage.Options{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			deps.close()
			return nil, err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			deps.close()
			return nil, err
		}
		deps.archive = archive
	}

	if cfg.Metrics.Enabled {
		m := metrics.New(metrics.Config{ServiceName: cfg.App.Name, Environment: cfg.App.Env})
		deps.metrics = m
		deps.observer = m
		deps.metricsHandler = m.Handler()
	} else {
		deps.metrics = billing.NoopMetrics
	}
	return deps, nil
}

func (d *externalDeps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.log.Warn().Err(err).Msg("cerrando dependencia")
		}
	}
	d.closers = nil
}
