package http

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// HTTPObserver recibe una observación por petición atendida (métricas).
type HTTPObserver interface {
	ObserveHTTP(route, method string, code int, elapsed time.Duration)
}

// AppConfig opciones del servidor fiber.
type AppConfig struct {
	Name        string
	BodyLimitMB int
	Log         *logger.Logger
	Observer    HTTPObserver // opcional
	AccessLog   bool
}

// NewApp crea la aplicación fiber con codec goccy/go-json, manejo de errores del dominio,
// recover, request id, access log sobre zerolog y observación de métricas.
func NewApp(cfg AppConfig) *fiber.App {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 4
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // la emisión DIAN puede tardar
		IdleTimeout:  time.Second * 60,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: ErrorHandler(cfg.Log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: accessLogWriter{log: cfg.Log},
		}))
	}
	if cfg.Observer != nil {
		app.Use(observe(cfg.Observer))
	}
	return app
}

// accessLogWriter vuelca cada línea del access log de fiber como evento zerolog.
type accessLogWriter struct {
	log *logger.Logger
}

func (w accessLogWriter) Write(p []byte) (int, error) {
	w.log.Info().Str("componente", "http").Msg(strings.TrimSpace(string(p)))
	return len(p), nil
}

// observe mide cada petición por patrón de ruta. Los errores no atendidos se resuelven aquí
// con el ErrorHandler para registrar el código final.
func observe(o HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		o.ObserveHTTP(c.Route().Path, c.Method(), c.Response().StatusCode(), time.Since(start))
		return nil
	}
}
