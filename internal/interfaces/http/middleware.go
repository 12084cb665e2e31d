package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

const localLogger = "logger"

// RequestObserver recibe la duración de cada solicitud (metrics.Collector).
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// RequestLogger registra método, ruta, status y latencia de cada solicitud y, si hay
// observer, alimenta las métricas HTTP. Deja el logger en c.Locals para los handlers.
func RequestLogger(log *logger.Logger, observer RequestObserver) fiber.Handler {
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.Locals(localLogger, log)

		err := c.Next()
		if err != nil {
			// Deja que el ErrorHandler de la app escriba la respuesta antes de leer el status.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("request")

		if observer != nil {
			observer.ObserveRequest(c.Method(), route, status, elapsed)
		}
		return nil
	}
}

// logFromCtx devuelve el logger de la solicitud o uno nulo si no pasó por RequestLogger.
func logFromCtx(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok {
		return l
	}
	return logger.Nop()
}
