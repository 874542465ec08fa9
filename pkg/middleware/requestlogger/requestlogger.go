package requestlogger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mintfall/auction-engine/pkg/logger"
	"github.com/mintfall/auction-engine/pkg/logger/slogx"
)

type Config struct {
	Disable bool `mapstructure:"disable"`
}

// New logs one line per request with method, path, status and latency.
func New(conf Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if conf.Disable {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		logger.InfoContext(c.UserContext(), "Handled request",
			slogx.String("method", c.Method()),
			slogx.String("path", c.Path()),
			slogx.Int("status", c.Response().StatusCode()),
			slogx.Duration("latency", time.Since(start)),
		)
		return err
	}
}
