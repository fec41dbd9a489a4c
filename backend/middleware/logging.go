package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		user := UserID(c)
		if user == "" {
			user = "-"
		}

		if err != nil {
			logger.Printf("%s %s %s %d %v user=%s err=%v", c.IP(), c.Method(), c.Path(), status, time.Since(start), user, err)
		} else {
			logger.Printf("%s %s %s %d %v user=%s", c.IP(), c.Method(), c.Path(), status, time.Since(start), user)
		}

		return err
	}
}
