package middleware

import (
	"strings"

	"github.com/ecop-onboarding/backend/internal/auth"
	"github.com/gofiber/fiber/v2"
)

const CtxCaller = "caller"

// CallerMiddleware assembles the caller identity from the request. The wallet
// address comes from the address query parameter or the X-Wallet-Address
// header; an optional admin token rides in the Authorization bearer header.
// No authorization happens here, the service gate decides.
func CallerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.Caller{
			Address: c.Query("address"),
		}
		if caller.Address == "" {
			caller.Address = c.Get("X-Wallet-Address")
		}

		authHeader := c.Get("Authorization")
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
			caller.Token = token
		}

		c.Locals(CtxCaller, caller)
		return c.Next()
	}
}

func GetCaller(c *fiber.Ctx) auth.Caller {
	caller, _ := c.Locals(CtxCaller).(auth.Caller)
	return caller
}
