package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/omnilaze/internal/errs"
)

// ErrorHandler renders every error returned by a handler as
// {success:false, message} with a status derived from the errs taxonomy.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	switch {
	case errors.Is(err, errs.ErrValidation):
		return fiber.StatusBadRequest, reason(err, errs.ErrValidation)
	case errors.Is(err, errs.ErrExpired):
		return fiber.StatusBadRequest, "verification code expired"
	case errors.Is(err, errs.ErrMismatch):
		return fiber.StatusBadRequest, "verification code incorrect"
	case errors.Is(err, errs.ErrInvalidInvite):
		return fiber.StatusBadRequest, reason(err, errs.ErrInvalidInvite)
	case errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, errs.ErrForbidden):
		return fiber.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrAccountExists):
		return fiber.StatusConflict, "an account already exists for this phone number"
	case errors.Is(err, errs.ErrAlreadySubmitted):
		return fiber.StatusConflict, "order already submitted"
	case errors.Is(err, errs.ErrDelivery):
		return fiber.StatusInternalServerError, "failed to send verification code"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusInternalServerError, "request timed out"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

// reason strips the sentinel prefix so clients only see the cause.
func reason(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

// withTimeout derives the store deadline for one request.
func withTimeout(c *fiber.Ctx, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), d)
}
