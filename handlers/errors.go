package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"league-night-system/services"
)

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientPlayers), errors.Is(err, services.ErrInsufficientTeams):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrPlayerNotFound), errors.Is(err, services.ErrMatchNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrStoreFailure), errors.Is(err, services.ErrGeneration):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("component", "http").Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func validationErr(err error) error {
	return fmt.Errorf("%w: %v", services.ErrValidation, err)
}

func validationMsg(msg string) error {
	return fmt.Errorf("%w: %s", services.ErrValidation, msg)
}
