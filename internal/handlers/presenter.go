// Package handlers implements HTTP request handlers for the AuthBox service.
// This file provides the shared JSON response helpers and error mapping.
package handlers

import (
	"errors"

	"github.com/avissapr/authbox/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Message string `json:"message"`
}

func respond(c *fiber.Ctx, status int, v interface{}) error {
	return c.Status(status).JSON(v)
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return respond(c, status, ErrorResponse{Message: message})
}

// respondRepoError maps repository sentinel errors onto HTTP statuses:
// uniqueness violations become 409, missing records 404, anything else 500.
func respondRepoError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrDuplicateGroup):
		return respondError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrGroupNotFound),
		errors.Is(err, repository.ErrPermissionNotFound):
		return respondError(c, fiber.StatusNotFound, err.Error())
	default:
		return respondError(c, fiber.StatusInternalServerError, "internal error")
	}
}
