// Package handlers implements HTTP request handlers for the AuthBox service.
// This file handles the self-service profile surface.
package handlers

import (
	"errors"

	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/avissapr/authbox/internal/security"
	"github.com/avissapr/authbox/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ProfileHandler handles requests an authenticated account makes against
// its own record. All routes require AuthRequired or TokenRequired first.
type ProfileHandler struct {
	userService    *services.UserService
	userRepo       *repository.UserRepository
	securityLogger *security.Logger
}

// NewProfileHandler creates a new instance of ProfileHandler.
func NewProfileHandler(userService *services.UserService, securityLogger *security.Logger) *ProfileHandler {
	return &ProfileHandler{
		userService:    userService,
		userRepo:       repository.NewUserRepository(),
		securityLogger: securityLogger,
	}
}

func currentUserID(c *fiber.Ctx) (int, error) {
	id, ok := c.Locals("user_id").(int)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

// Show returns the authenticated account's profile.
func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userRepo.FindByID(c.Context(), userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, user.View())
}

// Update applies a partial profile update to the authenticated account.
// Absent fields are left unchanged; date_of_birth set to "" clears the
// stored value.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var form models.UpdateProfileForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	if err := h.userService.UpdateProfile(c.Context(), userID, form); err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			return respondError(c, fiber.StatusBadRequest, err.Error())
		}
		return respondRepoError(c, err)
	}

	h.securityLogger.SecurityEvent(security.EventUserUpdate, &userID, "",
		c.IP(), c.Get("User-Agent"), nil)

	user, err := h.userRepo.FindByID(c.Context(), userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return respond(c, fiber.StatusOK, user.View())
}

// AttachPicture assigns a fresh storage key for the account's profile
// image and returns it. The client uploads the image to that key out of
// band.
//
// Request Body: {"filename": string}
// Response: {"profile_picture": "profile_pics/<uuid>.<ext>"}
func (h *ProfileHandler) AttachPicture(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var body struct {
		Filename string `json:"filename"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	key, err := h.userService.AttachProfilePicture(c.Context(), userID, body.Filename)
	if err != nil {
		return respondRepoError(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{"profile_picture": key})
}

// RemovePicture clears the account's profile image reference.
func (h *ProfileHandler) RemovePicture(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.userService.RemoveProfilePicture(c.Context(), userID); err != nil {
		return respondRepoError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
