package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/services"
)

// AuthHandler bundles dependencies for the phone login endpoints.
type AuthHandler struct {
	codes    *services.VerificationService
	accounts *services.AccountService
	timeout  time.Duration
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(codes *services.VerificationService, accounts *services.AccountService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{codes: codes, accounts: accounts, timeout: timeout}
}

type sendCodeRequest struct {
	Phone string `json:"phone_number"`
}

// SendCode issues a fresh verification code for the phone.
func (h *AuthHandler) SendCode(c *fiber.Ctx) error {
	var req sendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone number is required")
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	res, err := h.codes.Send(ctx, req.Phone)
	if err != nil {
		return err
	}

	resp := fiber.Map{
		"success": true,
		"message": "verification code sent",
	}
	if res.DevCode != "" {
		resp["message"] = "verification code sent (development mode)"
		resp["dev_code"] = res.DevCode
	}
	return c.JSON(resp)
}

type loginRequest struct {
	Phone string `json:"phone_number"`
	Code  string `json:"verification_code"`
}

// LoginWithPhone consumes the code and reports whether the phone already
// has an account.
func (h *AuthHandler) LoginWithPhone(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone number and verification code are required")
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	res, err := h.accounts.Login(ctx, req.Phone, req.Code)
	if errors.Is(err, errs.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "verification code not found or already used")
	}
	if err != nil {
		return err
	}

	if res.IsNewUser {
		return c.JSON(fiber.Map{
			"success":      true,
			"message":      "phone verified, please enter an invite code",
			"user_id":      nil,
			"phone_number": res.Phone,
			"is_new_user":  true,
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "login successful",
		"user_id":      res.UserID.String(),
		"phone_number": res.Phone,
		"is_new_user":  false,
		"token":        res.Token,
	})
}

type inviteRequest struct {
	Phone  string `json:"phone_number"`
	Invite string `json:"invite_code"`
}

// VerifyInvite redeems an invite code and creates the user for the phone.
func (h *AuthHandler) VerifyInvite(c *fiber.Ctx) error {
	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" || req.Invite == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone number and invite code are required")
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	res, err := h.accounts.RedeemInvite(ctx, req.Phone, req.Invite)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "registration successful",
		"user_id":      res.User.ID.String(),
		"phone_number": res.User.Phone,
		"token":        res.Token,
	})
}
